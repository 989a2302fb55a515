package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/celestix/gotgproto"
	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/client/tgcap"
	"github.com/krau/RelayAny-Bot/config"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

var _ upload.Privileged = (*HighCap)(nil)

// HighCap is the premium account used for files above the regular limit.
// It logs in in the background and reports not ready until then, or after
// Stop.
type HighCap struct {
	mu     sync.RWMutex
	client *gotgproto.Client
	tc     *tgcap.Client
}

func NewHighCap() *HighCap {
	return &HighCap{}
}

// Start logs in with the configured session string. Failures are logged
// and leave the uploader offline.
func (h *HighCap) Start(ctx context.Context) {
	cfg := config.C().Telegram.HighCap
	logger := log.FromContext(ctx).WithPrefix("highcap")
	client, err := LoginWithString(ctx, cfg.SessionType, cfg.SessionString)
	if err != nil {
		logger.Error("High-capacity uploader is offline", "error", err)
		return
	}
	if client.Self != nil && !client.Self.Premium {
		logger.Warn("High-capacity account has no premium, large uploads will be refused", "name", displayName(client))
	}
	h.mu.Lock()
	h.client = client
	h.tc = Capability(client)
	h.mu.Unlock()
	logger.Info("High-capacity uploader ready", "name", displayName(client))
}

func (h *HighCap) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tc != nil
}

func (h *HighCap) SendFile(ctx context.Context, to tfile.Target, file *tfile.Outgoing, progress upload.ProgressFunc) (tfile.Sent, error) {
	h.mu.RLock()
	c := h.tc
	h.mu.RUnlock()
	if c == nil {
		return tfile.Sent{}, fmt.Errorf("%w: high-capacity uploader is offline", relayerr.ErrCapabilityUnavailable)
	}
	return c.SendFile(ctx, to, file, progress)
}

func (h *HighCap) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		h.client.Stop()
	}
	h.client = nil
	h.tc = nil
}
