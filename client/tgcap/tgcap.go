// Package tgcap implements the relay capability on top of a gotgproto
// client. The same type serves the bot, the userbot, per-user session
// clients and the high-capacity uploader.
package tgcap

import (
	"fmt"

	"github.com/celestix/gotgproto/ext"
	"github.com/gotd/td/tg"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
)

var (
	_ relay.Capability  = (*Client)(nil)
	_ upload.Privileged = (*Client)(nil)
)

type Client struct {
	ext     *ext.Context
	threads int
	ready   func() bool
}

type Option func(*Client)

// WithThreads caps the parallel parts of one transfer.
func WithThreads(n int) Option {
	return func(c *Client) {
		c.threads = n
	}
}

// WithReadiness sets the check behind Ready. Without it the client is
// always ready.
func WithReadiness(ready func() bool) Option {
	return func(c *Client) {
		c.ready = ready
	}
}

func New(ectx *ext.Context, opts ...Option) *Client {
	c := &Client{ext: ectx, threads: 4}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Ready() bool {
	if c.ready == nil {
		return true
	}
	return c.ready()
}

// Self returns the logged in account.
func (c *Client) Self() *tg.User {
	return c.ext.Self
}

// storageID converts a marked chat id to the key used by the peer storage.
func storageID(chatID int64) int64 {
	if chatID >= 0 {
		return chatID
	}
	bare := tgutil.ChannelBareID(chatID)
	if bare < 0 {
		return -bare
	}
	return bare
}

func (c *Client) inputPeer(chatID int64) (tg.InputPeerClass, error) {
	if c.ext.Self != nil && chatID == c.ext.Self.ID {
		return &tg.InputPeerSelf{}, nil
	}
	peer := c.ext.PeerStorage.GetInputPeerById(storageID(chatID))
	if peer == nil {
		return nil, fmt.Errorf("%w: peer %d is unknown to this account", relayerr.ErrAccessDenied, chatID)
	}
	if _, ok := peer.(*tg.InputPeerEmpty); ok {
		return nil, fmt.Errorf("%w: peer %d is unknown to this account", relayerr.ErrAccessDenied, chatID)
	}
	return peer, nil
}

func (c *Client) resolveUser(id int64) (tg.InputUserClass, error) {
	if p, ok := c.ext.PeerStorage.GetInputPeerById(id).(*tg.InputPeerUser); ok {
		return &tg.InputUser{UserID: p.UserID, AccessHash: p.AccessHash}, nil
	}
	return nil, fmt.Errorf("user %d not found", id)
}
