package relay

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/common/i18n"
	"github.com/krau/RelayAny-Bot/common/i18n/i18nk"
	"github.com/krau/RelayAny-Bot/common/utils/tgutil"
	"github.com/krau/RelayAny-Bot/core/prefs"
	"github.com/krau/RelayAny-Bot/core/upload"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

// Preferences is what the engine reads from the preference store.
type Preferences interface {
	Get(ctx context.Context, userID int64) (prefs.Preferences, error)
	IsProtected(ctx context.Context, chatID int64) (bool, error)
}

// Request is one relay asked for by a user.
type Request struct {
	UserID int64
	// ChatID is where the user talks to the bot. Notices go there and it is
	// the default target.
	ChatID int64
	Link   tgutil.MessageLink
	// Offset shifts the message id of Link, used by batch relays.
	Offset int
	// NoticeID is the caller's pending notice. It becomes the progress
	// message and is deleted at the end.
	NoticeID int
}

func (r Request) Source() tgutil.MessageLink {
	return r.Link.Shift(r.Offset)
}

type Engine struct {
	worker           Capability
	prefs            Preferences
	executor         *upload.Executor
	sink             *Sink
	sources          SourceFunc
	archiver         Archiver
	tempDir          string
	progressInterval time.Duration
}

type Option func(*Engine)

func WithExecutor(e *upload.Executor) Option {
	return func(en *Engine) {
		en.executor = e
	}
}

func WithSink(s *Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

func WithSources(f SourceFunc) Option {
	return func(e *Engine) {
		e.sources = f
	}
}

func WithArchiver(a Archiver) Option {
	return func(e *Engine) {
		e.archiver = a
	}
}

func WithTempDir(dir string) Option {
	return func(e *Engine) {
		e.tempDir = dir
	}
}

func WithProgressInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.progressInterval = d
	}
}

// New builds an engine around the worker account. Without WithExecutor
// the engine uploads through worker with default limits, and without WithSink
// nothing is mirrored.
func New(worker Capability, store Preferences, opts ...Option) *Engine {
	e := &Engine{
		worker:           worker,
		prefs:            store,
		tempDir:          "cache",
		progressInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = NewSink(worker, 0)
	}
	if e.executor == nil {
		e.executor = upload.NewExecutor(worker, upload.WithMirror(e.sink))
	}
	return e
}

func (e *Engine) Sink() *Sink {
	return e.sink
}

// Relay runs one transfer to completion. Failures are reported to the
// user or the log chat before returning, and the returned error is for
// the caller's logs only. Relay never panics.
func (e *Engine) Relay(ctx context.Context, req Request) (err error) {
	t := newTransfer(e, req)
	logger := log.FromContext(ctx).WithPrefix(fmt.Sprintf("relay[%d]", req.UserID))
	ctx = log.WithContext(ctx, logger)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Relay panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("relay panicked in %s: %v", t.state, r)
		}
		t.cleanup(ctx)
		if err != nil {
			e.report(ctx, req, err)
		}
	}()
	logger.Info("Starting relay", "link", req.Source().String())
	err = t.run(ctx)
	if err == nil {
		logger.Info("Relay done")
	}
	return err
}

// report sends at most one notice to the user. Errors the user cannot act
// on go to the log chat with their raw text.
func (e *Engine) report(ctx context.Context, req Request, err error) {
	logger := log.FromContext(ctx)
	kind := relayerr.KindOf(err)
	switch {
	case kind.Silent():
		logger.Info("Nothing to relay", "error", err)
	case kind.Notify():
		logger.Warn("Relay refused", "kind", kind, "error", err)
		if _, serr := e.worker.SendText(ctx, tfile.Target{ChatID: req.ChatID}, noticeText(kind, err)); serr != nil {
			logger.Error("Failed to notify user", "error", serr)
		}
	default:
		logger.Error("Relay failed", "kind", kind, "error", err)
		e.sink.Text(ctx, i18n.T(i18nk.BotMsgRelayLogFailure, map[string]any{
			"UserID": req.UserID,
			"Link":   req.Source().String(),
			"Error":  err.Error(),
		}))
	}
}

func noticeText(kind relayerr.Kind, err error) string {
	switch kind {
	case relayerr.ProtectedSource:
		return i18n.T(i18nk.BotMsgRelayErrorProtectedSource)
	case relayerr.AccessDenied:
		return i18n.T(i18nk.BotMsgRelayErrorAccessDenied)
	case relayerr.RateLimited:
		return i18n.T(i18nk.BotMsgRelayErrorRateLimited)
	case relayerr.CapabilityUnavailable:
		return i18n.T(i18nk.BotMsgRelayErrorCapabilityUnavailable)
	}
	return i18n.T(i18nk.BotMsgRelayErrorValidation, map[string]any{"Error": err.Error()})
}

func (e *Engine) sourceFor(ctx context.Context, userID int64) Source {
	if e.sources != nil {
		if src, ok := e.sources(ctx, userID); ok && src != nil {
			return src
		}
	}
	return e.worker
}

func (e *Engine) transferDir(id string) string {
	return filepath.Join(e.tempDir, id)
}
