// Package recovery retries RPC calls that failed below the MTProto layer,
// such as dropped connections, until the backoff gives up.
package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

type recovery struct {
	ctx     context.Context
	backoff func() backoff.BackOff
}

// New returns a middleware that retries transport failures. Errors sent by
// the server are returned unchanged. newBackoff is called once per call.
func New(ctx context.Context, newBackoff func() backoff.BackOff) telegram.Middleware {
	return &recovery{
		ctx:     ctx,
		backoff: newBackoff,
	}
}

func (r *recovery) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		logger := log.FromContext(ctx)
		b := backoff.WithContext(r.backoff(), ctx)
		return backoff.RetryNotify(func() error {
			err := next.Invoke(ctx, input, output)
			if err == nil {
				return nil
			}
			if Permanent(err) || r.ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}, b, func(err error, d time.Duration) {
			logger.Debug("Recovering RPC call", "error", err, "wait", d)
		})
	}
}

// Permanent reports whether err is a server error or a context error.
func Permanent(err error) bool {
	if _, ok := tgerr.As(err); ok {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
