// Package retry re-sends RPCs that fail with a transient server error.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// transientErrors are server side failures that usually succeed on a
// second try.
var transientErrors = []string{
	"Timedout",
	"No workers running",
	"RPC_CALL_FAIL",
	"RPC_MCGET_FAIL",
	"WORKER_BUSY_TOO_LONG_RETRY",
	"memory limit exit",
}

const defaultStep = 100 * time.Millisecond

type middleware struct {
	attempts int
	codes    []string
	// step grows linearly: the n-th retry waits n*step.
	step time.Duration
}

func (m middleware) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		var err error
		for attempt := 1; ; attempt++ {
			if err = next.Invoke(ctx, input, output); err == nil {
				return nil
			}
			if !tgerr.Is(err, m.codes...) {
				return err
			}
			if attempt >= m.attempts {
				break
			}
			log.FromContext(ctx).Debug("Retrying RPC", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * m.step):
			}
		}
		return fmt.Errorf("retry limit reached after %d attempts: %w", m.attempts, err)
	}
}

// New retries an RPC up to attempts times in total when it fails with a
// transient error or one of codes.
func New(attempts int, codes ...string) telegram.Middleware {
	return middleware{
		attempts: max(attempts, 1),
		codes:    append(codes, transientErrors...),
		step:     defaultStep,
	}
}
