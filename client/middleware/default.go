package middleware

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"github.com/krau/RelayAny-Bot/client/middleware/recovery"
	"github.com/krau/RelayAny-Bot/client/middleware/retry"
	"golang.org/x/time/rate"
)

const (
	rpcInterval = 100 * time.Millisecond
	rpcBurst    = 5
)

// NewDefaultMiddlewares returns the stack shared by every client: transport
// recovery, retry on internal server errors, then flood wait handling and
// rate limiting.
func NewDefaultMiddlewares(ctx context.Context, timeout time.Duration, rpcRetry int, floodRetry uint) []telegram.Middleware {
	return []telegram.Middleware{
		recovery.New(ctx, func() backoff.BackOff { return newBackoff(timeout) }),
		retry.New(rpcRetry),
		floodwait.NewSimpleWaiter().WithMaxRetries(floodRetry),
		ratelimit.New(rate.Every(rpcInterval), rpcBurst),
	}
}

func newBackoff(timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.Multiplier = 1.1
	b.MaxElapsedTime = timeout
	b.MaxInterval = 10 * time.Second
	return b
}
