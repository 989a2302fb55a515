package recovery

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

type invokerFunc func(ctx context.Context, input bin.Encoder, output bin.Decoder) error

func (f invokerFunc) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	return f(ctx, input, output)
}

func quickBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 3)
}

func TestRecoveryRetriesTransportErrors(t *testing.T) {
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		if calls < 3 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})
	var _ tg.Invoker = next
	mw := New(context.Background(), quickBackoff)
	if err := mw.Handle(next)(context.Background(), nil, nil); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRecoveryStopsOnServerError(t *testing.T) {
	calls := 0
	rpcErr := tgerr.New(400, "CHANNEL_PRIVATE")
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		return rpcErr
	})
	mw := New(context.Background(), quickBackoff)
	err := mw.Handle(next)(context.Background(), nil, nil)
	if !tgerr.Is(err, "CHANNEL_PRIVATE") {
		t.Fatalf("Handle() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRecoveryGivesUp(t *testing.T) {
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		return io.EOF
	})
	mw := New(context.Background(), quickBackoff)
	err := mw.Handle(next)(context.Background(), nil, nil)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Handle() error = %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestPermanent(t *testing.T) {
	if !Permanent(context.Canceled) {
		t.Error("context.Canceled should be permanent")
	}
	if Permanent(io.EOF) {
		t.Error("io.EOF should be retried")
	}
}
