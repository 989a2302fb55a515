package retry

import (
	"context"
	"testing"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tgerr"
)

type invokerFunc func(ctx context.Context, input bin.Encoder, output bin.Decoder) error

func (f invokerFunc) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	return f(ctx, input, output)
}

func TestRetryInternalErrors(t *testing.T) {
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		if calls == 1 {
			return tgerr.New(500, "RPC_CALL_FAIL")
		}
		return nil
	})
	if err := New(3).Handle(next)(context.Background(), nil, nil); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryLimit(t *testing.T) {
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		return tgerr.New(500, "RPC_CALL_FAIL")
	})
	err := New(2).Handle(next)(context.Background(), nil, nil)
	if !tgerr.Is(err, "RPC_CALL_FAIL") {
		t.Fatalf("Handle() error = %v, want wrapped RPC_CALL_FAIL", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetrySkipsOtherErrors(t *testing.T) {
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		return tgerr.New(400, "MESSAGE_ID_INVALID")
	})
	if err := New(5).Handle(next)(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	next := invokerFunc(func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		calls++
		cancel()
		return tgerr.New(500, "RPC_CALL_FAIL")
	})
	if err := New(5).Handle(next)(ctx, nil, nil); err != context.Canceled {
		t.Fatalf("Handle() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
