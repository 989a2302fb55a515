package queue

import (
	"container/list"
	"context"
	"time"
)

// Task is one queued payload. Cancel ends its context, which is also the
// context the payload runs under.
type Task[T any] struct {
	ID   string
	Data T

	ctx      context.Context
	cancel   context.CancelFunc
	queuedAt time.Time
	// startedAt is set by Get under the queue lock.
	startedAt time.Time
	element   *list.Element
}

func NewTask[T any](ctx context.Context, id string, data T) *Task[T] {
	tctx, cancel := context.WithCancel(ctx)
	return &Task[T]{
		ID:       id,
		Data:     data,
		ctx:      tctx,
		cancel:   cancel,
		queuedAt: time.Now(),
	}
}

func (t *Task[T]) Context() context.Context { return t.ctx }

func (t *Task[T]) Cancel() { t.cancel() }

func (t *Task[T]) IsCancelled() bool {
	return t.ctx.Err() != nil
}

// Waited is how long the task sat in the queue before a worker took it, or
// how long it has been waiting so far.
func (t *Task[T]) Waited() time.Duration {
	if t.startedAt.IsZero() {
		return time.Since(t.queuedAt)
	}
	return t.startedAt.Sub(t.queuedAt)
}
