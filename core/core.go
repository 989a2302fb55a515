// Package core runs queued relays on a fixed pool of workers.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/core/relay"
	"github.com/krau/RelayAny-Bot/pkg/queue"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

type Relayer interface {
	Relay(ctx context.Context, req relay.Request) error
}

type Core struct {
	queue   *queue.TaskQueue[relay.Request]
	relayer Relayer
	workers int
}

func New(relayer Relayer, workers int) *Core {
	return &Core{
		queue:   queue.NewTaskQueue[relay.Request](),
		relayer: relayer,
		workers: max(workers, 1),
	}
}

// Enqueue queues req and returns its task id. The relay runs with a
// context derived from ctx, so ctx must outlive the request handler.
func (c *Core) Enqueue(ctx context.Context, req relay.Request) (string, error) {
	id := xid.New().String()
	if err := c.queue.Add(queue.NewTask(ctx, id, req)); err != nil {
		return "", fmt.Errorf("failed to enqueue relay: %w", err)
	}
	log.FromContext(ctx).Debug("Relay queued", "id", id, "user", req.UserID, "pending", c.queue.Length())
	return id, nil
}

func (c *Core) Pending() int {
	return c.queue.ActiveLength()
}

func (c *Core) Cancel(id string) error {
	return c.queue.CancelTask(id)
}

// Run blocks until ctx is done, then cancels running relays and waits for
// the workers to finish their cleanup.
func (c *Core) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)
	logger.Info("Start processing relays...", "workers", c.workers)
	eg, gctx := errgroup.WithContext(ctx)
	for i := range c.workers {
		eg.Go(func() error {
			return c.worker(gctx, i)
		})
	}
	<-gctx.Done()
	c.queue.Close()
	c.queue.CancelAll()
	err := eg.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
		return nil
	}
	return err
}

func (c *Core) worker(ctx context.Context, idx int) error {
	logger := log.FromContext(ctx).WithPrefix(fmt.Sprintf("worker[%d]", idx))
	for {
		task, err := c.queue.Get(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Got relay", "id", task.ID, "waited", task.Waited())
		tctx := log.WithContext(task.Context(), logger)
		if err := c.relayer.Relay(tctx, task.Data); err != nil {
			logger.Debug("Relay finished with error", "id", task.ID, "error", err)
		}
		c.queue.Done(task.ID)
	}
}
