package queue

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrClosed       = errors.New("queue is closed")
	ErrTaskNotFound = errors.New("task does not exist")
)

// TaskQueue is a FIFO of tasks that tracks the tasks being worked on until
// Done is called for them.
type TaskQueue[T any] struct {
	tasks   *list.List
	pending map[string]*Task[T]
	running map[string]*Task[T]
	mu      sync.Mutex
	cond    *sync.Cond
	closed  bool
}

func NewTaskQueue[T any]() *TaskQueue[T] {
	tq := &TaskQueue[T]{
		tasks:   list.New(),
		pending: make(map[string]*Task[T]),
		running: make(map[string]*Task[T]),
	}
	tq.cond = sync.NewCond(&tq.mu)
	return tq
}

func (tq *TaskQueue[T]) Add(task *Task[T]) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	if tq.closed {
		return ErrClosed
	}
	if _, exists := tq.pending[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}
	if _, exists := tq.running[task.ID]; exists {
		return fmt.Errorf("task with ID %s is running", task.ID)
	}
	if task.IsCancelled() {
		return fmt.Errorf("task %s has been cancelled", task.ID)
	}

	task.element = tq.tasks.PushBack(task)
	tq.pending[task.ID] = task
	tq.cond.Signal()
	return nil
}

// Get blocks until a live task is available, the queue is closed and
// drained, or ctx is done. Cancelled tasks are skipped.
func (tq *TaskQueue[T]) Get(ctx context.Context) (*Task[T], error) {
	stop := context.AfterFunc(ctx, func() {
		tq.mu.Lock()
		defer tq.mu.Unlock()
		tq.cond.Broadcast()
	})
	defer stop()

	tq.mu.Lock()
	defer tq.mu.Unlock()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for tq.tasks.Len() > 0 {
			element := tq.tasks.Front()
			task := element.Value.(*Task[T])
			tq.tasks.Remove(element)
			task.element = nil
			delete(tq.pending, task.ID)
			if !task.IsCancelled() {
				task.startedAt = time.Now()
				tq.running[task.ID] = task
				return task, nil
			}
		}
		if tq.closed {
			return nil, ErrClosed
		}
		tq.cond.Wait()
	}
}

func (tq *TaskQueue[T]) Done(taskID string) {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	if task, ok := tq.running[taskID]; ok {
		task.Cancel()
		delete(tq.running, taskID)
	}
}

// Length counts queued tasks, cancelled ones included.
func (tq *TaskQueue[T]) Length() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return tq.tasks.Len()
}

func (tq *TaskQueue[T]) ActiveLength() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	count := 0
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		if !element.Value.(*Task[T]).IsCancelled() {
			count++
		}
	}
	return count
}

func (tq *TaskQueue[T]) Running() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return len(tq.running)
}

// CancelTask cancels a queued or running task.
func (tq *TaskQueue[T]) CancelTask(taskID string) error {
	tq.mu.Lock()
	task, exists := tq.pending[taskID]
	if !exists {
		task, exists = tq.running[taskID]
	}
	tq.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	task.Cancel()
	return nil
}

// CancelAll cancels every queued and running task.
func (tq *TaskQueue[T]) CancelAll() {
	tq.mu.Lock()
	tasks := make([]*Task[T], 0, len(tq.pending)+len(tq.running))
	for _, task := range tq.pending {
		tasks = append(tasks, task)
	}
	for _, task := range tq.running {
		tasks = append(tasks, task)
	}
	tq.mu.Unlock()
	for _, task := range tasks {
		task.Cancel()
	}
}

// Close stops accepting tasks. Get keeps returning what is queued and then
// ErrClosed.
func (tq *TaskQueue[T]) Close() {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	tq.closed = true
	tq.cond.Broadcast()
}

func (tq *TaskQueue[T]) IsClosed() bool {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return tq.closed
}

// CleanupCancelled drops cancelled tasks from the queue and returns how
// many were removed.
func (tq *TaskQueue[T]) CleanupCancelled() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	removed := 0
	for element := tq.tasks.Front(); element != nil; {
		next := element.Next()
		task := element.Value.(*Task[T])
		if task.IsCancelled() {
			tq.tasks.Remove(element)
			task.element = nil
			delete(tq.pending, task.ID)
			removed++
		}
		element = next
	}
	return removed
}
