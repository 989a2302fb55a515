package upload

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/krau/RelayAny-Bot/pkg/relayerr"
	"github.com/krau/RelayAny-Bot/pkg/tfile"
)

type ProgressFunc func(done, total int64)

type Uploader interface {
	SendFile(ctx context.Context, to tfile.Target, file *tfile.Outgoing, progress ProgressFunc) (tfile.Sent, error)
}

// Privileged is an uploader able to exceed the regular size limit. It may
// go offline at any time.
type Privileged interface {
	Uploader
	Ready() bool
}

// Mirror copies a delivered message to the operator log chat. It never
// fails the caller.
type Mirror interface {
	Mirror(ctx context.Context, sent tfile.Sent)
}

type Executor struct {
	primary    Uploader
	privileged Privileged
	mirror     Mirror
	limits     Limits
}

type Option func(*Executor)

func WithPrivileged(p Privileged) Option {
	return func(e *Executor) {
		e.privileged = p
	}
}

func WithMirror(m Mirror) Option {
	return func(e *Executor) {
		e.mirror = m
	}
}

func WithLimits(l Limits) Option {
	return func(e *Executor) {
		e.limits = l
	}
}

func NewExecutor(primary Uploader, opts ...Option) *Executor {
	e := &Executor{primary: primary}
	for _, opt := range opts {
		opt(e)
	}
	e.limits = e.limits.orDefault()
	return e
}

func (e *Executor) Limits() Limits {
	return e.limits
}

// PrivilegedConfigured reports whether a privileged uploader was given,
// whatever its current state.
func (e *Executor) PrivilegedConfigured() bool {
	return e.privileged != nil
}

func (e *Executor) HasPrivileged() bool {
	return e.privileged != nil && e.privileged.Ready()
}

// Job is one file to deliver.
type Job struct {
	Target   tfile.Target
	File     *tfile.Outgoing
	Progress ProgressFunc
	// Notice, when set, is shown while splitting. The returned func removes it.
	Notice func(ctx context.Context) (remove func())
}

// Execute delivers job with strategy s and returns every sent message in
// order. A HighCapacity job whose privileged client is gone fails with
// ErrCapabilityUnavailable and is never downgraded.
func (e *Executor) Execute(ctx context.Context, s Strategy, job Job) ([]tfile.Sent, error) {
	logger := log.FromContext(ctx)
	logger.Debug("Executing upload", "strategy", s, "file", job.File.Name, "size", job.File.Size)
	switch s {
	case Direct:
		sent, err := e.primary.SendFile(ctx, job.Target, job.File, job.Progress)
		if err != nil {
			return nil, fmt.Errorf("direct upload failed: %w", err)
		}
		e.mirrorSent(ctx, sent)
		return []tfile.Sent{sent}, nil
	case HighCapacity:
		if !e.HasPrivileged() {
			return nil, fmt.Errorf("%w: high-capacity uploader is offline", relayerr.ErrCapabilityUnavailable)
		}
		sent, err := e.privileged.SendFile(ctx, job.Target, job.File, job.Progress)
		if err != nil {
			return nil, fmt.Errorf("high-capacity upload failed: %w", err)
		}
		e.mirrorSent(ctx, sent)
		return []tfile.Sent{sent}, nil
	case Split:
		return e.split(ctx, job)
	}
	return nil, fmt.Errorf("unknown upload strategy %d", s)
}

func (e *Executor) mirrorSent(ctx context.Context, sent tfile.Sent) {
	if e.mirror != nil {
		e.mirror.Mirror(ctx, sent)
	}
}
