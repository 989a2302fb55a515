package progress

import (
	"context"
	"sync"
	"time"

	"github.com/krau/RelayAny-Bot/common/utils/dlutil"
	"golang.org/x/time/rate"
)

type Action int

const (
	Downloading Action = iota
	Uploading
)

// Snapshot is one progress reading.
type Snapshot struct {
	Action  Action
	Name    string
	Done    int64
	Total   int64
	Percent int
	// Speed is in bytes per second.
	Speed float64
	// ETA is negative when unknown.
	ETA   time.Duration
	Final bool
}

type Emitter func(ctx context.Context, s Snapshot)

var progressUpdatesLevels = []struct {
	size        int64 // 文件大小阈值
	stepPercent int   // 每多少 % 更新一次
}{
	{10 << 20, 100},
	{50 << 20, 20},
	{200 << 20, 10},
	{500 << 20, 5},
}

func stepFor(total int64) int {
	step := progressUpdatesLevels[len(progressUpdatesLevels)-1].stepPercent
	for _, lvl := range progressUpdatesLevels {
		if total < lvl.size {
			step = lvl.stepPercent
			break
		}
	}
	return step
}

func shouldUpdateProgress(total, done int64, lastUpdatePercent int) bool {
	if total <= 0 || done <= 0 {
		return false
	}
	percent := int((done * 100) / total)
	if percent <= lastUpdatePercent {
		return false
	}
	return percent >= lastUpdatePercent+stepFor(total)
}

// Tracker turns byte counts into throttled snapshots. It is safe for
// concurrent use since parallel transfers report from several goroutines.
type Tracker struct {
	action  Action
	name    string
	emit    Emitter
	limiter *rate.Limiter
	now     func() time.Time

	mu          sync.Mutex
	start       time.Time
	lastPercent int
	finished    bool
}

type Option func(*Tracker)

// WithInterval sets the minimum gap between two emitted snapshots.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d <= 0 {
			t.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		t.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func New(action Action, name string, emit Emitter, opts ...Option) *Tracker {
	t := &Tracker{
		action:  action,
		name:    name,
		emit:    emit,
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.start = t.now()
	return t
}

// Update reports done of total bytes. Most calls are dropped; reaching
// total always emits.
func (t *Tracker) Update(ctx context.Context, done, total int64) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return
	}
	if total > 0 && done >= total {
		t.mu.Unlock()
		t.Finish(ctx, total)
		return
	}
	if !shouldUpdateProgress(total, done, t.lastPercent) {
		t.mu.Unlock()
		return
	}
	now := t.now()
	if !t.limiter.AllowN(now, 1) {
		t.mu.Unlock()
		return
	}
	s := t.snapshot(now, done, total)
	t.lastPercent = s.Percent
	t.mu.Unlock()
	t.emit(ctx, s)
}

// Finish emits the final snapshot once.
func (t *Tracker) Finish(ctx context.Context, total int64) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return
	}
	t.finished = true
	s := t.snapshot(t.now(), total, total)
	s.Final = true
	t.mu.Unlock()
	t.emit(ctx, s)
}

// Func adapts the tracker to a plain callback bound to ctx.
func (t *Tracker) Func(ctx context.Context) func(done, total int64) {
	return func(done, total int64) {
		t.Update(ctx, done, total)
	}
}

func (t *Tracker) snapshot(now time.Time, done, total int64) Snapshot {
	speed := dlutil.GetSpeed(done, t.start, now)
	s := Snapshot{
		Action: t.action,
		Name:   t.name,
		Done:   done,
		Total:  total,
		Speed:  speed,
		ETA:    dlutil.ETA(done, total, speed),
	}
	if total > 0 {
		s.Percent = int(done * 100 / total)
	}
	return s
}
