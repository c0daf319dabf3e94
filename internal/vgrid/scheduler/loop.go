// internal/vgrid/scheduler/loop.go
package scheduler

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultFrameRate is the frame boundary rate used when none is configured.
const DefaultFrameRate = 60.0

// Loop is a single-goroutine event loop. Every task, frame callback and timer
// callback runs on the goroutine that called Run, one at a time, so grid state
// needs no locking.
//
// Frame callbacks are paced by a token bucket: at most one frame flush per
// frame interval, and every RequestFrame made while a flush is pending folds
// into that flush.
type Loop struct {
	logger  *zap.Logger
	limiter *rate.Limiter

	mu     sync.Mutex
	queue  []func()
	frames map[string]func()
	order  []string
	timers map[*time.Timer]struct{}
	closed bool

	signal chan struct{}
	done   chan struct{}
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop that flushes frames at most frameRate times per second.
func NewLoop(logger *zap.Logger, frameRate float64) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Loop{
		logger:  logger.Named("scheduler"),
		limiter: rate.NewLimiter(rate.Limit(frameRate), 1),
		frames:  make(map[string]func()),
		timers:  make(map[*time.Timer]struct{}),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Post enqueues a task. Tasks posted after shutdown are dropped.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.wake()
}

// RequestFrame schedules task for the next frame boundary, replacing any task
// already pending under key.
func (l *Loop) RequestFrame(key string, task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if _, pending := l.frames[key]; !pending {
		l.order = append(l.order, key)
	}
	l.frames[key] = task
	l.mu.Unlock()
	l.wake()
}

// AfterFunc posts task to the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, task func()) func() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return func() bool { return false }
	}

	var t *time.Timer
	// The callback takes l.mu, which is held until t is assigned.
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.Post(task)
	})
	l.timers[t] = struct{}{}

	return func() bool {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		return t.Stop()
	}
}

// Run processes work until ctx is cancelled. It returns nil on cancellation;
// pending tasks and timers are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()

	var frameTimer *time.Timer
	var frameC <-chan time.Time
	defer func() {
		if frameTimer != nil {
			frameTimer.Stop()
		}
	}()

	l.logger.Debug("Event loop started.")
	for {
		l.drainTasks()

		if frameC == nil && l.framesPending() {
			frameTimer = time.NewTimer(l.limiter.Reserve().Delay())
			frameC = frameTimer.C
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("Event loop stopping.", zap.Error(ctx.Err()))
			return nil
		case <-l.signal:
		case <-frameC:
			frameTimer, frameC = nil, nil
			l.flushFrames()
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) wake() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *Loop) drainTasks() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, task := range batch {
			l.run(task)
		}
	}
}

func (l *Loop) framesPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order) > 0
}

func (l *Loop) flushFrames() {
	l.mu.Lock()
	order, frames := l.order, l.frames
	l.order = nil
	l.frames = make(map[string]func())
	l.mu.Unlock()

	for _, key := range order {
		l.run(frames[key])
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panic in scheduled task.",
				zap.Any("panic_reason", r),
				zap.String("stack", string(debug.Stack())))
		}
	}()
	task()
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	l.closed = true
	for t := range l.timers {
		t.Stop()
	}
	l.timers = nil
	l.queue = nil
	l.frames = nil
	l.order = nil
	l.mu.Unlock()
	close(l.done)
}
