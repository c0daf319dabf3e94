// internal/vgrid/scheduler/manual.go
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests. Nothing runs until the test
// drives it with RunPending, Frame, Flush or Advance, and time only moves
// when Advance is called.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	queue  []func()
	frames map[string]func()
	order  []string
	timers []*manualTimer

	// Frames counts frame boundaries that ran at least one callback.
	Frames int
}

type manualTimer struct {
	at      time.Duration
	seq     int
	task    func()
	stopped bool
	fired   bool
}

var _ Scheduler = (*Manual)(nil)

// NewManual returns an idle manual scheduler.
func NewManual() *Manual {
	return &Manual{frames: make(map[string]func())}
}

func (m *Manual) Post(task func()) {
	m.mu.Lock()
	m.queue = append(m.queue, task)
	m.mu.Unlock()
}

func (m *Manual) RequestFrame(key string, task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, pending := m.frames[key]; !pending {
		m.order = append(m.order, key)
	}
	m.frames[key] = task
}

func (m *Manual) AfterFunc(d time.Duration, task func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, task: task}
	m.timers = append(m.timers, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// RunPending runs posted tasks, including tasks they post, until the queue is empty.
func (m *Manual) RunPending() {
	for {
		m.mu.Lock()
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, task := range batch {
			task()
		}
	}
}

// Frame runs pending tasks, then one frame boundary, then whatever the frame posted.
func (m *Manual) Frame() {
	m.RunPending()

	m.mu.Lock()
	order, frames := m.order, m.frames
	m.order = nil
	m.frames = make(map[string]func())
	m.mu.Unlock()

	if len(order) > 0 {
		m.Frames++
	}
	for _, key := range order {
		frames[key]()
	}
	m.RunPending()
}

// Flush runs tasks and frames until both are idle. Timers are left alone.
func (m *Manual) Flush() {
	for i := 0; i < 1000; i++ {
		m.Frame()
		if m.PendingFrames() == 0 && m.PendingTasks() == 0 {
			return
		}
	}
	panic("scheduler: Flush did not settle")
}

// Advance moves the clock forward, posting every timer that came due in order,
// and flushes the result.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	remaining := m.timers[:0]
	for _, t := range m.timers {
		switch {
		case t.stopped:
		case t.at <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	m.timers = remaining
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		m.queue = append(m.queue, t.task)
	}
	m.mu.Unlock()

	m.Flush()
}

// PendingTasks is the number of posted tasks that have not run.
func (m *Manual) PendingTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// PendingFrames is the number of distinct frame keys waiting for a boundary.
func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// PendingTimers is the number of timers that have neither fired nor been stopped.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
