// Package scheduler provides cancelable delayed callbacks.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Handle cancels a scheduled callback.
type Handle interface {
	// Cancel stops the callback. It reports false if the callback already
	// ran or was canceled.
	Cancel() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
	Now() time.Time
}

// Loop schedules callbacks on wall-clock timers. Fired callbacks are queued
// on Tasks instead of running on the timer goroutine, so the goroutine that
// drains Tasks is the only one that runs them.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	once  sync.Once
}

// NewLoop returns a Loop with an empty queue.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 16),
		quit:  make(chan struct{}),
	}
}

// Schedule implements Scheduler.
func (l *Loop) Schedule(delay time.Duration, fn func()) Handle {
	h := &loopHandle{fn: fn}
	h.timer = time.AfterFunc(delay, func() {
		select {
		case l.tasks <- h.run:
		case <-l.quit:
		}
	})
	return h
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Tasks delivers fired callbacks. The receiver must call each one.
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Run calls fired callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop releases timers blocked on a full queue. Pending timers still fire
// but their callbacks are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
}

type loopHandle struct {
	mu       sync.Mutex
	timer    *time.Timer
	fn       func()
	done     bool
	canceled bool
}

// run executes the callback unless it was canceled after firing.
func (h *loopHandle) run() {
	h.mu.Lock()
	if h.done || h.canceled {
		h.mu.Unlock()
		return
	}
	h.done = true
	h.mu.Unlock()
	h.fn()
}

// Cancel stops the callback, including one already queued but not yet run.
func (h *loopHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done || h.canceled {
		return false
	}
	h.canceled = true
	h.timer.Stop()
	return true
}

// Virtual is a deterministic scheduler driven by Advance.
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*virtualTask
}

type virtualTask struct {
	owner    *Virtual
	at       time.Time
	seq      int
	fn       func()
	canceled bool
	done     bool
}

// NewVirtual returns a virtual scheduler starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Schedule implements Scheduler.
func (v *Virtual) Schedule(delay time.Duration, fn func()) Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	task := &virtualTask{owner: v, at: v.now.Add(delay), seq: v.seq, fn: fn}
	v.pending = append(v.pending, task)
	return task
}

// Now implements Scheduler.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Pending returns the number of callbacks waiting to run.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

// Advance moves the clock forward, running due callbacks in deadline order.
// Callbacks scheduled by a running callback run too when they fall due.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()
	for {
		task := v.popDue(target)
		if task == nil {
			break
		}
		task.fn()
	}
	v.mu.Lock()
	v.now = target
	v.mu.Unlock()
}

func (v *Virtual) popDue(target time.Time) *virtualTask {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pending) == 0 {
		return nil
	}
	sort.SliceStable(v.pending, func(i, j int) bool {
		if v.pending[i].at.Equal(v.pending[j].at) {
			return v.pending[i].seq < v.pending[j].seq
		}
		return v.pending[i].at.Before(v.pending[j].at)
	})
	task := v.pending[0]
	if task.at.After(target) {
		return nil
	}
	v.pending = v.pending[1:]
	task.done = true
	v.now = task.at
	return task
}

func (t *virtualTask) Cancel() bool {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.done || t.canceled {
		return false
	}
	t.canceled = true
	for i, p := range v.pending {
		if p == t {
			v.pending = append(v.pending[:i], v.pending[i+1:]...)
			break
		}
	}
	return true
}
