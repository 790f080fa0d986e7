// Package scheduler provides cancellable delayed callbacks.
//
// The controller never calls time.AfterFunc directly; it asks a Scheduler so
// tests can drive timers with a Manual clock instead of sleeping.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Token cancels a scheduled callback.
type Token interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Token
}

// Real schedules callbacks on wall-clock timers. Callbacks run on their own
// goroutine, as with time.AfterFunc.
type Real struct{}

// NewReal returns a wall-clock scheduler.
func NewReal() Real { return Real{} }

type realToken struct {
	timer *time.Timer
}

func (t realToken) Cancel() bool {
	return t.timer.Stop()
}

// Schedule implements Scheduler.
func (Real) Schedule(delay time.Duration, fn func()) Token {
	return realToken{timer: time.AfterFunc(delay, fn)}
}

// Manual is a virtual-time scheduler. Nothing fires until Advance is called;
// callbacks then run synchronously on the caller's goroutine in deadline order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTask
}

type manualTask struct {
	at       time.Duration
	seq      int
	fn       func()
	owner    *Manual
	canceled bool
	fired    bool
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	return true
}

// NewManual returns a virtual-time scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(delay time.Duration, fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if delay < 0 {
		delay = 0
	}
	m.seq++
	task := &manualTask{at: m.now + delay, seq: m.seq, fn: fn, owner: m}
	m.pending = append(m.pending, task)
	return task
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns how many callbacks are still waiting to fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, running every callback whose
// deadline falls inside the window. Callbacks scheduled by a callback run in
// the same call if their deadline is also inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}
		task.fn()
	}

	m.mu.Lock()
	m.now = target
	m.compact()
	m.mu.Unlock()
}

// nextDue pops the earliest runnable task with a deadline <= target.
func (m *Manual) nextDue(target time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	for _, t := range m.pending {
		if t.canceled || t.fired {
			continue
		}
		if t.at > target {
			return nil
		}
		t.fired = true
		if t.at > m.now {
			m.now = t.at
		}
		return t
	}
	return nil
}

func (m *Manual) compact() {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.canceled && !t.fired {
			live = append(live, t)
		}
	}
	m.pending = live
}
