/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"sync"
	"time"
)

type timerState int

const (
	timerIdle timerState = iota
	timerRunning
	timerPaused
	timerStopped
	timerFired
)

// Timer is a one-shot countdown that can be paused, resumed and cancelled.
// fn runs on its own goroutine at most once.
type Timer struct {
	mu sync.Mutex

	fn        func()
	remaining time.Duration
	deadline  time.Time
	state     timerState
	gen       int
	t         *time.Timer
}

func NewTimer(d time.Duration, fn func()) *Timer {
	return &Timer{
		fn:        fn,
		remaining: d,
	}
}

// Start begins the countdown. It reports false if the timer was already
// started or has been stopped.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != timerIdle {
		return false
	}
	t.scheduleLocked()

	return true
}

// Stop cancels the timer for good.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case timerStopped, timerFired:
		return false
	case timerRunning:
		t.t.Stop()
		t.remaining = time.Until(t.deadline)
	}
	t.state = timerStopped
	t.gen++

	return true
}

// Pause freezes a running countdown, keeping the time left.
func (t *Timer) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != timerRunning {
		return false
	}
	t.t.Stop()
	t.remaining = max(time.Until(t.deadline), 0)
	t.state = timerPaused
	t.gen++

	return true
}

// Resume continues a paused countdown.
func (t *Timer) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != timerPaused {
		return false
	}
	t.scheduleLocked()

	return true
}

// Remaining reports the time left before fn runs.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case timerRunning:
		return max(time.Until(t.deadline), 0)
	case timerFired:
		return 0
	default:
		return max(t.remaining, 0)
	}
}

// Fired reports whether the countdown has run out.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == timerFired
}

// Running reports whether the countdown is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == timerRunning
}

func (t *Timer) scheduleLocked() {
	t.gen++
	gen := t.gen

	t.state = timerRunning
	t.deadline = time.Now().Add(t.remaining)
	t.t = time.AfterFunc(t.remaining, func() { t.fire(gen) })
}

func (t *Timer) fire(gen int) {
	t.mu.Lock()
	if t.state != timerRunning || t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.state = timerFired
	t.remaining = 0
	t.mu.Unlock()

	if t.fn != nil {
		t.fn()
	}
}
