/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"testing"
	"time"
)

func TestTimerFires(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 2)
	tm := NewTimer(10*time.Millisecond, func() { fired <- struct{}{} })

	if !tm.Start() {
		t.Fatal("expected Start to succeed")
	}
	if tm.Start() {
		t.Error("expected second Start to be refused")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	if !tm.Fired() {
		t.Error("expected Fired after expiry")
	}
	if tm.Remaining() != 0 {
		t.Errorf("expected no time remaining, got %v", tm.Remaining())
	}
	if tm.Stop() {
		t.Error("expected Stop after firing to report false")
	}
}

func TestTimerStop(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 1)
	tm := NewTimer(20*time.Millisecond, func() { fired <- struct{}{} })
	tm.Start()

	if !tm.Stop() {
		t.Fatal("expected Stop to cancel a running timer")
	}
	if tm.Resume() || tm.Start() {
		t.Error("expected a stopped timer to stay stopped")
	}

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerPauseResume(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{}, 1)
	tm := NewTimer(50*time.Millisecond, func() { fired <- struct{}{} })

	if tm.Pause() {
		t.Error("expected Pause on idle timer to be refused")
	}

	tm.Start()
	if !tm.Pause() {
		t.Fatal("expected Pause to succeed")
	}

	left := tm.Remaining()
	if left <= 0 || left > 50*time.Millisecond {
		t.Fatalf("unexpected remaining time %v", left)
	}

	select {
	case <-fired:
		t.Fatal("paused timer fired")
	case <-time.After(120 * time.Millisecond):
	}

	if got := tm.Remaining(); got != left {
		t.Errorf("expected remaining time to hold at %v while paused, got %v", left, got)
	}

	if !tm.Resume() {
		t.Fatal("expected Resume to succeed")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("resumed timer did not fire")
	}
}

func TestTimerIdleRemaining(t *testing.T) {
	t.Parallel()

	tm := NewTimer(time.Minute, nil)
	if got := tm.Remaining(); got != time.Minute {
		t.Errorf("expected full duration before start, got %v", got)
	}
	if tm.Running() {
		t.Error("expected idle timer not to be running")
	}
}
