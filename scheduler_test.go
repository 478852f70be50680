package main

import (
	"testing"
	"time"
)

func TestTeaSchedulerFire(t *testing.T) {
	s := newTeaScheduler(time.Second / 60)
	var fired []time.Time

	s.Schedule(func(now time.Time) { fired = append(fired, now) })
	if s.Cmd() == nil {
		t.Fatal("Cmd() = nil after Schedule")
	}
	if s.Cmd() != nil {
		t.Error("Cmd() returned the tick twice")
	}

	at := time.Unix(10, 0)
	if !s.Fire(frameMsg{id: 1, at: at}) {
		t.Fatal("Fire() rejected the pending frame")
	}
	if len(fired) != 1 || !fired[0].Equal(at) {
		t.Errorf("fired = %v, want [%v]", fired, at)
	}
	if s.Fire(frameMsg{id: 1, at: at}) {
		t.Error("Fire() ran the same frame twice")
	}
}

func TestTeaSchedulerDropsStaleFrames(t *testing.T) {
	s := newTeaScheduler(time.Millisecond)
	var calls []int

	s.Schedule(func(time.Time) { calls = append(calls, 1) })
	s.Schedule(func(time.Time) { calls = append(calls, 2) })

	if s.Fire(frameMsg{id: 1}) {
		t.Error("superseded frame fired")
	}
	if !s.Fire(frameMsg{id: 2}) {
		t.Error("current frame did not fire")
	}
	if len(calls) != 1 || calls[0] != 2 {
		t.Errorf("calls = %v, want [2]", calls)
	}
}

func TestTeaSchedulerCancel(t *testing.T) {
	s := newTeaScheduler(time.Millisecond)
	ran := false
	h := s.Schedule(func(time.Time) { ran = true })

	h.Cancel()
	h.Cancel()
	if s.Cmd() != nil {
		t.Error("cancelled frame still queued a tick")
	}
	if s.Fire(frameMsg{id: 1}) || ran {
		t.Error("cancelled frame fired")
	}

	// Cancelling an old handle must not touch a newer frame.
	s.Schedule(func(time.Time) { ran = true })
	h.Cancel()
	if !s.Fire(frameMsg{id: 2}) || !ran {
		t.Error("stale handle cancelled the newer frame")
	}
}

func TestManualScheduler(t *testing.T) {
	s := &manualScheduler{}
	if s.Step(time.Now()) {
		t.Error("Step() ran with nothing scheduled")
	}

	count := 0
	var loop FrameCallback
	loop = func(time.Time) {
		count++
		s.Schedule(loop)
	}
	h := s.Schedule(loop)
	for i := 0; i < 3; i++ {
		s.Step(time.Unix(int64(i), 0))
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// h belongs to the first frame, which already ran.
	h.Cancel()
	if !s.Pending() {
		t.Error("old handle cancelled the current frame")
	}
}
