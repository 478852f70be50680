package main

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameCallback is invoked once per scheduled frame with the frame timestamp.
type FrameCallback func(now time.Time)

// FrameScheduler schedules a single next frame. Callers schedule again from
// inside the callback, so at most one frame is ever pending.
type FrameScheduler interface {
	Schedule(fn FrameCallback) FrameHandle
}

// FrameHandle cancels a pending frame. Cancel is idempotent and a no-op once
// the frame has run.
type FrameHandle interface {
	Cancel()
}

// frameMsg is delivered to the bubbletea program when a scheduled frame is due.
type frameMsg struct {
	id uint64
	at time.Time
}

// teaScheduler turns frame requests into tea.Tick commands. It is driven from
// the bubbletea Update loop and is not safe for concurrent use.
type teaScheduler struct {
	interval  time.Duration
	nextID    uint64
	pendingID uint64
	pending   FrameCallback
	queued    tea.Cmd
}

func newTeaScheduler(interval time.Duration) *teaScheduler {
	return &teaScheduler{interval: interval}
}

func (s *teaScheduler) Schedule(fn FrameCallback) FrameHandle {
	s.nextID++
	id := s.nextID
	s.pendingID = id
	s.pending = fn
	s.queued = tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return frameMsg{id: id, at: t}
	})
	return teaFrame{s: s, id: id}
}

// Cmd hands the queued tick to the program, at most once.
func (s *teaScheduler) Cmd() tea.Cmd {
	cmd := s.queued
	s.queued = nil
	return cmd
}

// Fire runs the pending callback if msg belongs to it. Ticks of cancelled or
// superseded frames are dropped.
func (s *teaScheduler) Fire(msg frameMsg) bool {
	if s.pending == nil || msg.id != s.pendingID {
		return false
	}
	fn := s.pending
	s.pending = nil
	s.pendingID = 0
	fn(msg.at)
	return true
}

type teaFrame struct {
	s  *teaScheduler
	id uint64
}

func (f teaFrame) Cancel() {
	if f.s.pendingID != f.id {
		return
	}
	f.s.pending = nil
	f.s.pendingID = 0
	f.s.queued = nil
}

// manualScheduler runs frames only when stepped. Used for headless rendering.
type manualScheduler struct {
	mu      sync.Mutex
	nextID  uint64
	id      uint64
	pending FrameCallback
}

func (s *manualScheduler) Schedule(fn FrameCallback) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.id = s.nextID
	s.pending = fn
	return &manualFrame{s: s, id: s.id}
}

// Pending reports whether a frame is waiting.
func (s *manualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Step runs the pending frame, if any, at the given time.
func (s *manualScheduler) Step(now time.Time) bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(now)
	return true
}

type manualFrame struct {
	s  *manualScheduler
	id uint64
}

func (f *manualFrame) Cancel() {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.id == f.id {
		f.s.pending = nil
	}
}
