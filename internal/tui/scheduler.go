package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuiear/internal/scheduler"
)

type timerMsg struct {
	id int
}

// teaScheduler turns scheduled callbacks into tick messages so they run on
// the Bubble Tea update goroutine.
type teaScheduler struct {
	now    func() time.Time
	nextID int
	tasks  map[int]func()
	queued []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{now: time.Now, tasks: map[int]func(){}}
}

func (s *teaScheduler) Schedule(delay time.Duration, fn func()) scheduler.Handle {
	s.nextID++
	id := s.nextID
	s.tasks[id] = fn
	s.queued = append(s.queued, tea.Tick(delay, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return teaHandle{s: s, id: id}
}

func (s *teaScheduler) Now() time.Time {
	return s.now()
}

// fire runs the task for id unless it was canceled.
func (s *teaScheduler) fire(id int) bool {
	fn, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	fn()
	return true
}

// drain returns the ticks queued since the last call.
func (s *teaScheduler) drain() []tea.Cmd {
	cmds := s.queued
	s.queued = nil
	return cmds
}

type teaHandle struct {
	s  *teaScheduler
	id int
}

func (h teaHandle) Cancel() bool {
	if _, ok := h.s.tasks[h.id]; !ok {
		return false
	}
	delete(h.s.tasks, h.id)
	return true
}
