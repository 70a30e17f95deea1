package tui

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

// loopScheduler is a timer.Scheduler that delivers ticks through the Bubble
// Tea event loop. Registrations are queued by Every and turned into tea.Tick
// commands by drain; every callback then runs inside Update, so the model and
// the timer are only ever touched from one goroutine.
type loopScheduler struct {
	pending []*loopHandle
	live    []*loopHandle
}

type loopHandle struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

// Stop implements timer.Handle. A tick already queued for a stopped handle
// is dropped when it arrives.
func (h *loopHandle) Stop() {
	h.stopped = true
}

// loopTickMsg carries one tick for a registration.
type loopTickMsg struct {
	h *loopHandle
}

// Every implements timer.Scheduler.
func (s *loopScheduler) Every(interval time.Duration, fn func()) timer.Handle {
	h := &loopHandle{interval: interval, fn: fn}
	s.pending = append(s.pending, h)
	s.live = slices.DeleteFunc(s.live, func(l *loopHandle) bool { return l.stopped })
	s.live = append(s.live, h)
	return h
}

// drain schedules the first tick of every registration made since the last
// call.
func (s *loopScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(s.pending))
	for _, h := range s.pending {
		if !h.stopped {
			cmds = append(cmds, h.next())
		}
	}
	s.pending = s.pending[:0]
	return tea.Batch(cmds...)
}

// deliver runs one tick and schedules the following one.
func (s *loopScheduler) deliver(msg loopTickMsg) tea.Cmd {
	h := msg.h
	if h == nil || h.stopped {
		return nil
	}
	h.fn()
	var cmd tea.Cmd
	if !h.stopped {
		cmd = h.next()
	}
	return tea.Batch(cmd, s.drain())
}

func (h *loopHandle) next() tea.Cmd {
	return tea.Tick(h.interval, func(time.Time) tea.Msg { return loopTickMsg{h: h} })
}
