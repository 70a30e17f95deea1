package timer

import (
	"sync"
	"time"
)

// Scheduler registers recurring callbacks.
type Scheduler interface {
	// Every calls fn once per interval until the returned Handle is stopped.
	Every(interval time.Duration, fn func()) Handle
}

// Handle cancels a recurring callback registered with a Scheduler.
type Handle interface {
	// Stop cancels the callback. Once Stop returns no new invocation starts.
	// It is safe to call more than once and from inside the callback.
	Stop()
}

// TickerScheduler runs each registration on its own goroutine driven by a
// time.Ticker.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-tk.C:
				if !h.begin() {
					return
				}
				fn()
			}
		}
	}()
	return h
}

type tickerHandle struct {
	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
}

// begin reports whether an invocation may start.
func (h *tickerHandle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped
}

func (h *tickerHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.stop)
}

// ManualScheduler delivers ticks only when Fire is called. Tests use it to
// drive a Timer deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	handles []*manualHandle
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(_ time.Duration, fn func()) Handle {
	h := &manualHandle{fn: fn}
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return h
}

// Fire delivers one tick to every live registration and returns how many
// callbacks ran.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	live := make([]*manualHandle, 0, len(s.handles))
	for _, h := range s.handles {
		if !h.isStopped() {
			live = append(live, h)
		}
	}
	s.handles = live
	s.mu.Unlock()

	fired := 0
	for _, h := range live {
		if h.isStopped() {
			continue
		}
		h.fn()
		fired++
	}
	return fired
}

// FireN calls Fire n times and returns the total number of callbacks run.
func (s *ManualScheduler) FireN(n int) int {
	total := 0
	for range n {
		total += s.Fire()
	}
	return total
}

// Active returns the number of registrations not yet stopped.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.handles {
		if !h.isStopped() {
			n++
		}
	}
	return n
}

type manualHandle struct {
	mu      sync.Mutex
	stopped bool
	fn      func()
}

func (h *manualHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

func (h *manualHandle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}
