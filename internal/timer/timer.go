// Package timer implements the pomodoro countdown state machine.
package timer

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// tickInterval is the wall-clock length of one tick.
const tickInterval = time.Second

// Settings holds mode durations and transition behavior.
type Settings struct {
	Focus      time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
	// LongBreakAfter is the number of completed focus sessions between long
	// breaks. Zero disables long breaks.
	LongBreakAfter int
	AutoStartBreak bool
	AutoStartFocus bool
}

// DefaultSettings returns the canonical 25/5/15 minute cycle.
func DefaultSettings() Settings {
	return Settings{
		Focus:          25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakAfter: 4,
	}
}

// Duration returns the configured length of mode m.
func (s Settings) Duration(m Mode) time.Duration {
	switch m {
	case ShortBreak:
		return s.ShortBreak
	case LongBreak:
		return s.LongBreak
	default:
		return s.Focus
	}
}

// Seconds returns the configured length of mode m in whole seconds, at least 1.
func (s Settings) Seconds(m Mode) int {
	return max(int(s.Duration(m)/time.Second), 1)
}

// State is a snapshot of the timer for rendering.
type State struct {
	Mode              Mode `json:"mode"`
	RemainingSeconds  int  `json:"remainingSeconds"`
	DurationSeconds   int  `json:"durationSeconds"`
	Running           bool `json:"running"`
	SessionsCompleted int  `json:"sessionsCompleted"`
	FocusCompleted    int  `json:"focusCompleted"`
}

// Clock renders the remaining time as mm:ss.
func (s State) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.RemainingSeconds/60, s.RemainingSeconds%60) //nolint:mnd // seconds per minute
}

// Progress returns the elapsed fraction of the current mode in [0, 1].
func (s State) Progress() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	return float64(s.DurationSeconds-s.RemainingSeconds) / float64(s.DurationSeconds)
}

// Event describes a completed session.
type Event struct {
	Mode            Mode      `json:"mode"`
	Next            Mode      `json:"next"`
	DurationSeconds int       `json:"durationSeconds"`
	At              time.Time `json:"at"`
	Sessions        int       `json:"sessions"`
}

// Option configures a Timer.
type Option func(*Timer)

// OnComplete registers fn to run after each completed session.
func OnComplete(fn func(Event)) Option {
	return func(t *Timer) { t.onComplete = fn }
}

// OnTick registers fn to run after every tick with the new state.
func OnTick(fn func(State)) Option {
	return func(t *Timer) { t.onTick = fn }
}

// WithLogger sets the timer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Timer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClock replaces the clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// Timer is a pomodoro countdown. At most one tick registration is live at a
// time; every registration carries a generation number, and ticks from an
// older generation are dropped. Pause and SetMode also wait for a tick
// callback already running, so no tick is observed after they return.
//
// Callbacks run one at a time and must not call Pause, SetMode, Reset,
// Toggle or Tick on the same Timer.
type Timer struct {
	mu        sync.Mutex
	cbMu      sync.Mutex // held while OnTick/OnComplete run
	settings  Settings
	scheduler Scheduler

	mode      Mode
	remaining int
	running   bool
	sessions  int
	focusDone int

	handle Handle
	gen    uint64

	onComplete func(Event)
	onTick     func(State)
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Timer in focus mode, armed but not running. A nil scheduler
// defaults to TickerScheduler.
func New(settings Settings, scheduler Scheduler, opts ...Option) *Timer {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	t := &Timer{
		settings:  settings,
		scheduler: scheduler,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.remaining = settings.Seconds(Focus)
	return t
}

// State returns a snapshot of the timer.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Settings returns the configured durations.
func (t *Timer) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetMode switches to m, re-arms its full duration and stops any countdown.
func (t *Timer) SetMode(m Mode) {
	t.mu.Lock()
	h := t.detachLocked()
	t.armLocked(m)
	t.mu.Unlock()

	stop(h)
	t.waitCallbacks()
	t.logger.Debug("timer mode set", "mode", m.String())
}

// Start begins the countdown. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.startLocked()
	t.logger.Debug("timer started", "mode", t.mode.String(), "remaining", t.remaining)
}

// Pause stops the countdown and keeps the remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	h := t.detachLocked()
	remaining := t.remaining
	t.mu.Unlock()

	stop(h)
	t.waitCallbacks()
	t.logger.Debug("timer paused", "remaining", remaining)
}

// Toggle starts a paused timer or pauses a running one.
func (t *Timer) Toggle() {
	if t.State().Running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset re-arms the current mode without completing a session.
func (t *Timer) Reset() {
	t.SetMode(t.State().Mode)
}

// Tick advances the countdown by one second. It is a no-op while paused.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.advance()
}

// tick is the scheduled callback for registration gen.
func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.advance()
}

// advance is called with t.mu held and releases it.
func (t *Timer) advance() {
	t.remaining--

	var (
		h  Handle
		ev *Event
	)
	if t.remaining <= 0 {
		h, ev = t.completeLocked()
	}
	st := t.stateLocked()
	gen := t.gen
	onTick, onComplete := t.onTick, t.onComplete
	t.mu.Unlock()

	stop(h)
	if ev != nil {
		t.logger.Info("session completed", "mode", ev.Mode.String(), "next", ev.Next.String(), "sessions", ev.Sessions)
	}

	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	// A Pause or SetMode that slipped in since the unlock makes st stale.
	if onTick != nil && t.isCurrent(gen) {
		onTick(st)
	}
	// Completion already happened and is always reported.
	if ev != nil && onComplete != nil {
		onComplete(*ev)
	}
}

func (t *Timer) isCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen == gen
}

// waitCallbacks blocks until a callback in progress has returned.
func (t *Timer) waitCallbacks() {
	t.cbMu.Lock()
	t.cbMu.Unlock() //nolint:staticcheck // barrier
}

// completeLocked finishes the current mode, transitions and returns the
// handle to stop plus the completion event.
func (t *Timer) completeLocked() (Handle, *Event) {
	h := t.detachLocked()
	done := t.mode
	t.sessions++
	if done == Focus {
		t.focusDone++
	}
	next := t.nextMode(done)

	ev := &Event{
		Mode:            done,
		Next:            next,
		DurationSeconds: t.settings.Seconds(done),
		At:              t.now(),
		Sessions:        t.sessions,
	}

	t.armLocked(next)
	if (next.IsBreak() && t.settings.AutoStartBreak) || (next == Focus && t.settings.AutoStartFocus) {
		t.startLocked()
	}
	return h, ev
}

func (t *Timer) nextMode(done Mode) Mode {
	if done.IsBreak() {
		return Focus
	}
	if n := t.settings.LongBreakAfter; n > 0 && t.focusDone%n == 0 {
		return LongBreak
	}
	return ShortBreak
}

func (t *Timer) startLocked() {
	t.running = true
	t.gen++
	gen := t.gen
	t.handle = t.scheduler.Every(tickInterval, func() { t.tick(gen) })
}

// detachLocked invalidates the live registration and returns its handle so
// the caller can stop it after releasing the lock.
func (t *Timer) detachLocked() Handle {
	h := t.handle
	t.handle = nil
	t.running = false
	t.gen++
	return h
}

func (t *Timer) armLocked(m Mode) {
	t.mode = m
	t.remaining = t.settings.Seconds(m)
}

func (t *Timer) stateLocked() State {
	return State{
		Mode:              t.mode,
		RemainingSeconds:  t.remaining,
		DurationSeconds:   t.settings.Seconds(t.mode),
		Running:           t.running,
		SessionsCompleted: t.sessions,
		FocusCompleted:    t.focusDone,
	}
}

func stop(h Handle) {
	if h != nil {
		h.Stop()
	}
}
