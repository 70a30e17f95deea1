package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
)

func newManual(t *testing.T, settings Settings, opts ...Option) (*Timer, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	return New(settings, sched, opts...), sched
}

func shortSettings() Settings {
	return Settings{
		Focus:          3 * time.Second,
		ShortBreak:     2 * time.Second,
		LongBreak:      4 * time.Second,
		LongBreakAfter: 2,
	}
}

func TestNew_Defaults(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())

	st := tm.State()
	assert.Equal(t, Focus, st.Mode)
	assert.Equal(t, 1500, st.RemainingSeconds)
	assert.Equal(t, 1500, st.DurationSeconds)
	assert.False(t, st.Running)
	assert.Equal(t, 0, st.SessionsCompleted)
	assert.Equal(t, 0, sched.Active())
}

func TestFullFocusSession(t *testing.T) {
	var events []Event
	tm, sched := newManual(t, DefaultSettings(), OnComplete(func(ev Event) { events = append(events, ev) }))

	tm.Start()
	fired := sched.FireN(1500)

	assert.Equal(t, 1500, fired)
	st := tm.State()
	assert.Equal(t, 1, st.SessionsCompleted)
	assert.Equal(t, ShortBreak, st.Mode)
	assert.Equal(t, 300, st.RemainingSeconds)
	assert.False(t, st.Running)
	assert.Equal(t, 0, sched.Active(), "countdown released at expiry")

	require.Len(t, events, 1)
	assert.Equal(t, Focus, events[0].Mode)
	assert.Equal(t, ShortBreak, events[0].Next)
	assert.Equal(t, 1500, events[0].DurationSeconds)

	assert.Zero(t, sched.Fire(), "no ticks after expiry")
}

func TestDirectTickCalls(t *testing.T) {
	tm, _ := newManual(t, DefaultSettings())
	tm.Start()
	for range 1500 {
		tm.Tick()
	}

	st := tm.State()
	assert.Equal(t, 1, st.SessionsCompleted)
	assert.Equal(t, ShortBreak, st.Mode)
	assert.Equal(t, 300, st.RemainingSeconds)
	assert.False(t, st.Running)
}

func TestBreakReturnsToFocus(t *testing.T) {
	tm, sched := newManual(t, shortSettings())
	tm.SetMode(ShortBreak)
	tm.Start()
	sched.FireN(2)

	st := tm.State()
	assert.Equal(t, Focus, st.Mode)
	assert.Equal(t, 3, st.RemainingSeconds)
	assert.Equal(t, 1, st.SessionsCompleted)
	assert.Equal(t, 0, st.FocusCompleted)
}

func TestLongBreakCycle(t *testing.T) {
	tm, sched := newManual(t, shortSettings())

	var modes []Mode
	for range 4 {
		tm.Start()
		sched.FireN(tm.State().RemainingSeconds)
		modes = append(modes, tm.State().Mode)
	}

	assert.Equal(t, []Mode{ShortBreak, Focus, LongBreak, Focus}, modes)
	assert.Equal(t, 4, tm.State().SessionsCompleted)
	assert.Equal(t, 2, tm.State().FocusCompleted)
}

func TestLongBreakDisabled(t *testing.T) {
	s := shortSettings()
	s.LongBreakAfter = 0
	tm, sched := newManual(t, s)

	for range 3 {
		tm.SetMode(Focus)
		tm.Start()
		sched.FireN(3)
		assert.Equal(t, ShortBreak, tm.State().Mode)
	}
}

func TestAutoStart(t *testing.T) {
	s := shortSettings()
	s.AutoStartBreak = true
	tm, sched := newManual(t, s)

	tm.Start()
	sched.FireN(3)

	st := tm.State()
	assert.Equal(t, ShortBreak, st.Mode)
	assert.True(t, st.Running)
	assert.Equal(t, 1, sched.Active())

	sched.FireN(2)
	st = tm.State()
	assert.Equal(t, Focus, st.Mode)
	assert.False(t, st.Running, "focus auto-start is off")
	assert.Equal(t, 0, sched.Active())
}

func TestStartTwice_SingleTickSource(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())

	tm.Start()
	tm.Start()
	assert.Equal(t, 1, sched.Active())

	assert.Equal(t, 1, sched.Fire())
	assert.Equal(t, 1499, tm.State().RemainingSeconds)

	tm.Pause()
	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, 0, sched.FireN(10))
	assert.Equal(t, 1499, tm.State().RemainingSeconds)
}

func TestPause_Resumable(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())
	tm.Start()
	sched.FireN(10)
	tm.Pause()

	st := tm.State()
	assert.False(t, st.Running)
	assert.Equal(t, 1490, st.RemainingSeconds)

	tm.Start()
	sched.FireN(5)
	assert.Equal(t, 1485, tm.State().RemainingSeconds)
}

func TestNoOpsWhenNotRunning(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())

	tm.Pause()
	tm.Tick()
	assert.Equal(t, 1500, tm.State().RemainingSeconds)
	assert.Equal(t, 0, sched.Active())
}

func TestSetMode(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())
	tm.Start()
	sched.FireN(30)

	tm.SetMode(LongBreak)
	st := tm.State()
	assert.Equal(t, LongBreak, st.Mode)
	assert.Equal(t, 900, st.RemainingSeconds)
	assert.False(t, st.Running)
	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, 0, st.SessionsCompleted)
}

func TestReset(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())
	tm.SetMode(ShortBreak)
	tm.Start()
	sched.FireN(100)

	tm.Reset()
	st := tm.State()
	assert.Equal(t, ShortBreak, st.Mode)
	assert.Equal(t, 300, st.RemainingSeconds)
	assert.False(t, st.Running)
	assert.Equal(t, 0, st.SessionsCompleted)
}

func TestToggle(t *testing.T) {
	tm, sched := newManual(t, DefaultSettings())

	tm.Toggle()
	assert.True(t, tm.State().Running)
	tm.Toggle()
	assert.False(t, tm.State().Running)
	assert.Equal(t, 0, sched.Active())
}

func TestStaleTickIsDropped(t *testing.T) {
	// A scheduler that hands out callbacks without ever cancelling them
	// simulates a tick already in flight when Pause returns.
	var captured []func()
	sched := schedulerFunc(func(_ time.Duration, fn func()) Handle {
		captured = append(captured, fn)
		return nopHandle{}
	})
	tm := New(DefaultSettings(), sched)

	tm.Start()
	tm.Pause()
	captured[0]()
	assert.Equal(t, 1500, tm.State().RemainingSeconds)

	tm.Start()
	captured[0]()
	assert.Equal(t, 1500, tm.State().RemainingSeconds, "old generation stays dead after restart")
	captured[1]()
	assert.Equal(t, 1499, tm.State().RemainingSeconds)
}

func TestPause_WaitsForRunningTickCallback(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var pauseReturned atomic.Bool
	var lateTicks atomic.Int32

	var once sync.Once
	tm, sched := newManual(t, DefaultSettings(), OnTick(func(State) {
		once.Do(func() { close(entered) })
		<-release
		if pauseReturned.Load() {
			lateTicks.Add(1)
		}
	}))
	tm.Start()

	go sched.Fire()
	<-entered

	paused := make(chan struct{})
	go func() {
		tm.Pause()
		pauseReturned.Store(true)
		close(paused)
	}()

	select {
	case <-paused:
		t.Fatal("Pause returned while a tick callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-paused
	assert.Zero(t, lateTicks.Load())
	assert.False(t, tm.State().Running)
	assert.Zero(t, sched.Fire(), "no registration survives Pause")
}

func TestPause_DropsTickWaitingToReportState(t *testing.T) {
	var ticks atomic.Int32
	tm, sched := newManual(t, DefaultSettings(), OnTick(func(State) { ticks.Add(1) }))
	tm.Start()

	// Holding the callback lock parks the tick between its state change
	// and its OnTick call.
	tm.cbMu.Lock()
	fired := make(chan struct{})
	go func() {
		sched.Fire()
		close(fired)
	}()
	require.Eventually(t, func() bool { return tm.State().RemainingSeconds == 1499 },
		time.Second, time.Millisecond)

	paused := make(chan struct{})
	go func() {
		tm.Pause()
		close(paused)
	}()
	require.Eventually(t, func() bool { return !tm.State().Running }, time.Second, time.Millisecond)

	tm.cbMu.Unlock()
	<-fired
	<-paused

	assert.Zero(t, ticks.Load(), "tick state from before Pause is never reported")
	assert.Equal(t, 1499, tm.State().RemainingSeconds)
}

func TestOnTick(t *testing.T) {
	var seen []int
	tm, sched := newManual(t, shortSettings(), OnTick(func(st State) { seen = append(seen, st.RemainingSeconds) }))
	tm.Start()
	sched.FireN(3)

	assert.Equal(t, []int{2, 1, 2}, seen, "last tick reports the re-armed break")
}

func TestRemainingStaysInRange(t *testing.T) {
	tm, sched := newManual(t, shortSettings())
	s := shortSettings()
	for range 20 {
		tm.Start()
		sched.Fire()
		st := tm.State()
		assert.GreaterOrEqual(t, st.RemainingSeconds, 0)
		assert.LessOrEqual(t, st.RemainingSeconds, s.Seconds(st.Mode))
	}
}

func TestTickerScheduler_StopsTicking(t *testing.T) {
	var count atomic.Int32
	h := TickerScheduler{}.Every(time.Millisecond, func() { count.Add(1) })

	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()

	after := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, count.Load(), after+1, "at most the in-flight call completes")
}

func TestTimer_WithTickerScheduler(t *testing.T) {
	s := Settings{Focus: 2 * time.Second, ShortBreak: time.Second, LongBreak: time.Second}
	done := make(chan Event, 1)
	tm := New(s, TickerScheduler{}, OnComplete(func(ev Event) { done <- ev }))

	tm.Start()
	select {
	case ev := <-done:
		assert.Equal(t, Focus, ev.Mode)
	case <-time.After(5 * time.Second):
		t.Fatal("focus session never completed")
	}
	assert.Equal(t, ShortBreak, tm.State().Mode)
}

func TestTimer_ConcurrentControl(t *testing.T) {
	tm := New(Settings{Focus: time.Hour, ShortBreak: time.Minute, LongBreak: time.Minute}, TickerScheduler{})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				tm.Start()
			} else {
				tm.Pause()
			}
		}()
	}
	wg.Wait()
	tm.Pause()

	assert.False(t, tm.State().Running)
}

func TestState_Clock(t *testing.T) {
	assert.Equal(t, "25:00", State{RemainingSeconds: 1500}.Clock())
	assert.Equal(t, "04:05", State{RemainingSeconds: 245}.Clock())
	assert.Equal(t, "00:00", State{}.Clock())
}

func TestState_Progress(t *testing.T) {
	assert.InDelta(t, 0.5, State{RemainingSeconds: 150, DurationSeconds: 300}.Progress(), 1e-9)
	assert.Zero(t, State{}.Progress())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"focus": Focus, "Work": Focus,
		"short": ShortBreak, "shortBreak": ShortBreak,
		"long": LongBreak, "long-break": LongBreak,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("nap")
	assert.True(t, clierr.HasCode(err, clierr.InvalidMode))
}

func TestMode_TextRoundTrip(t *testing.T) {
	for _, m := range Modes {
		b, err := m.MarshalText()
		require.NoError(t, err)
		var got Mode
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, m, got)
	}
}

type schedulerFunc func(time.Duration, func()) Handle

func (f schedulerFunc) Every(d time.Duration, fn func()) Handle { return f(d, fn) }

type nopHandle struct{}

func (nopHandle) Stop() {}
