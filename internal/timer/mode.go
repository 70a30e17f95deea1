package timer

import (
	"strings"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
)

// Mode is the kind of interval the timer is counting down.
type Mode int

// Timer modes.
const (
	Focus Mode = iota
	ShortBreak
	LongBreak
)

// Modes lists every mode in display order.
var Modes = []Mode{Focus, ShortBreak, LongBreak}

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ShortBreak:
		return "shortBreak"
	case LongBreak:
		return "longBreak"
	default:
		return "focus"
	}
}

// Label returns a human-readable name.
func (m Mode) Label() string {
	switch m {
	case ShortBreak:
		return "Short break"
	case LongBreak:
		return "Long break"
	default:
		return "Focus"
	}
}

// IsBreak reports whether m is one of the break modes.
func (m Mode) IsBreak() bool {
	return m == ShortBreak || m == LongBreak
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "focus", "work", "pomodoro":
		return Focus, nil
	case "short", "shortbreak", "short-break", "short_break", "break":
		return ShortBreak, nil
	case "long", "longbreak", "long-break", "long_break":
		return LongBreak, nil
	}
	return Focus, clierr.Newf(clierr.InvalidMode, "invalid timer mode %q", s).
		WithDetails(map[string]any{
			"mode":    s,
			"allowed": []string{"focus", "short", "long"},
		})
}
