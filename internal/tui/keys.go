package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Add        key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	Clear      key.Binding
	Filter     key.Binding
	StartPause key.Binding
	Reset      key.Binding
	Focus      key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
		Delete:     key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear done")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		StartPause: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/pause")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Focus:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "focus")),
		ShortBreak: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "short break")),
		LongBreak:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "long break")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", keyEsc), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Filter, k.StartPause, k.Reset, k.Help, k.Quit}
}

// FullHelp groups every binding for the help screen.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Toggle, k.Delete, k.Clear, k.Filter},
		{k.StartPause, k.Reset, k.Focus, k.ShortBreak, k.LongBreak},
		{k.Help, k.Quit},
	}
}

var helpSections = []string{"Tasks", "Timer", "General"}

// helpMarkdown renders the key map as a markdown document.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# focusboard\n\n")
	b.WriteString("Tasks are saved after every change. Completed timer sessions go to the activity log.\n\n")
	for i, group := range k.FullHelp() {
		fmt.Fprintf(&b, "## %s\n\n| Key | Action |\n|---|---|\n", helpSections[i])
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("Press `?` or `esc` to close this screen.\n")
	return b.String()
}

// renderHelp renders markdown for the terminal, falling back to the raw
// source when glamour fails.
func renderHelp(md string, width int, plain bool) string {
	style := "dark"
	if plain {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)), //nolint:mnd // margins
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
