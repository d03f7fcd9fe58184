package picker

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the picker key bindings.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all/none"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// keyBarText renders the hint line from the bindings' help text.
func keyBarText() string {
	var parts []string
	for _, b := range []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.All, keys.Confirm, keys.Quit} {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+keyDescStyle.Render(":"+h.Desc))
	}
	return strings.Join(parts, "  ")
}
