// Package picker is a Bubble Tea checklist for choosing playbooks to run
// when no tokens are given on the command line.
package picker

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/playctl/pkg/report"
)

// ErrCancelled is returned by Pick when the user leaves without confirming.
var ErrCancelled = errors.New("selection cancelled")

var (
	colorGreen = lipgloss.Color("42")
	colorCyan  = lipgloss.Color("51")
	colorDim   = lipgloss.Color("240")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	checkedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	keyStyle     = lipgloss.NewStyle().Bold(true)
	keyDescStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Model is the picker state.
type Model struct {
	items     []report.ListItem
	cursor    int
	checked   map[int]bool
	width     int
	confirmed bool
	quitting  bool
}

// NewModel creates a picker over items, which are shown in the given order.
func NewModel(items []report.ListItem) Model {
	return Model{items: items, checked: make(map[int]bool), width: 80}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(m.items) > 0 {
				o := m.items[m.cursor].Ordinal
				m.checked[o] = !m.checked[o]
			}
		case key.Matches(msg, keys.All):
			all := len(m.Selected()) < len(m.items)
			for _, it := range m.items {
				m.checked[it.Ordinal] = all
			}
		case key.Matches(msg, keys.Confirm):
			// Enter with nothing checked runs the row under the cursor.
			if len(m.Selected()) == 0 && len(m.items) > 0 {
				m.checked[m.items[m.cursor].Ordinal] = true
			}
			m.confirmed = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// Confirmed reports whether the user accepted the selection.
func (m Model) Confirmed() bool { return m.confirmed }

// Selected returns the checked playbooks as ordinal tokens, in list order.
func (m Model) Selected() []string {
	var out []string
	for _, it := range m.items {
		if m.checked[it.Ordinal] {
			out = append(out, strconv.Itoa(it.Ordinal))
		}
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.confirmed {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("  Select playbooks to run"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  no playbooks found"))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		box := "[ ]"
		if m.checked[it.Ordinal] {
			box = checkedStyle.Render("[x]")
		}
		b.WriteString(m.row(i == m.cursor, box, it))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(keyBarText())
	return b.String()
}

func (m Model) row(current bool, box string, it report.ListItem) string {
	text := fmt.Sprintf("%d: %s", it.Ordinal, it.File)
	if it.Name != "" {
		text += " - " + it.Name
	}
	// "  ▸ [x] " prefix
	if avail := m.width - 8; avail > 0 {
		text = runewidth.Truncate(text, avail, "…")
	}
	if current {
		return cursorStyle.Render("  ▸ ") + box + " " + cursorStyle.Render(text)
	}
	return "    " + box + " " + text
}

// Pick runs the picker on the given terminal streams and returns the chosen
// ordinal tokens.
func Pick(items []report.ListItem, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(NewModel(items), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	m := final.(Model)
	if !m.Confirmed() || len(m.Selected()) == 0 {
		return nil, ErrCancelled
	}
	return m.Selected(), nil
}
