package report

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func status(ok, color bool) string {
	text := "Failed"
	style := failedStyle
	if ok {
		text = "Success"
		style = successStyle
	}
	if !color {
		return text
	}
	return style.Render(text)
}

// renderYAML pretty-prints playbook contents as a fenced YAML block.
// Falls back to the raw input if glamour fails.
func renderYAML(contents string) string {
	if strings.TrimSpace(contents) == "" {
		return contents
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return contents
	}
	out, err := r.Render("```yaml\n" + strings.TrimRight(contents, "\n") + "\n```\n")
	if err != nil {
		return contents
	}
	return strings.TrimRight(out, "\n") + "\n"
}
