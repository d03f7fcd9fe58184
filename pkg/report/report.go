// Package report renders list, describe and run results as the plain text
// the CLI prints, or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ormasoftchile/playctl/pkg/engine"
)

// Options control terminal decoration. The zero value produces plain text.
type Options struct {
	// Color styles run statuses with lipgloss.
	Color bool
	// Render pretty-prints raw playbook contents with glamour.
	Render bool
}

// ListItem is one row of the list command.
type ListItem struct {
	Ordinal int      `json:"ordinal"`
	File    string   `json:"file"`
	Name    string   `json:"name,omitempty"`
	Vars    []string `json:"vars,omitempty"`
}

// ListReport is the JSON shape of the list command.
type ListReport struct {
	Dir       string     `json:"dir"`
	Playbooks []ListItem `json:"playbooks"`
}

// DescribeItem is one playbook in the describe command.
type DescribeItem struct {
	Ordinal  int      `json:"ordinal"`
	File     string   `json:"file"`
	Name     string   `json:"name,omitempty"`
	Vars     []string `json:"vars,omitempty"`
	Plays    int      `json:"plays,omitempty"`
	Contents string   `json:"contents,omitempty"`
}

// DescribeReport is the JSON shape of the describe command.
type DescribeReport struct {
	Playbooks []DescribeItem `json:"playbooks"`
}

// RunReport is the JSON shape of the run command.
type RunReport struct {
	Outcomes []engine.Outcome `json:"outcomes"`
	Failed   int              `json:"failed"`
}

// NewRunReport wraps an engine report for JSON output.
func NewRunReport(r *engine.Report) RunReport {
	out := RunReport{Outcomes: []engine.Outcome{}}
	if r != nil {
		out.Outcomes = append(out.Outcomes, r.Outcomes...)
		out.Failed = r.Failed()
	}
	return out
}

// separator sits between a playbook header and its raw contents.
const separator = "==========================="

// List renders "<ordinal>: <file>" per playbook, adding " - <name>" when
// verbose.
func List(items []ListItem, verbose bool) string {
	var b strings.Builder
	for _, it := range items {
		if verbose {
			fmt.Fprintf(&b, "%d: %s - %s\n", it.Ordinal, it.File, it.Name)
		} else {
			fmt.Fprintf(&b, "%d: %s\n", it.Ordinal, it.File)
		}
	}
	return b.String()
}

// Describe renders either the raw contents of each playbook (verbose) or a
// one-line summary with its templated variables.
func Describe(items []DescribeItem, verbose bool, opts Options) string {
	var b strings.Builder
	for _, it := range items {
		if verbose {
			fmt.Fprintf(&b, "%d: %s\n%s\n", it.Ordinal, it.File, separator)
			if opts.Render {
				b.WriteString(renderYAML(it.Contents))
			} else {
				b.WriteString(it.Contents)
			}
			continue
		}
		fmt.Fprintf(&b, "%d: %s - %s", it.Ordinal, it.File, it.Name)
		if len(it.Vars) > 0 {
			fmt.Fprintf(&b, " Envs: %s", strings.Join(it.Vars, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Run renders "<ordinal>: <file> - Success|Failed" per outcome.
func Run(r *engine.Report, opts Options) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "%d: %s - %s\n", o.Ordinal, o.Name, status(o.Success, opts.Color))
	}
	return b.String()
}

// JSON renders v as indented JSON with a trailing newline.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data) + "\n", nil
}
