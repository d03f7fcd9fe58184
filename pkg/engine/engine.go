// Package engine runs selected playbooks through the external automation
// engine, one process at a time, and records a pass/fail outcome for each.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ormasoftchile/playctl/pkg/selector"
)

// DefaultBinary is the automation engine invoked when Runner.Binary is empty.
const DefaultBinary = "ansible-playbook"

// ErrLaunchFailure is returned when the engine process cannot be started.
// It aborts the whole run.
var ErrLaunchFailure = errors.New("failed to launch automation engine")

// State is the lifecycle position of one playbook execution.
type State int

const (
	Pending State = iota
	Spawned
	Streaming
	Exited
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Spawned:
		return "spawned"
	case Streaming:
		return "streaming"
	case Exited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Logger receives execution diagnostics.
type Logger interface {
	Printf(format string, v ...any)
}

// Outcome is the result of running one playbook.
type Outcome struct {
	Ordinal  int           `json:"ordinal"`
	Name     string        `json:"file"`
	Success  bool          `json:"success"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Report collects outcomes in execution order.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Failed returns the number of unsuccessful outcomes.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Success {
			n++
		}
	}
	return n
}

// Runner executes playbooks sequentially.
type Runner struct {
	Binary      string
	PlaybookDir string
	Inventory   string

	// Verbose streams the engine's stdout and stderr line by line to Stdout.
	Verbose bool
	// DryRun prints each command instead of executing it.
	DryRun bool
	Stdout io.Writer

	Logger       Logger
	OnTransition func(ordinal int, name string, s State)
}

// BuildArgs returns the engine argument vector. Each override becomes a
// single "-e KEY=VALUE" argument; keys are emitted in ascending order and
// values are not escaped.
func BuildArgs(inventory, playbookPath string, env selector.EnvOverride) []string {
	args := []string{"-i", inventory, playbookPath}
	for _, k := range env.Keys() {
		args = append(args, fmt.Sprintf("-e %s=%s", k, env[k]))
	}
	return args
}

// RunAll runs every selected playbook in ordinal order. A playbook that
// exits non-zero is recorded as failed and the run continues; only a launch
// failure stops it.
func (r *Runner) RunAll(ctx context.Context, sel selector.Selection) (*Report, error) {
	report := &Report{}
	for _, ordinal := range sel.Ordinals() {
		out, err := r.runOne(ctx, ordinal, sel[ordinal])
		if err != nil {
			return report, err
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, ordinal int, s selector.Selected) (Outcome, error) {
	binary := r.binary()
	args := BuildArgs(r.Inventory, filepath.Join(r.PlaybookDir, s.Name), s.Env)
	r.transition(ordinal, s.Name, Pending)

	if r.DryRun {
		fmt.Fprintf(r.stdout(), "  [dry-run] would execute: %s %s\n", binary, strings.Join(args, " "))
		r.transition(ordinal, s.Name, Exited)
		return Outcome{Ordinal: ordinal, Name: s.Name, Success: true}, nil
	}

	r.logf("launch %d:%s: %s %q", ordinal, s.Name, binary, args)
	start := time.Now()
	cmd := exec.CommandContext(ctx, binary, args...)

	var err error
	if r.Verbose {
		err = r.runVerbose(cmd, ordinal, s.Name)
	} else {
		err = r.runQuiet(cmd, ordinal, s.Name)
	}
	if errors.Is(err, ErrLaunchFailure) {
		r.logf("launch %d:%s failed: %v", ordinal, s.Name, err)
		return Outcome{}, err
	}

	code := exitCode(err)
	out := Outcome{
		Ordinal:  ordinal,
		Name:     s.Name,
		Success:  code == 0,
		ExitCode: code,
		Duration: time.Since(start),
	}
	r.transition(ordinal, s.Name, Exited)
	r.logf("exited %d:%s code=%d duration=%s", ordinal, s.Name, code, out.Duration)
	return out, nil
}

// runQuiet discards the child's output and waits for it to exit.
func (r *Runner) runQuiet(cmd *exec.Cmd, ordinal int, name string) error {
	// nil Stdout/Stderr connect the child to the null device.
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLaunchFailure, cmd.Path, err)
	}
	r.transition(ordinal, name, Spawned)
	return cmd.Wait()
}

// exitCode maps a Wait error onto an exit status. Errors other than a
// non-zero exit (I/O failures, signals) count as failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return -1
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return io.Discard
	}
	return r.Stdout
}

func (r *Runner) transition(ordinal int, name string, s State) {
	if r.OnTransition != nil {
		r.OnTransition(ordinal, name, s)
	}
}

func (r *Runner) logf(format string, v ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	}
}
