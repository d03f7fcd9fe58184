// Package shell provides an interactive prompt over the list, describe and
// run commands. Every line re-enumerates the playbook directory, so files
// added or removed between commands are picked up.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/playctl/pkg/commands"
)

var commandNames = []string{"list", "describe", "run", "dry-run", "verbose", "help", "quit"}

// Shell is a readline REPL bound to a commands.Service.
type Shell struct {
	svc    *commands.Service
	output io.Writer
}

// New creates a shell writing to output. Streamed engine output is sent to
// the same writer.
func New(svc *commands.Service, output io.Writer) *Shell {
	svc.Stdout = output
	return &Shell{svc: svc, output: output}
}

// Run reads commands until quit, EOF or an interrupt.
func (s *Shell) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter()
	for _, name := range commandNames {
		completer.Children = append(completer.Children, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(s.output, "playctl shell: playbooks in %s\n", s.svc.Config.PlaybookDir)
	fmt.Fprintf(s.output, "Type 'help' for available commands.\n\n")

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if !s.Exec(ctx, line) {
			return nil
		}
	}
}

func (s *Shell) prompt() string {
	if s.svc.Config.Verbose {
		return "playctl[verbose]> "
	}
	return "playctl> "
}

// Exec handles one input line and reports whether the shell should keep
// reading. Command errors are printed, never returned.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "list", "ls":
		s.print(s.svc.List(strings.Join(args, " "), false))
	case "describe", "d":
		if s.needTokens(cmd, args) {
			s.print(s.svc.Describe(args, false))
		}
	case "run", "r":
		if s.needTokens(cmd, args) {
			s.run(ctx, args, false)
		}
	case "dry-run":
		if s.needTokens(cmd, args) {
			s.run(ctx, args, true)
		}
	case "verbose", "v":
		s.svc.Config.Verbose = !s.svc.Config.Verbose
		fmt.Fprintf(s.output, "verbose: %v\n", s.svc.Config.Verbose)
	case "help", "?":
		s.help()
	case "quit", "q", "exit":
		fmt.Fprintf(s.output, "Bye.\n")
		return false
	default:
		fmt.Fprintf(s.output, "Unknown command: %q. Type 'help' for available commands.\n", cmd)
	}
	return true
}

func (s *Shell) run(ctx context.Context, tokens []string, dryRun bool) {
	rep, err := s.svc.Execute(ctx, tokens, commands.RunOptions{DryRun: dryRun})
	if err != nil {
		fmt.Fprintf(s.output, "Error: %v\n", err)
		return
	}
	s.print(s.svc.Render(rep), nil)
	fmt.Fprintf(s.output, "(%s)\n", commands.Summary(rep))
}

func (s *Shell) needTokens(cmd string, args []string) bool {
	if len(args) == 0 {
		fmt.Fprintf(s.output, "Usage: %s TOKEN...\n", cmd)
		return false
	}
	return true
}

func (s *Shell) print(out string, err error) {
	if err != nil {
		fmt.Fprintf(s.output, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.output, out)
}

func (s *Shell) help() {
	fmt.Fprintf(s.output, `Commands:
  list [EXPR]        (ls)  list playbooks, optionally filtered by an expression
  describe TOKEN...  (d)   show declared name and templated variables
  run TOKEN...       (r)   run playbooks with the engine
  dry-run TOKEN...         print the engine commands without running them
  verbose            (v)   toggle verbose output
  help               (?)   show this help
  quit               (q)   leave the shell

Tokens are file names, ordinals or ranges (2-4); append ,KEY=VALUE to a
file name to pass extra variables.
`)
}
