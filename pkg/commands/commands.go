// Package commands implements list, describe and run on top of the index,
// resolver, extractor and orchestrator. The CLI, the interactive shell and
// the MCP server all go through a Service.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ormasoftchile/playctl/pkg/catalog"
	"github.com/ormasoftchile/playctl/pkg/config"
	"github.com/ormasoftchile/playctl/pkg/engine"
	"github.com/ormasoftchile/playctl/pkg/filter"
	"github.com/ormasoftchile/playctl/pkg/playbook"
	"github.com/ormasoftchile/playctl/pkg/report"
	"github.com/ormasoftchile/playctl/pkg/runlog"
	"github.com/ormasoftchile/playctl/pkg/selector"
)

// Service carries the settings for one or more commands. Every call
// enumerates the playbook directory afresh and uses that single snapshot
// for the rest of the call.
type Service struct {
	Config  config.Config
	Env     selector.EnvSource
	Logger  *runlog.Logger
	Stdout  io.Writer // receives streamed engine output and dry-run lines
	Options report.Options
}

// RunOptions adjust a single run.
type RunOptions struct {
	DryRun bool
	JSON   bool
}

func (s *Service) index() (*catalog.Index, error) {
	idx, err := catalog.Enumerate(s.Config.PlaybookDir)
	if err != nil {
		s.Logger.Error("enumerate", err)
		return nil, err
	}
	return idx, nil
}

// ListItems returns every playbook, with metadata when verbose or when a
// filter expression is given, keeping only entries that match where.
func (s *Service) ListItems(where string) ([]report.ListItem, error) {
	f, err := filter.Compile(where)
	if err != nil {
		return nil, err
	}
	idx, err := s.index()
	if err != nil {
		return nil, err
	}

	needMeta := s.Config.Verbose || !f.Empty()
	items := []report.ListItem{}
	for _, e := range idx.Entries() {
		item := report.ListItem{Ordinal: e.Ordinal, File: e.Name}
		if needMeta {
			md, err := playbook.Inspect(filepath.Join(idx.Dir(), e.Name))
			if err != nil {
				return nil, err
			}
			item.Name = md.Name
			item.Vars = md.Vars
		}
		ok, err := f.Match(filter.Env{Ordinal: item.Ordinal, File: item.File, Name: item.Name, Vars: item.Vars})
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// List renders the list command.
func (s *Service) List(where string, asJSON bool) (string, error) {
	items, err := s.ListItems(where)
	if err != nil {
		return "", err
	}
	if asJSON {
		return report.JSON(report.ListReport{Dir: s.Config.PlaybookDir, Playbooks: items})
	}
	return report.List(items, s.Config.Verbose), nil
}

// DescribeItems resolves tokens and gathers raw contents (verbose) or the
// declared name and templated variables of each playbook.
func (s *Service) DescribeItems(tokens []string) ([]report.DescribeItem, error) {
	idx, err := s.index()
	if err != nil {
		return nil, err
	}
	sel, err := selector.Resolve(tokens, idx)
	if err != nil {
		s.Logger.Error("resolve", err)
		return nil, err
	}

	items := []report.DescribeItem{}
	for _, ordinal := range sel.Ordinals() {
		name := sel[ordinal].Name
		path := filepath.Join(idx.Dir(), name)
		item := report.DescribeItem{Ordinal: ordinal, File: name}
		if s.Config.Verbose {
			item.Contents, err = playbook.RawContents(path)
		} else {
			var md *playbook.Metadata
			if md, err = playbook.Inspect(path); err == nil {
				item.Name, item.Vars, item.Plays = md.Name, md.Vars, md.Plays
			}
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Describe renders the describe command.
func (s *Service) Describe(tokens []string, asJSON bool) (string, error) {
	items, err := s.DescribeItems(tokens)
	if err != nil {
		return "", err
	}
	if asJSON {
		return report.JSON(report.DescribeReport{Playbooks: items})
	}
	return report.Describe(items, s.Config.Verbose, s.Options), nil
}

// Resolve resolves run tokens, including per-playbook overrides from the
// service's environment source.
func (s *Service) Resolve(tokens []string) (*catalog.Index, selector.Selection, error) {
	idx, err := s.index()
	if err != nil {
		return nil, nil, err
	}
	r := &selector.Resolver{Env: s.Env}
	sel, err := r.ResolveWithEnv(tokens, idx)
	if err != nil {
		s.Logger.Error("resolve", err)
		return nil, nil, err
	}
	s.Logger.Printf("resolved %d playbook(s) from %q", len(sel), tokens)
	return idx, sel, nil
}

// Execute runs the selected playbooks and returns the engine report. On a
// launch failure the partial report is returned with the error.
func (s *Service) Execute(ctx context.Context, tokens []string, opts RunOptions) (*engine.Report, error) {
	idx, sel, err := s.Resolve(tokens)
	if err != nil {
		return nil, err
	}
	runner := &engine.Runner{
		Binary:      s.Config.Engine,
		PlaybookDir: idx.Dir(),
		Inventory:   s.Config.Inventory,
		Verbose:     s.Config.Verbose && !opts.JSON,
		DryRun:      opts.DryRun,
		Stdout:      s.Stdout,
		Logger:      s.Logger,
		OnTransition: func(ordinal int, name string, st engine.State) {
			s.Logger.Printf("%d:%s -> %s", ordinal, name, st)
		},
	}
	rep, err := runner.RunAll(ctx, sel)
	if err != nil {
		s.Logger.Error("run", err)
		return rep, err
	}
	return rep, nil
}

// Run renders the run command.
func (s *Service) Run(ctx context.Context, tokens []string, opts RunOptions) (string, error) {
	rep, err := s.Execute(ctx, tokens, opts)
	if err != nil {
		return "", err
	}
	if opts.JSON {
		return report.JSON(report.NewRunReport(rep))
	}
	return s.Render(rep), nil
}

// Render formats a run report as plain (or styled) text.
func (s *Service) Render(rep *engine.Report) string {
	return report.Run(rep, s.Options)
}

// Summary is a one-line count of a run report.
func Summary(rep *engine.Report) string {
	if rep == nil {
		return ""
	}
	return fmt.Sprintf("%d playbook(s), %d failed", len(rep.Outcomes), rep.Failed())
}
