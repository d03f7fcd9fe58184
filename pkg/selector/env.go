package selector

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/playctl/pkg/catalog"
)

// EnvSource supplies per-playbook overrides from outside the command line.
// A variable named exactly after a playbook file holds a comma-separated
// KEY=VALUE list for that playbook.
type EnvSource interface {
	Lookup(name string) (string, bool)
}

// ProcessEnv reads the current process environment.
type ProcessEnv struct{}

// Lookup implements EnvSource.
func (ProcessEnv) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv is a fixed EnvSource.
type MapEnv map[string]string

// Lookup implements EnvSource.
func (m MapEnv) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ApplyEnvSource merges overrides from src into every selected playbook.
// A variable that is set but empty is a malformed assignment.
// Values already present in the selection (from the command line) win.
// The input selection is not modified.
func ApplyEnvSource(sel Selection, src EnvSource) (Selection, error) {
	out := make(Selection, len(sel))
	for ordinal, s := range sel {
		merged := EnvOverride{}
		if src != nil {
			if raw, ok := src.Lookup(s.Name); ok {
				fromEnv, err := ParseAssignments(raw)
				if err != nil {
					return nil, fmt.Errorf("environment variable %q: %w", s.Name, err)
				}
				for k, v := range fromEnv {
					merged[k] = v
				}
			}
		}
		for k, v := range s.Env {
			merged[k] = v
		}
		out[ordinal] = Selected{Name: s.Name, Env: merged}
	}
	return out, nil
}

// Resolver resolves tokens with an explicit environment source.
type Resolver struct {
	Env EnvSource
}

// Resolve resolves plain tokens without overrides.
func (r *Resolver) Resolve(tokens []string, idx *catalog.Index) (Selection, error) {
	return Resolve(tokens, idx)
}

// ResolveWithEnv resolves env-carrying tokens and merges overrides from r.Env.
func (r *Resolver) ResolveWithEnv(tokens []string, idx *catalog.Index) (Selection, error) {
	sel, err := ResolveWithEnv(tokens, idx)
	if err != nil {
		return nil, err
	}
	return ApplyEnvSource(sel, r.Env)
}
