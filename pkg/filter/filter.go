// Package filter evaluates boolean expressions over playbook metadata,
// e.g. `len(vars) > 0 && file startsWith "deploy"`.
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the variable set visible to an expression.
type Env struct {
	Ordinal int      `expr:"ordinal"`
	File    string   `expr:"file"`
	Name    string   `expr:"name"`
	Vars    []string `expr:"vars"`
}

// Filter is a compiled expression.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile parses an expression. An empty expression matches everything.
func Compile(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Empty reports whether the filter matches everything without evaluation.
func (f *Filter) Empty() bool { return f == nil || f.program == nil }

// Match evaluates the filter against env.
func (f *Filter) Match(env Env) (bool, error) {
	if f.Empty() {
		return true, nil
	}
	if env.Vars == nil {
		env.Vars = []string{}
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", f.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q did not return bool (got %T)", f.source, out)
	}
	return ok, nil
}
