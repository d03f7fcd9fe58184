// Package selector resolves user-supplied selection tokens (indices, index
// ranges, playbook names, optionally followed by KEY=VALUE overrides) against
// a playbook index.
package selector

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ormasoftchile/playctl/pkg/catalog"
)

var (
	// ErrMalformedEnvAssignment is returned for an override segment that is not KEY=VALUE.
	ErrMalformedEnvAssignment = errors.New("environment variable must be in the format KEY=VALUE")
	// ErrReversedRange is returned for a range whose start is greater than its end.
	ErrReversedRange = errors.New("range start is greater than range end")
	// ErrRangeWithEnv is returned when environment overrides are attached to a range.
	ErrRangeWithEnv = errors.New("environment overrides cannot be attached to a range")
)

// Kind classifies a selection token.
type Kind int

const (
	KindName Kind = iota
	KindIndex
	KindRange
)

// Ref is a parsed playbook reference.
type Ref struct {
	Kind  Kind
	Start int // KindIndex and KindRange
	End   int // KindRange
	Name  string
}

// Parse classifies a token. A hyphenated token is a range only when both
// sides are non-negative integers, so names like "web-servers.yaml" pass
// through as names.
func Parse(token string) Ref {
	if strings.Contains(token, "-") {
		parts := strings.Split(token, "-")
		if len(parts) == 2 {
			start, err1 := parseIndex(parts[0])
			end, err2 := parseIndex(parts[1])
			if err1 == nil && err2 == nil {
				return Ref{Kind: KindRange, Start: start, End: end}
			}
		}
		return Ref{Kind: KindName, Name: token}
	}
	if n, err := parseIndex(token); err == nil {
		return Ref{Kind: KindIndex, Start: n}
	}
	return Ref{Kind: KindName, Name: token}
}

// parseIndex accepts only plain decimal digits.
func parseIndex(s string) (int, error) {
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, fmt.Errorf("not an index: %q", s)
	}
	return strconv.Atoi(s)
}

// EnvOverride holds the variables injected into one playbook run.
type EnvOverride map[string]string

// Keys returns the override keys in ascending order.
func (e EnvOverride) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Selected is one resolved playbook.
type Selected struct {
	Name string      `json:"file"`
	Env  EnvOverride `json:"env,omitempty"`
}

// Selection maps ordinals to resolved playbooks.
type Selection map[int]Selected

// Ordinals returns the selected ordinals in ascending order.
func (s Selection) Ordinals() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Resolve maps every token onto the index. Ranges expand inclusively and a
// later token overwrites an earlier one that hits the same ordinal. Any
// unknown ordinal or name fails the whole resolution.
func Resolve(tokens []string, idx *catalog.Index) (Selection, error) {
	sel := make(Selection)
	for _, tok := range tokens {
		ordinals, err := resolveRef(Parse(tok), idx)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", tok, err)
		}
		for _, o := range ordinals {
			name, _ := idx.Name(o)
			sel[o] = Selected{Name: name, Env: EnvOverride{}}
		}
	}
	return sel, nil
}

// ResolveWithEnv is Resolve for tokens that may carry comma-separated
// KEY=VALUE overrides after the playbook reference.
func ResolveWithEnv(tokens []string, idx *catalog.Index) (Selection, error) {
	sel := make(Selection)
	for _, tok := range tokens {
		segments := strings.Split(tok, ",")
		ref := Parse(segments[0])

		env := EnvOverride{}
		if len(segments) > 1 {
			if ref.Kind == KindRange {
				return nil, fmt.Errorf("token %q: %w", tok, ErrRangeWithEnv)
			}
			for _, seg := range segments[1:] {
				k, v, err := parseAssignment(seg)
				if err != nil {
					return nil, fmt.Errorf("token %q: %w", tok, err)
				}
				env[k] = v
			}
		}

		ordinals, err := resolveRef(ref, idx)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", tok, err)
		}
		for _, o := range ordinals {
			name, _ := idx.Name(o)
			sel[o] = Selected{Name: name, Env: cloneEnv(env)}
		}
	}
	return sel, nil
}

func resolveRef(ref Ref, idx *catalog.Index) ([]int, error) {
	switch ref.Kind {
	case KindName:
		o, err := idx.Ordinal(ref.Name)
		if err != nil {
			return nil, err
		}
		return []int{o}, nil
	case KindIndex:
		if _, err := idx.Name(ref.Start); err != nil {
			return nil, err
		}
		return []int{ref.Start}, nil
	default:
		if ref.Start > ref.End {
			return nil, fmt.Errorf("%w: %d-%d", ErrReversedRange, ref.Start, ref.End)
		}
		// Ordinals are contiguous, so the range is valid iff both ends are.
		for _, o := range []int{ref.Start, ref.End} {
			if _, err := idx.Name(o); err != nil {
				return nil, err
			}
		}
		out := make([]int, 0, ref.End-ref.Start+1)
		for o := ref.Start; o <= ref.End; o++ {
			out = append(out, o)
		}
		return out, nil
	}
}

// parseAssignment splits KEY=VALUE. Exactly one '=' and a non-empty key.
func parseAssignment(seg string) (string, string, error) {
	parts := strings.Split(seg, "=")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedEnvAssignment, seg)
	}
	return parts[0], parts[1], nil
}

// ParseAssignments parses a comma-separated KEY=VALUE list.
func ParseAssignments(list string) (EnvOverride, error) {
	env := EnvOverride{}
	for _, seg := range strings.Split(list, ",") {
		k, v, err := parseAssignment(seg)
		if err != nil {
			return nil, err
		}
		env[k] = v
	}
	return env, nil
}

func cloneEnv(env EnvOverride) EnvOverride {
	out := make(EnvOverride, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
