// Package playbook extracts display metadata from playbook files: the
// declared name of the first play and the template variables its vars
// section references.
package playbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrFileNotReadable is returned when a playbook cannot be opened or read.
	ErrFileNotReadable = errors.New("file does not exist or is not readable")
	// ErrNotParsable is returned when a playbook is not a YAML sequence of plays.
	ErrNotParsable = errors.New("file is not parsable")
	// ErrMissingNameField is returned when the first play has no string name.
	ErrMissingNameField = errors.New("first play has no name field")
)

// Metadata is what the list and describe commands show about a playbook.
type Metadata struct {
	Name  string   `json:"name"`
	Vars  []string `json:"vars"`
	Plays int      `json:"plays"`
}

// Document is a parsed playbook. Only the first play is inspected.
type Document struct {
	path  string
	plays []*yaml.Node
}

// RawContents returns the file verbatim.
func RawContents(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFileNotReadable, path, err)
	}
	return string(data), nil
}

// LoadFile reads and parses a playbook.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotReadable, path, err)
	}
	defer f.Close()
	return Load(path, f)
}

// Load parses a playbook from r; path is used in error messages.
func Load(path string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotReadable, path, err)
	}

	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotParsable, path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s: empty document", ErrNotParsable, path)
	}
	seq := root.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s: expected a sequence of plays", ErrNotParsable, path)
	}
	if len(seq.Content) == 0 {
		return nil, fmt.Errorf("%w: %s: no plays", ErrNotParsable, path)
	}
	return &Document{path: path, plays: seq.Content}, nil
}

// Plays returns the number of plays in the file.
func (d *Document) Plays() int { return len(d.plays) }

// Name returns the name field of the first play.
func (d *Document) Name() (string, error) {
	v := lookup(d.plays[0], "name")
	if v == nil || v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return "", fmt.Errorf("%w: %s", ErrMissingNameField, d.path)
	}
	return v.Value, nil
}

// Vars returns the template variables referenced by the first play's vars
// mapping, in source order. A missing vars section yields an empty slice.
func (d *Document) Vars() []string {
	out := []string{}
	vars := lookup(d.plays[0], "vars")
	if vars == nil || vars.Kind != yaml.MappingNode {
		return out
	}
	for i := 1; i < len(vars.Content); i += 2 {
		v := resolveAlias(vars.Content[i])
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
			continue
		}
		if name, ok := templateVar(v.Value); ok {
			out = append(out, name)
		}
	}
	return out
}

// templateVar returns the trimmed text between the first "{{" and the first
// "}}" after it.
func templateVar(s string) (string, bool) {
	start := strings.Index(s, "{{")
	if start < 0 {
		return "", false
	}
	rest := s[start+2:]
	end := strings.Index(rest, "}}")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// lookup returns the value node for key in a mapping node, with aliases
// followed to their anchors.
func lookup(m *yaml.Node, key string) *yaml.Node {
	m = resolveAlias(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// DeclaredName returns the name field of the first play in path.
func DeclaredName(path string) (string, error) {
	d, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	return d.Name()
}

// TemplatedVars returns the template variables of the first play in path.
func TemplatedVars(path string) ([]string, error) {
	d, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return d.Vars(), nil
}

// Inspect parses path once and returns all metadata.
func Inspect(path string) (*Metadata, error) {
	d, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	name, err := d.Name()
	if err != nil {
		return nil, err
	}
	return &Metadata{Name: name, Vars: d.Vars(), Plays: d.Plays()}, nil
}
