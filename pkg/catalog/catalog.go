// Package catalog enumerates a playbook directory and assigns every playbook
// a stable ordinal based on its sorted file name.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file suffix that marks a directory entry as a playbook.
const Extension = ".yaml"

var (
	// ErrDirectoryNotFound is returned when the playbook directory cannot be listed.
	ErrDirectoryNotFound = errors.New("playbook directory not found")
	// ErrOrdinalNotFound is returned when no playbook has the requested ordinal.
	ErrOrdinalNotFound = errors.New("playbook ordinal not found")
	// ErrNameNotFound is returned when no playbook has the requested file name.
	ErrNameNotFound = errors.New("playbook name not found")
)

// Entry is one playbook in an Index.
type Entry struct {
	Ordinal int    `json:"ordinal"`
	Name    string `json:"file"`
}

// Index is an immutable snapshot of a playbook directory. Ordinals run
// contiguously from zero in byte-wise file name order.
type Index struct {
	dir   string
	names []string
	byKey map[string]int
}

// Enumerate lists dir and builds a fresh Index. Nothing is cached: two calls
// over a directory that changed in between may disagree.
func Enumerate(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryNotFound, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	byKey := make(map[string]int, len(names))
	for i, n := range names {
		byKey[n] = i
	}
	return &Index{dir: dir, names: names, byKey: byKey}, nil
}

// Dir returns the directory the index was built from.
func (x *Index) Dir() string { return x.dir }

// Len returns the number of playbooks.
func (x *Index) Len() int { return len(x.names) }

// Entries returns every playbook in ordinal order.
func (x *Index) Entries() []Entry {
	out := make([]Entry, len(x.names))
	for i, n := range x.names {
		out[i] = Entry{Ordinal: i, Name: n}
	}
	return out
}

// Name returns the file name assigned to ordinal.
func (x *Index) Name(ordinal int) (string, error) {
	if ordinal < 0 || ordinal >= len(x.names) {
		return "", fmt.Errorf("%w: %d (directory %s has %d playbooks)", ErrOrdinalNotFound, ordinal, x.dir, len(x.names))
	}
	return x.names[ordinal], nil
}

// Ordinal returns the ordinal assigned to the file name.
func (x *Index) Ordinal(name string) (int, error) {
	i, ok := x.byKey[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %s", ErrNameNotFound, name, x.dir)
	}
	return i, nil
}

// Path returns the filesystem path of the playbook with the given ordinal.
func (x *Index) Path(ordinal int) (string, error) {
	name, err := x.Name(ordinal)
	if err != nil {
		return "", err
	}
	return filepath.Join(x.dir, name), nil
}

// NameForOrdinal enumerates dir and returns the file name at ordinal.
func NameForOrdinal(ordinal int, dir string) (string, error) {
	x, err := Enumerate(dir)
	if err != nil {
		return "", err
	}
	return x.Name(ordinal)
}

// OrdinalForName enumerates dir and returns the ordinal of name.
func OrdinalForName(name, dir string) (int, error) {
	x, err := Enumerate(dir)
	if err != nil {
		return 0, err
	}
	return x.Ordinal(name)
}
