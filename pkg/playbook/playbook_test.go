package playbook

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "book.yaml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

const installBook = `- name: Install
  hosts: all
  vars:
    pkg: "{{ package_name }}"
    mode: static
    retries: 3
  tasks:
    - name: install package
      package:
        name: "{{ pkg }}"
- name: Second play
  hosts: db
`

func TestDeclaredNameAndVars(t *testing.T) {
	p := writeFile(t, installBook)

	name, err := DeclaredName(p)
	if err != nil {
		t.Fatalf("DeclaredName: %v", err)
	}
	if name != "Install" {
		t.Errorf("name = %q, want Install", name)
	}

	vars, err := TemplatedVars(p)
	if err != nil {
		t.Fatalf("TemplatedVars: %v", err)
	}
	if !reflect.DeepEqual(vars, []string{"package_name"}) {
		t.Errorf("vars = %v, want [package_name]", vars)
	}
}

func TestInspect(t *testing.T) {
	md, err := Inspect(writeFile(t, installBook))
	if err != nil {
		t.Fatal(err)
	}
	if md.Name != "Install" || md.Plays != 2 || len(md.Vars) != 1 {
		t.Errorf("unexpected metadata %+v", md)
	}
}

func TestTemplatedVarsSourceOrder(t *testing.T) {
	p := writeFile(t, `- name: ordered
  vars:
    zeta: "{{ last_one }}"
    alpha: "prefix-{{  first_one  }}-suffix"
    nested: "{{ a }} and {{ b }}"
    broken: "}} before {{ never_closed"
    unopened: "plain }}"
    list: ["{{ ignored }}"]
    number: 42
`)
	vars, err := TemplatedVars(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"last_one", "first_one", "a"}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("vars = %v, want %v", vars, want)
	}
}

func TestTemplatedVarsWithoutVars(t *testing.T) {
	vars, err := TemplatedVars(writeFile(t, "- name: bare\n  hosts: all\n"))
	if err != nil {
		t.Fatal(err)
	}
	if vars == nil || len(vars) != 0 {
		t.Errorf("vars = %#v, want empty non-nil slice", vars)
	}
}

func TestOnlyFirstPlayInspected(t *testing.T) {
	p := writeFile(t, `- hosts: all
- name: second
  vars:
    x: "{{ y }}"
`)
	if _, err := DeclaredName(p); !errors.Is(err, ErrMissingNameField) {
		t.Errorf("err = %v, want ErrMissingNameField", err)
	}
	vars, err := TemplatedVars(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 0 {
		t.Errorf("vars from second play leaked: %v", vars)
	}
}

func TestDeclaredNameErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"missing name", "- hosts: all\n", ErrMissingNameField},
		{"numeric name", "- name: 12\n", ErrMissingNameField},
		{"mapping name", "- name:\n    first: x\n", ErrMissingNameField},
		{"scalar play", "- just a string\n", ErrMissingNameField},
		{"not a sequence", "name: Install\n", ErrNotParsable},
		{"empty sequence", "[]\n", ErrNotParsable},
		{"empty file", "", ErrNotParsable},
		{"invalid yaml", "- name: [unclosed\n", ErrNotParsable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeclaredName(writeFile(t, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnreadableFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := RawContents(missing); !errors.Is(err, ErrFileNotReadable) {
		t.Errorf("RawContents err = %v, want ErrFileNotReadable", err)
	}
	if _, err := DeclaredName(missing); !errors.Is(err, ErrFileNotReadable) {
		t.Errorf("DeclaredName err = %v, want ErrFileNotReadable", err)
	}
	if _, err := TemplatedVars(missing); !errors.Is(err, ErrFileNotReadable) {
		t.Errorf("TemplatedVars err = %v, want ErrFileNotReadable", err)
	}
}

func TestRawContentsVerbatim(t *testing.T) {
	content := "# comment kept\n- name: x\n"
	got, err := RawContents(writeFile(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if got != content {
		t.Errorf("RawContents = %q, want %q", got, content)
	}
}

func TestErrorNamesPath(t *testing.T) {
	p := writeFile(t, "- hosts: all\n")
	_, err := DeclaredName(p)
	if err == nil || !strings.Contains(err.Error(), p) {
		t.Errorf("error %v should mention %s", err, p)
	}
}

func TestAliasesResolveToAnchors(t *testing.T) {
	p := writeFile(t, `- vars:
    t: &t Install
    a: &x "{{ foo }}"
    b: *x
  name: *t
`)
	md, err := Inspect(p)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if md.Name != "Install" {
		t.Errorf("name = %q, want Install", md.Name)
	}
	if !reflect.DeepEqual(md.Vars, []string{"foo", "foo"}) {
		t.Errorf("vars = %v, want [foo foo]", md.Vars)
	}
}

func TestAliasedVarsMapping(t *testing.T) {
	p := writeFile(t, `- name: base
  x-common: &common
    region: "{{ target_region }}"
  vars: *common
`)
	vars, err := TemplatedVars(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(vars, []string{"target_region"}) {
		t.Errorf("vars = %v, want [target_region]", vars)
	}
}
