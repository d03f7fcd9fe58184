package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/ormasoftchile/playctl/pkg/selector"
)

// fakeEngine writes a shell script standing in for ansible-playbook. It
// fails any playbook whose path contains "fail" and echoes its arguments.
func fakeEngine(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a POSIX shell script")
	}
	script := `#!/bin/sh
echo "start $3"
echo "warn $3" >&2
for a in "$@"; do echo "arg:$a"; done
case "$3" in
  *fail*) echo "boom" >&2; exit 2 ;;
esac
echo "done $3"
`
	p := filepath.Join(t.TempDir(), "fake-playbook")
	if err := os.WriteFile(p, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildArgs(t *testing.T) {
	got := BuildArgs("inv.yaml", "playbooks/site.yaml", selector.EnvOverride{"REGION": "us", "ENV": "prod"})
	want := []string{"-i", "inv.yaml", "playbooks/site.yaml", "-e ENV=prod", "-e REGION=us"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildArgs = %q, want %q", got, want)
	}

	bare := BuildArgs("inv.yaml", "p.yaml", nil)
	if !reflect.DeepEqual(bare, []string{"-i", "inv.yaml", "p.yaml"}) {
		t.Errorf("BuildArgs without env = %q", bare)
	}
}

func TestRunAllQuietRecordsFailureAndContinues(t *testing.T) {
	r := &Runner{Binary: fakeEngine(t), PlaybookDir: "books", Inventory: "inv.yaml"}
	sel := selector.Selection{
		1: {Name: "b-fail.yaml"},
		0: {Name: "a-ok.yaml"},
		2: {Name: "c-ok.yaml"},
	}
	report, err := r.RunAll(context.Background(), sel)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(report.Outcomes))
	}
	wantSuccess := []bool{true, false, true}
	for i, o := range report.Outcomes {
		if o.Ordinal != i {
			t.Errorf("outcome %d has ordinal %d; want ordinal-ascending order", i, o.Ordinal)
		}
		if o.Success != wantSuccess[i] {
			t.Errorf("outcome %d (%s) success = %v, want %v", i, o.Name, o.Success, wantSuccess[i])
		}
	}
	if report.Outcomes[1].ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", report.Outcomes[1].ExitCode)
	}
	if report.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", report.Failed())
	}
}

func TestRunAllQuietWritesNothing(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Binary: fakeEngine(t), PlaybookDir: "books", Inventory: "inv.yaml", Stdout: &out}
	if _, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "a.yaml"}}); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("quiet mode wrote output: %q", out.String())
	}
}

func TestRunAllVerboseStreamsBothPipes(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{
		Binary:      fakeEngine(t),
		PlaybookDir: "books",
		Inventory:   "inv.yaml",
		Verbose:     true,
		Stdout:      &out,
	}
	sel := selector.Selection{0: {Name: "site.yaml", Env: selector.EnvOverride{"ENV": "prod"}}}
	report, err := r.RunAll(context.Background(), sel)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if !report.Outcomes[0].Success {
		t.Errorf("expected success, got %+v", report.Outcomes[0])
	}

	text := out.String()
	path := filepath.Join("books", "site.yaml")
	for _, want := range []string{
		"start " + path,
		"warn " + path,
		"arg:-i",
		"arg:inv.yaml",
		"arg:-e ENV=prod",
		"done " + path,
	} {
		if !strings.Contains(text, want+"\n") {
			t.Errorf("output missing line %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "start ") > strings.Index(text, "done ") {
		t.Errorf("stdout lines out of order:\n%s", text)
	}
}

func TestRunAllVerboseKeepsStreamingAfterLongLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a POSIX shell script")
	}
	script := "#!/bin/sh\nhead -c 1100000 /dev/zero | tr '\\0' x\necho\necho after-long-line\necho err-after >&2\n"
	bin := filepath.Join(t.TempDir(), "long-line")
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	r := &Runner{Binary: bin, PlaybookDir: "books", Inventory: "inv.yaml", Verbose: true, Stdout: &out}
	report, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "site.yaml"}})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if !report.Outcomes[0].Success {
		t.Errorf("expected success, got %+v", report.Outcomes[0])
	}
	text := out.String()
	if n := strings.Count(text, "x"); n != 1100000 {
		t.Errorf("streamed %d bytes of the long line, want 1100000", n)
	}
	for _, want := range []string{"after-long-line\n", "err-after\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q after the long line", want)
		}
	}
}

func TestRunAllVerboseFailure(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Binary: fakeEngine(t), PlaybookDir: "books", Inventory: "inv.yaml", Verbose: true, Stdout: &out}
	report, err := r.RunAll(context.Background(), selector.Selection{4: {Name: "will-fail.yaml"}})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.Outcomes[0].Success {
		t.Error("expected failure outcome")
	}
	if !strings.Contains(out.String(), "boom\n") {
		t.Errorf("stderr line missing from output:\n%s", out.String())
	}
}

func TestRunAllLaunchFailureIsFatal(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		r := &Runner{
			Binary:    filepath.Join(t.TempDir(), "no-such-engine"),
			Inventory: "inv.yaml",
			Verbose:   verbose,
		}
		sel := selector.Selection{0: {Name: "a.yaml"}, 1: {Name: "b.yaml"}}
		report, err := r.RunAll(context.Background(), sel)
		if !errors.Is(err, ErrLaunchFailure) {
			t.Fatalf("verbose=%v: err = %v, want ErrLaunchFailure", verbose, err)
		}
		if len(report.Outcomes) != 0 {
			t.Errorf("verbose=%v: outcomes recorded after launch failure: %v", verbose, report.Outcomes)
		}
	}
}

func TestRunAllTransitions(t *testing.T) {
	var got []string
	record := func(ordinal int, name string, s State) {
		got = append(got, name+":"+s.String())
	}

	r := &Runner{Binary: fakeEngine(t), Inventory: "inv.yaml", OnTransition: record}
	if _, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "a.yaml"}}); err != nil {
		t.Fatal(err)
	}
	want := []string{"a.yaml:pending", "a.yaml:spawned", "a.yaml:exited"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("quiet transitions = %v, want %v", got, want)
	}

	got = nil
	r.Verbose = true
	if _, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "a.yaml"}}); err != nil {
		t.Fatal(err)
	}
	want = []string{"a.yaml:pending", "a.yaml:spawned", "a.yaml:streaming", "a.yaml:exited"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("verbose transitions = %v, want %v", got, want)
	}
}

func TestRunAllDryRun(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{
		Binary:      filepath.Join(t.TempDir(), "never-run"),
		PlaybookDir: "books",
		Inventory:   "inv.yaml",
		DryRun:      true,
		Stdout:      &out,
	}
	report, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "site.yaml", Env: selector.EnvOverride{"A": "1"}}})
	if err != nil {
		t.Fatalf("dry run should not launch anything: %v", err)
	}
	if !report.Outcomes[0].Success {
		t.Error("dry run outcome should be successful")
	}
	want := "-i inv.yaml " + filepath.Join("books", "site.yaml") + " -e A=1"
	if !strings.Contains(out.String(), want) {
		t.Errorf("dry run output %q missing %q", out.String(), want)
	}
}

type captureLogger struct{ lines []string }

func (c *captureLogger) Printf(format string, v ...any) {
	c.lines = append(c.lines, format)
}

func TestRunAllLogs(t *testing.T) {
	log := &captureLogger{}
	r := &Runner{Binary: fakeEngine(t), Inventory: "inv.yaml", Logger: log}
	if _, err := r.RunAll(context.Background(), selector.Selection{0: {Name: "a.yaml"}}); err != nil {
		t.Fatal(err)
	}
	if len(log.lines) != 2 {
		t.Errorf("expected launch and exit log lines, got %v", log.lines)
	}
}

func TestStateString(t *testing.T) {
	if Streaming.String() != "streaming" || State(9).String() != "state(9)" {
		t.Errorf("unexpected State strings: %s %s", Streaming, State(9))
	}
}
