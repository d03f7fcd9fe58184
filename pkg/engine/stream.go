package engine

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// maxLineSize bounds a single streamed line. Longer lines are split.
const maxLineSize = 1 << 20

// runVerbose pipes stdout and stderr, forwards every line to r.Stdout in the
// order lines arrive, and waits for the child only after both pipes hit EOF.
func (r *Runner) runVerbose(cmd *exec.Cmd, ordinal int, name string) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrLaunchFailure, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: stderr pipe: %v", ErrLaunchFailure, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLaunchFailure, cmd.Path, err)
	}
	r.transition(ordinal, name, Spawned)
	r.transition(ordinal, name, Streaming)

	lines := make(chan string)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, lines, &wg)
	go scanLines(stderr, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	out := r.stdout()
	for line := range lines {
		fmt.Fprintln(out, line)
	}
	return cmd.Wait()
}

// scanLines sends each line of rd to lines until EOF. A line longer than
// maxLineSize is sent in maxLineSize pieces so nothing after it is lost.
func scanLines(rd io.Reader, lines chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()
	br := bufio.NewReaderSize(rd, 64*1024)
	var buf []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if len(buf) > 0 {
				lines <- string(buf)
			}
			return
		}
		buf = append(buf, frag...)
		if isPrefix && len(buf) < maxLineSize {
			continue
		}
		lines <- string(buf)
		buf = buf[:0]
	}
}
