// Package process runs external executables (package managers and project
// generators) and streams their output line by line to caller-supplied sinks.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// maxLineSize bounds a single streamed output line. Longer lines are
// truncated and reading continues with the next line.
const maxLineSize = 1024 * 1024

// Options configures a single invocation.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string
	// OnStdout receives every non-blank stdout line.
	OnStdout func(line string)
	// OnStderr receives every non-blank stderr line.
	OnStderr func(line string)
}

// ExitError reports a process that ran but exited with a non-zero status.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

type stream int

const (
	streamStdout stream = iota
	streamStderr
)

type line struct {
	stream stream
	text   string
}

// Run starts name with args and blocks until it exits. It returns nil on exit
// status 0, an *ExitError for any other status, and a wrapped error when the
// process cannot be started. Sinks are invoked from the calling goroutine, one
// line at a time, so they need no synchronization of their own.
func Run(ctx context.Context, name string, args []string, opts Options) error {
	// #nosec G204 - name and args come from the fixed step definitions
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout of %s: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("opening stderr of %s: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}

	lines := make(chan line)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, streamStdout, lines, &wg)
	go scanLines(stderr, streamStderr, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for l := range lines {
		switch {
		case l.stream == streamStdout && opts.OnStdout != nil:
			opts.OnStdout(l.text)
		case l.stream == streamStderr && opts.OnStderr != nil:
			opts.OnStderr(l.text)
		}
	}

	// Both pipes are drained at this point, so Wait cannot race the readers.
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Name: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("waiting for %s: %w", name, err)
	}
	return nil
}

// scanLines forwards non-blank lines from r until EOF.
func scanLines(r io.Reader, s stream, out chan<- line, wg *sync.WaitGroup) {
	defer wg.Done()

	reader := bufio.NewReaderSize(r, 64*1024)
	var buf []byte
	flush := func() {
		text := strings.TrimRight(string(buf), "\r")
		buf = buf[:0]
		if strings.TrimSpace(text) != "" {
			out <- line{stream: s, text: text}
		}
	}
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err != nil {
			flush()
			// Keep draining after a read error so the child never blocks on a
			// full pipe.
			if !errors.Is(err, io.EOF) {
				_, _ = io.Copy(io.Discard, r)
			}
			return
		}
		if room := maxLineSize - len(buf); room > 0 {
			buf = append(buf, chunk[:min(len(chunk), room)]...)
		}
		if !isPrefix {
			flush()
		}
	}
}
