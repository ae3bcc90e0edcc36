// Package capture buffers the tool's combined output stream to a
// per-invocation scratch file while keeping a normalized line view in
// memory for classification.
package capture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/acarl005/stripansi"

	"github.com/cask/bazelsum/internal/patterns"
)

// Log is the captured output of one run. It implements io.Writer so it
// can be handed to exec.Cmd as both stdout and stderr. Writes never
// block on the echo side, so the pipe from the tool cannot deadlock.
type Log struct {
	mu      sync.Mutex
	file    *os.File
	lines   []string
	partial []byte
	echo    io.Writer
	closed  bool
}

// New creates the scratch file and returns the capture log. Lines
// matching the lock-wait notice are echoed to echo as they arrive so
// long waits stay visible; pass nil to disable echoing.
func New(echo io.Writer) (*Log, error) {
	f, err := os.CreateTemp("", "bazelsum-*.log")
	if err != nil {
		return nil, fmt.Errorf("create scratch log: %w", err)
	}
	return &Log{file: f, echo: echo}, nil
}

// Path returns the scratch file location
func (l *Log) Path() string {
	return l.file.Name()
}

// Write appends raw bytes to the scratch file and splits complete lines
// into the in-memory view. Lines are stripped of ANSI sequences before
// being stored so downstream text matching is stable.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		l.file.Write(p)
	}

	l.partial = append(l.partial, p...)
	for {
		idx := bytes.IndexByte(l.partial, '\n')
		if idx == -1 {
			break
		}
		line := stripansi.Strip(string(l.partial[:idx]))
		l.lines = append(l.lines, line)
		if l.echo != nil && patterns.LockWait.MatchString(line) {
			fmt.Fprintln(l.echo, line)
		}
		l.partial = l.partial[idx+1:]
	}
	return len(p), nil
}

// Lines returns the captured lines seen so far, including a trailing
// unterminated line if the tool did not end its output with a newline.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.lines), len(l.lines)+1)
	copy(out, l.lines)
	if len(l.partial) > 0 {
		out = append(out, stripansi.Strip(string(l.partial)))
	}
	return out
}

// Close closes and removes the scratch file. Safe to call more than
// once; the run path defers it and the signal path calls it directly.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	name := l.file.Name()
	l.file.Close()
	return os.Remove(name)
}
