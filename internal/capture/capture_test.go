package capture

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestWriteSplitsLines(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer log.Close()

	// Chunks arrive mid-line, as they do from a pipe
	log.Write([]byte("INFO: Build com"))
	log.Write([]byte("pleted\nsecond line\npartial"))

	lines := log.Lines()
	want := []string{"INFO: Build completed", "second line", "partial"}
	if len(lines) != len(want) {
		t.Fatalf("Lines() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteStripsANSI(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer log.Close()

	log.Write([]byte("\033[31mERROR: something\033[0m\n"))

	lines := log.Lines()
	if len(lines) != 1 || lines[0] != "ERROR: something" {
		t.Errorf("Lines() = %v, want stripped line", lines)
	}
}

func TestLockWaitEchoedLive(t *testing.T) {
	var echo bytes.Buffer
	log, err := New(&echo)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer log.Close()

	log.Write([]byte("INFO: ordinary output\n"))
	log.Write([]byte("Another command holds the client lock: pid=99\n"))

	if got := echo.String(); !strings.Contains(got, "client lock") {
		t.Errorf("lock-wait notice not echoed, echo = %q", got)
	}
	if strings.Contains(echo.String(), "ordinary output") {
		t.Error("ordinary lines must not be echoed")
	}
}

func TestCloseRemovesScratchFile(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	path := log.Path()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("scratch file should exist before Close: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("scratch file should be removed after Close")
	}

	// Second Close is a no-op
	if err := log.Close(); err != nil {
		t.Errorf("repeated Close() error: %v", err)
	}
}

func TestWriteAfterCloseDoesNotPanic(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	log.Close()

	// The tool may still flush output while an interrupt tears us down
	if _, err := log.Write([]byte("late line\n")); err != nil {
		t.Errorf("Write after Close error: %v", err)
	}
}
