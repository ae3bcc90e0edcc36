package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTestLogPath(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"//Tests:UnitTests", filepath.Join("bazel-testlogs", "Tests", "UnitTests", "test.xml")},
		{"//Sources/App:AppTests", filepath.Join("bazel-testlogs", "Sources", "App", "AppTests", "test.xml")},
	}

	for _, tt := range tests {
		if got := TestLogPath("bazel-testlogs", tt.label); got != tt.want {
			t.Errorf("TestLogPath(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestFailedCases(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="AppTests" tests="3" failures="1" errors="0" skipped="0">
  <testcase name="testIncrement" classname="CounterTests" time="0.001"/>
  <testcase name="testDecrement" classname="CounterTests" time="0.002">
    <failure message="assertion failed">Expected 1 but got 2</failure>
  </testcase>
  <testcase name="testReset" classname="CounterTests" time="0.001"/>
</testsuite>`

	dir := t.TempDir()
	path := filepath.Join(dir, "test.xml")
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FailedCases(path)
	if err != nil {
		t.Fatalf("FailedCases() error: %v", err)
	}
	if len(got) != 1 || got[0] != "CounterTests.testDecrement" {
		t.Errorf("FailedCases() = %v, want the single failing case", got)
	}
}

func TestFailedCasesMissingFile(t *testing.T) {
	if _, err := FailedCases(filepath.Join(t.TempDir(), "test.xml")); err == nil {
		t.Error("missing file should error so the caller can skip silently")
	}
}
