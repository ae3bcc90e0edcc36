// Package metrics enriches failed-target reporting from the tool's
// per-target JUnit XML results when they are still on disk.
package metrics

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joshdk/go-junit"
)

// TestLogPath maps a target label to its test.xml under the testlogs
// root: //Sources:UnitTests -> <root>/Sources/UnitTests/test.xml
func TestLogPath(root, label string) string {
	rel := strings.TrimPrefix(label, "//")
	rel = strings.ReplaceAll(rel, ":", string(filepath.Separator))
	return filepath.Join(root, rel, "test.xml")
}

// FailedCases parses a JUnit XML file and returns the names of failing
// and errored test cases. Uses github.com/joshdk/go-junit so every
// schema variant the tool emits parses the same way.
func FailedCases(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	suites, err := junit.IngestFile(path)
	if err != nil {
		return nil, err
	}

	var cases []string
	for _, suite := range suites {
		for _, test := range suite.Tests {
			switch test.Status {
			case junit.StatusFailed, junit.StatusError:
				name := test.Name
				if test.Classname != "" {
					name = test.Classname + "." + test.Name
				}
				cases = append(cases, name)
			}
		}
	}
	return cases, nil
}
