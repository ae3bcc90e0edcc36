// Package report composes the classifier, extractor, tally, and
// coverage outputs into the final terse report.
package report

import (
	"fmt"
	"io"

	"github.com/cask/bazelsum/internal/lcov"
	"github.com/cask/bazelsum/internal/model"
)

// Renderer writes the report
type Renderer struct {
	out    io.Writer
	colors *Colors
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, enableColors bool) *Renderer {
	return &Renderer{out: out, colors: NewColors(enableColors)}
}

// Headline prints the literal outcome line. A passing test run with at
// least one counted target carries the count; zero counted targets is
// still a valid pass and prints unqualified.
func (r *Renderer) Headline(outcome model.RunOutcome) {
	switch outcome.Kind {
	case model.BuildSucceeded:
		fmt.Fprintln(r.out, r.colors.Green("BUILD SUCCEEDED"))
	case model.BuildFailed:
		fmt.Fprintln(r.out, r.colors.Red("BUILD FAILED"))
	case model.TestsPassed:
		if outcome.Passed > 0 {
			fmt.Fprintln(r.out, r.colors.Green(fmt.Sprintf("TESTS PASSED (%d targets)", outcome.Passed)))
		} else {
			fmt.Fprintln(r.out, r.colors.Green("TESTS PASSED"))
		}
	case model.TestsFailed:
		fmt.Fprintln(r.out, r.colors.Red(fmt.Sprintf("TESTS FAILED (%d failed, %d passed)", outcome.Failed, outcome.Passed)))
	}
}

// Lines prints pre-extracted lines verbatim, one per line
func (r *Renderer) Lines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
}

// FailedTargets prints the failed marker lines, each followed by any
// failing test-case names recovered from the target's JUnit results.
func (r *Renderer) FailedTargets(markers []string, cases map[string][]string) {
	for _, marker := range markers {
		fmt.Fprintln(r.out, r.colors.Red(marker))
		for _, name := range cases[marker] {
			fmt.Fprintf(r.out, "  %s\n", name)
		}
	}
}

// ProjectGenerated prints the fixed success line for the pass-through
// project-generation operation.
func (r *Renderer) ProjectGenerated() {
	fmt.Fprintln(r.out, r.colors.Green("PROJECT GENERATED"))
}

// Coverage prints each target's percentage in located order. At file
// detail each non-excluded file follows, indented, in SF order. At
// function detail, files below 100% additionally list every uncovered
// function in declaration order.
func (r *Renderer) Coverage(records []model.CoverageRecord, detail model.DetailLevel, demangle func(string) string) {
	for _, rec := range records {
		fmt.Fprintf(r.out, "%s: %s\n", rec.Target, r.percent(rec.Percent()))
		if detail == model.DetailTarget {
			continue
		}
		for _, file := range rec.Files {
			fmt.Fprintf(r.out, "  %s: %s\n", file.Name, r.percent(file.Percent()))
			if detail != model.DetailFunction || file.Percent() >= 100 {
				continue
			}
			for _, fn := range lcov.Uncovered(file, demangle) {
				fmt.Fprintf(r.out, "    %s (line %d)\n", fn.Name, fn.Line)
			}
		}
	}
}

func (r *Renderer) percent(pct int) string {
	text := fmt.Sprintf("%d%%", pct)
	switch {
	case pct >= 80:
		return r.colors.Green(text)
	case pct >= 50:
		return r.colors.Yellow(text)
	default:
		return r.colors.Red(text)
	}
}
