// Package classify turns a captured log plus the tool's exit status
// into a RunOutcome and extracts the lines worth reporting.
package classify

import (
	"regexp"

	"github.com/cask/bazelsum/internal/model"
	"github.com/cask/bazelsum/internal/patterns"
)

// maxDetailLines caps the verbatim failure excerpt
const maxDetailLines = 100

// Classify derives the run outcome. Exit status decides first; marker
// counts refine test-mode results. A failed test run in which no test
// target ever started (zero PASSED, zero FAILED markers) is a build
// failure upstream of the tests, and reporting it as "0 failed,
// 0 passed" would be misleading, so it classifies as BuildFailed.
func Classify(op model.Operation, exitCode int, lines []string) model.RunOutcome {
	testMode := op == model.OpTest || op == model.OpCoverage

	if exitCode == 0 {
		if testMode {
			return model.RunOutcome{
				ExitCode: 0,
				Kind:     model.TestsPassed,
				Passed:   len(distinct(lines, patterns.TestPassed)),
			}
		}
		return model.RunOutcome{ExitCode: 0, Kind: model.BuildSucceeded}
	}

	if testMode {
		passed := len(distinct(lines, patterns.TestPassed))
		failed := len(distinct(lines, patterns.TestFailed))
		if passed == 0 && failed == 0 {
			return model.RunOutcome{ExitCode: exitCode, Kind: model.BuildFailed}
		}
		return model.RunOutcome{
			ExitCode: exitCode,
			Kind:     model.TestsFailed,
			Passed:   passed,
			Failed:   failed,
		}
	}
	return model.RunOutcome{ExitCode: exitCode, Kind: model.BuildFailed}
}

// Errors returns the diagnostic lines to display for a failed run.
// Compiler diagnostics take precedence; tool-level summary lines are
// the fallback for failures with no source-level diagnostics, such as
// dependency-resolution errors. Empty result means the caller should
// dump the full log so nothing is silently lost.
func Errors(lines []string) []string {
	if diags := distinct(lines, patterns.CompileError); len(diags) > 0 {
		return diags
	}
	return distinctAny(lines,
		patterns.ToolError,
		patterns.BuildNotComplete,
		patterns.InvocationID,
		patterns.StreamingResults,
		patterns.ElapsedSummary,
		patterns.ProcessSummary,
	)
}

// FailedTargets returns the distinct per-target FAILED marker lines in
// first-seen order.
func FailedTargets(lines []string) []string {
	return distinct(lines, patterns.TestFailed)
}

// FailureDetail extracts up to 100 non-blank lines found between paired
// runs of '=' delimiters, as emitted around verbatim test output.
func FailureDetail(lines []string) []string {
	var out []string
	inside := false
	for _, line := range lines {
		if patterns.Delimiter.MatchString(line) {
			inside = !inside
			continue
		}
		if !inside || line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxDetailLines {
			break
		}
	}
	return out
}

// distinct returns lines matching re, deduplicated by exact content,
// preserving order of first occurrence.
func distinct(lines []string, re *regexp.Regexp) []string {
	return distinctAny(lines, re)
}

func distinctAny(lines []string, res ...*regexp.Regexp) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, line := range lines {
		if _, dup := seen[line]; dup {
			continue
		}
		for _, re := range res {
			if re.MatchString(line) {
				seen[line] = struct{}{}
				out = append(out, line)
				break
			}
		}
	}
	return out
}
