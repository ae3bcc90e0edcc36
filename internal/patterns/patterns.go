// Package patterns is the single registry of log-recognition regexps.
// The underlying tool's output format drifts between releases; keeping
// every recognized shape in one table means drift is a one-file fix.
package patterns

import "regexp"

var (
	// CompileError matches compiler diagnostics: <file>:<line>:<col>: error: <msg>
	CompileError = regexp.MustCompile(`^\S+:\d+:\d+: error: .*`)

	// ToolError matches the tool's own top-level failure lines
	ToolError = regexp.MustCompile(`^ERROR: `)

	// BuildNotComplete is the tool's final failure summary
	BuildNotComplete = regexp.MustCompile(`^FAILED: Build did NOT complete successfully`)

	// ElapsedSummary and ProcessSummary are the end-of-run statistics lines
	ElapsedSummary = regexp.MustCompile(`^INFO: Elapsed time: `)
	ProcessSummary = regexp.MustCompile(`^INFO: \d+ process(es)?`)

	// InvocationID and StreamingResults identify the invocation for
	// failures with no source-level diagnostics
	InvocationID     = regexp.MustCompile(`^INFO: Invocation ID: `)
	StreamingResults = regexp.MustCompile(`^INFO: Streaming build results to`)

	// TestPassed and TestFailed are the per-target marker lines
	TestPassed = regexp.MustCompile(`^\S+\s+(?:\(cached\) )?PASSED in [0-9.]+m?s$`)
	TestFailed = regexp.MustCompile(`^\S+\s+FAILED in [0-9.]+m?s$`)

	// LockWait matches the server-busy notices worth echoing live
	LockWait = regexp.MustCompile(`Another command holds the client lock|Waiting for it to complete`)

	// Delimiter brackets verbatim test-failure output
	Delimiter = regexp.MustCompile(`^={70,}$`)

	// ClosureName matches compiler-generated closure symbols, both the
	// mangled marker and the demangled rendering
	ClosureName = regexp.MustCompile(`closure #\d+|fU\d*_`)
)

// CoverageDataPath builds the matcher for absolute paths ending in the
// configured coverage-data filename.
func CoverageDataPath(filename string) *regexp.Regexp {
	return regexp.MustCompile(`(/[^\s:,"']+/` + regexp.QuoteMeta(filename) + `)\b`)
}
