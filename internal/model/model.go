package model

// Operation is the wrapper operation requested on the command line
type Operation string

// Operation constants
const (
	OpBuild    Operation = "build"
	OpTest     Operation = "test"
	OpCoverage Operation = "coverage"
	OpProject  Operation = "project"
)

// DetailLevel controls coverage report granularity
type DetailLevel string

// Detail level constants
const (
	DetailTarget   DetailLevel = "target"
	DetailFile     DetailLevel = "file"
	DetailFunction DetailLevel = "function"
)

// RunRequest is the resolved invocation, immutable once constructed
type RunRequest struct {
	Operation Operation
	Target    string
	Detail    DetailLevel
	ExtraArgs []string
}

// OutcomeKind classifies a finished run
type OutcomeKind string

// Outcome constants
const (
	BuildSucceeded OutcomeKind = "BUILD_SUCCEEDED"
	BuildFailed    OutcomeKind = "BUILD_FAILED"
	TestsPassed    OutcomeKind = "TESTS_PASSED"
	TestsFailed    OutcomeKind = "TESTS_FAILED"
)

// RunOutcome is derived once from the captured log plus the tool's exit
// status and never mutated afterward
type RunOutcome struct {
	ExitCode int
	Kind     OutcomeKind
	Passed   int
	Failed   int
}

// FunctionCoverage is one declared function inside a source file record
type FunctionCoverage struct {
	Name string
	Line int
	Hits int
}

// Uncovered reports whether the function was never executed
func (f FunctionCoverage) Uncovered() bool {
	return f.Hits == 0
}

// FileCoverage is the per-source-file slice of a coverage record
type FileCoverage struct {
	Name       string
	LinesFound int
	LinesHit   int
	Functions  []FunctionCoverage
}

// Percent returns the file's line-coverage percentage
func (f FileCoverage) Percent() int {
	return Percent(f.LinesHit, f.LinesFound)
}

// CoverageRecord is the aggregate for one target's coverage-data file
type CoverageRecord struct {
	Target     string
	LinesFound int
	LinesHit   int
	Files      []FileCoverage
}

// Percent returns the target's line-coverage percentage
func (r CoverageRecord) Percent() int {
	return Percent(r.LinesHit, r.LinesFound)
}

// Percent computes floor(hit/found*100), or 0 when found is zero.
// The floor and the zero default are load-bearing: downstream tooling
// asserts the exact integer.
func Percent(hit, found int) int {
	if found <= 0 {
		return 0
	}
	return hit * 100 / found
}
