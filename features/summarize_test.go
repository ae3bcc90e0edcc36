package features

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/cask/bazelsum/internal/classify"
	"github.com/cask/bazelsum/internal/model"
	"github.com/cask/bazelsum/internal/report"
)

// summarizeContext holds one scenario's state
type summarizeContext struct {
	op       model.Operation
	exitCode int
	lines    []string
	output   string
}

func (c *summarizeContext) aRunThatExitedWithCode(op string, code int) error {
	c.op = model.Operation(op)
	c.exitCode = code
	return nil
}

func (c *summarizeContext) theLogLine(line string) error {
	c.lines = append(c.lines, line)
	return nil
}

// theRunIsSummarized composes the report the way the CLI does, minus
// the tool invocation itself.
func (c *summarizeContext) theRunIsSummarized() error {
	var buf bytes.Buffer
	renderer := report.NewRenderer(&buf, false)

	outcome := classify.Classify(c.op, c.exitCode, c.lines)
	renderer.Headline(outcome)

	switch outcome.Kind {
	case model.BuildFailed:
		errs := classify.Errors(c.lines)
		if len(errs) == 0 {
			renderer.Lines(c.lines)
		} else {
			renderer.Lines(errs)
		}
		if c.op != model.OpBuild {
			renderer.Lines(classify.FailureDetail(c.lines))
		}
	case model.TestsFailed:
		renderer.FailedTargets(classify.FailedTargets(c.lines), nil)
		renderer.Lines(classify.FailureDetail(c.lines))
	}

	c.output = buf.String()
	return nil
}

func (c *summarizeContext) theReportIsExactly(expected string) error {
	if c.output != expected+"\n" {
		return fmt.Errorf("expected exactly %q, got %q", expected, c.output)
	}
	return nil
}

func (c *summarizeContext) theReportContains(expected string) error {
	if !strings.Contains(c.output, expected) {
		return fmt.Errorf("expected report to contain %q, got %q", expected, c.output)
	}
	return nil
}

func (c *summarizeContext) theReportContainsExactlyOnce(expected string) error {
	if n := strings.Count(c.output, expected); n != 1 {
		return fmt.Errorf("expected %q once, found %d times in %q", expected, n, c.output)
	}
	return nil
}

func (c *summarizeContext) theReportDoesNotContain(unexpected string) error {
	if strings.Contains(c.output, unexpected) {
		return fmt.Errorf("expected report to not contain %q, got %q", unexpected, c.output)
	}
	return nil
}

func InitializeScenario(sc *godog.ScenarioContext) {
	c := &summarizeContext{}

	sc.Step(`^a "([^"]*)" run that exited with code (\d+)$`, c.aRunThatExitedWithCode)
	sc.Step(`^the log line "([^"]*)"$`, c.theLogLine)
	sc.Step(`^the run is summarized$`, c.theRunIsSummarized)
	sc.Step(`^the report is exactly "([^"]*)"$`, c.theReportIsExactly)
	sc.Step(`^the report contains "([^"]*)" exactly once$`, c.theReportContainsExactlyOnce)
	sc.Step(`^the report contains "([^"]*)"$`, c.theReportContains)
	sc.Step(`^the report does not contain "([^"]*)"$`, c.theReportDoesNotContain)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			InitializeScenario(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"."},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
