// bazelsum - build-result summarizer and coverage aggregator
//
// Wraps a Bazel-compatible build tool, captures its combined output,
// classifies the outcome, and prints a terse report. Coverage runs are
// aggregated from the tool's LCOV tracefiles into per-target, per-file,
// and per-function percentages.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/cask/bazelsum/internal/capture"
	"github.com/cask/bazelsum/internal/classify"
	"github.com/cask/bazelsum/internal/config"
	"github.com/cask/bazelsum/internal/lcov"
	"github.com/cask/bazelsum/internal/metrics"
	"github.com/cask/bazelsum/internal/model"
	"github.com/cask/bazelsum/internal/report"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: bazelsum [flags] <operation> <target> [-- <tool args>...]

operations:
  build      build the target
  test       run the target's tests
  coverage   run tests and report line coverage
  project    regenerate the project (pass-through)

flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		flagDetail  string
		flagConfig  string
		flagTool    string
		flagNoColor bool
		flagVerbose bool
	)

	flag.StringVar(&flagDetail, "detail", "", "Coverage detail level: target, file, function (default from config)")
	flag.StringVar(&flagConfig, "config", "", "Path to config file (default: bazelsum.toml)")
	flag.StringVar(&flagTool, "tool", "", "Underlying build tool binary (overrides config)")
	flag.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flagVerbose, "verbose", false, "Verbose wrapper logging")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}
	merged := config.MergeWithDefaults(cfg)
	if flagTool != "" {
		merged.Tool = flagTool
	}

	detail := flagDetail
	if detail == "" {
		detail = merged.Coverage.Detail
	}

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	req, err := newRequest(args[0], args[1], detail, args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	enableColors := !flagNoColor && report.IsColorEnabled()
	renderer := report.NewRenderer(os.Stdout, enableColors)

	os.Exit(run(req, merged, renderer, flagVerbose))
}

// run invokes the tool, classifies the captured output, and renders the
// report. The tool's exit status is returned verbatim.
func run(req model.RunRequest, cfg config.Config, renderer *report.Renderer, verbose bool) int {
	log, err := capture.New(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 2
	}
	defer log.Close()

	// Scratch log must not outlive an interrupted run
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Close()
		os.Exit(130)
	}()
	defer signal.Stop(sigCh)

	args := toolArgs(cfg, req)
	if verbose {
		fmt.Fprintf(os.Stderr, "bazelsum: scratch log %s\n", log.Path())
		fmt.Fprintf(os.Stderr, "bazelsum: exec %s %v\n", cfg.Tool, args)
	}

	cmd := exec.Command(cfg.Tool, args...)
	cmd.Stdout = log
	cmd.Stderr = log
	exitCode := exitCodeFrom(cmd.Run())

	lines := log.Lines()

	if req.Operation == model.OpProject {
		if exitCode == 0 {
			renderer.ProjectGenerated()
		} else {
			renderer.Headline(model.RunOutcome{ExitCode: exitCode, Kind: model.BuildFailed})
			renderFailure(renderer, lines)
		}
		return exitCode
	}

	outcome := classify.Classify(req.Operation, exitCode, lines)
	renderer.Headline(outcome)

	switch outcome.Kind {
	case model.BuildFailed:
		renderFailure(renderer, lines)
		if req.Operation != model.OpBuild {
			renderer.Lines(classify.FailureDetail(lines))
		}

	case model.TestsFailed:
		markers := classify.FailedTargets(lines)
		renderer.FailedTargets(markers, failedCases(cfg.TestlogsRoot, markers))
		renderer.Lines(classify.FailureDetail(lines))

	case model.TestsPassed:
		if req.Operation == model.OpCoverage {
			opts := lcov.Options{
				DataFileName: cfg.Coverage.DataFileName,
				ExcludeGlobs: cfg.Coverage.ExcludeGlobs,
			}
			if cfg.Coverage.DemangleCommand != "" {
				opts.Demangle = lcov.CommandDemangler(cfg.Coverage.DemangleCommand)
			}
			paths := lcov.Locate(lines, cfg.Coverage.DataFileName)
			if verbose {
				fmt.Fprintf(os.Stderr, "bazelsum: %d coverage data file(s) located\n", len(paths))
			}
			renderer.Coverage(lcov.Collect(paths, opts), req.Detail, opts.Demangle)
		}
	}

	return exitCode
}

// renderFailure prints extracted diagnostics, falling back to the full
// captured log when nothing recognizable was found.
func renderFailure(renderer *report.Renderer, lines []string) {
	errs := classify.Errors(lines)
	if len(errs) == 0 {
		renderer.Lines(lines)
		return
	}
	renderer.Lines(errs)
}

// newRequest validates the positional arguments into a RunRequest
func newRequest(op, target, detail string, extra []string) (model.RunRequest, error) {
	operation := model.Operation(op)
	switch operation {
	case model.OpBuild, model.OpTest, model.OpCoverage, model.OpProject:
	default:
		return model.RunRequest{}, fmt.Errorf("unknown operation %q", op)
	}
	if target == "" {
		return model.RunRequest{}, errors.New("missing target")
	}

	level := model.DetailLevel(detail)
	switch level {
	case model.DetailTarget, model.DetailFile, model.DetailFunction:
	case "":
		level = model.DetailFile
	default:
		return model.RunRequest{}, fmt.Errorf("unknown detail level %q", detail)
	}

	// Flag parsing stops at the first positional, so a literal "--"
	// separator arrives here rather than being consumed by the flag
	// package
	if len(extra) > 0 && extra[0] == "--" {
		extra = extra[1:]
	}

	return model.RunRequest{
		Operation: operation,
		Target:    target,
		Detail:    level,
		ExtraArgs: extra,
	}, nil
}

// toolArgs assembles the tool command line: subcommand, deterministic
// common flags, per-operation flags, target, then pass-through args.
func toolArgs(cfg config.Config, req model.RunRequest) []string {
	sub := string(req.Operation)
	var opFlags []string
	switch req.Operation {
	case model.OpBuild:
		opFlags = cfg.Flags.Build
	case model.OpTest:
		opFlags = cfg.Flags.Test
	case model.OpCoverage:
		opFlags = cfg.Flags.Coverage
	case model.OpProject:
		sub = "run"
		opFlags = cfg.Flags.Project
	}

	args := []string{sub}
	args = append(args, cfg.Flags.Common...)
	args = append(args, opFlags...)
	args = append(args, req.Target)
	args = append(args, req.ExtraArgs...)
	return args
}

// exitCodeFrom maps cmd.Run errors to the tool's exit status
func exitCodeFrom(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

// failedCases recovers failing test-case names from each failed
// target's JUnit results, best-effort.
func failedCases(testlogsRoot string, markers []string) map[string][]string {
	cases := map[string][]string{}
	for _, marker := range markers {
		label, _, found := cutFirstField(marker)
		if !found {
			continue
		}
		names, err := metrics.FailedCases(metrics.TestLogPath(testlogsRoot, label))
		if err != nil || len(names) == 0 {
			continue
		}
		cases[marker] = names
	}
	return cases
}

// cutFirstField splits a marker line into the target label and the rest
func cutFirstField(line string) (string, string, bool) {
	for i, c := range line {
		if c == ' ' || c == '\t' {
			return line[:i], line[i+1:], true
		}
	}
	return "", line, false
}
