// Package lcov locates and parses the tool's per-target coverage-data
// files (LCOV tracefile format) and aggregates them into target, file,
// and function percentages.
package lcov

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/cask/bazelsum/internal/model"
	"github.com/cask/bazelsum/internal/patterns"
)

// Options configures aggregation
type Options struct {
	// DataFileName is the fixed coverage-data filename, e.g. coverage.dat
	DataFileName string
	// ExcludeGlobs match source-file base names to drop from target
	// totals and file listings (test scaffolding)
	ExcludeGlobs []string
	// Demangle renders a possibly-decorated symbol name human-readable;
	// nil means verbatim
	Demangle func(string) string
}

// Locate scans captured log lines for absolute paths ending in the
// coverage-data filename. Distinct paths are returned in first-seen
// order; each denotes one target's data file.
func Locate(lines []string, dataFileName string) []string {
	re := patterns.CoverageDataPath(dataFileName)
	seen := map[string]struct{}{}
	var out []string
	for _, line := range lines {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			path := m[1]
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	return out
}

// TargetName derives the target's name from the data file's parent
// directory, the second-to-last path segment.
func TargetName(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// Collect parses every located data file in parallel, preserving the
// located order in the result. Missing or unreadable files are skipped
// silently; they may legitimately be gone by report time.
func Collect(paths []string, opts Options) []model.CoverageRecord {
	records := make([]*model.CoverageRecord, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rec, err := ParseFile(path, opts)
			if err != nil {
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	g.Wait()

	out := make([]model.CoverageRecord, 0, len(paths))
	for _, rec := range records {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

// ParseFile parses one coverage-data file into a record
func ParseFile(path string, opts Options) (model.CoverageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.CoverageRecord{}, err
	}
	defer f.Close()

	rec := parse(f, opts)
	rec.Target = TargetName(path)
	return rec, nil
}

// parse consumes the line-based tagged format. SF starts a source-file
// scope, FN declares functions in order, FNDA reports hits by exact
// name, LF/LH set the current file's counts. Target totals accumulate
// every non-excluded LF/LH pair, including pairs seen outside any SF
// scope. Malformed records contribute nothing; parsing never fails.
func parse(r io.Reader, opts Options) model.CoverageRecord {
	var rec model.CoverageRecord
	var cur *model.FileCoverage
	curExcluded := false

	flush := func() {
		if cur != nil && !curExcluded {
			rec.Files = append(rec.Files, *cur)
		}
		cur = nil
		curExcluded = false
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			flush()
			name := filepath.Base(strings.TrimPrefix(line, "SF:"))
			cur = &model.FileCoverage{Name: name}
			curExcluded = excluded(name, opts.ExcludeGlobs)

		case strings.HasPrefix(line, "FN:"):
			if cur == nil {
				continue
			}
			lineNo, name, ok := splitPair(strings.TrimPrefix(line, "FN:"))
			if !ok {
				continue
			}
			cur.Functions = append(cur.Functions, model.FunctionCoverage{
				Name: name,
				Line: lineNo,
			})

		case strings.HasPrefix(line, "FNDA:"):
			if cur == nil {
				continue
			}
			hits, name, ok := splitPair(strings.TrimPrefix(line, "FNDA:"))
			if !ok {
				continue
			}
			// Exact-name match, first declaration wins
			for i := range cur.Functions {
				if cur.Functions[i].Name == name {
					cur.Functions[i].Hits = hits
					break
				}
			}

		case strings.HasPrefix(line, "LF:"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "LF:"))
			if err != nil {
				continue
			}
			if cur != nil {
				cur.LinesFound = n
			}
			if !curExcluded {
				rec.LinesFound += n
			}

		case strings.HasPrefix(line, "LH:"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "LH:"))
			if err != nil {
				continue
			}
			if cur != nil {
				cur.LinesHit = n
			}
			if !curExcluded {
				rec.LinesHit += n
			}

		case line == "end_of_record":
			flush()
		}
	}
	flush()
	return rec
}

// splitPair parses "<number>,<name>" fields as used by FN and FNDA
func splitPair(s string) (int, string, bool) {
	num, name, found := strings.Cut(s, ",")
	if !found {
		return 0, "", false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", false
	}
	return n, name, true
}

// excluded reports whether a source-file base name matches any of the
// test-convention globs.
func excluded(name string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Uncovered returns the file's never-executed functions in declaration
// order, with compiler-generated closures filtered out and names passed
// through the configured demangler.
func Uncovered(file model.FileCoverage, demangle func(string) string) []model.FunctionCoverage {
	var out []model.FunctionCoverage
	for _, fn := range file.Functions {
		if !fn.Uncovered() {
			continue
		}
		name := fn.Name
		if demangle != nil {
			name = demangle(name)
		}
		if patterns.ClosureName.MatchString(fn.Name) || patterns.ClosureName.MatchString(name) {
			continue
		}
		fn.Name = name
		out = append(out, fn)
	}
	return out
}
