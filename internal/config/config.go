// Package config handles loading, validation, and merging of bazelsum
// configuration files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is looked up when no -config flag is given
const DefaultPath = "bazelsum.toml"

// Config represents the complete bazelsum configuration
type Config struct {
	// Tool is the underlying build tool binary
	Tool string `toml:"tool"`
	// TestlogsRoot is where the tool writes per-target test results
	TestlogsRoot string         `toml:"testlogsRoot"`
	Flags        FlagsConfig    `toml:"flags"`
	Coverage     CoverageConfig `toml:"coverage"`
}

// FlagsConfig holds the argument lists appended to each tool command.
// Common carries the deterministic non-interactive flags; downstream
// text matching depends on them.
type FlagsConfig struct {
	Common   []string `toml:"common"`
	Build    []string `toml:"build"`
	Test     []string `toml:"test"`
	Coverage []string `toml:"coverage"`
	Project  []string `toml:"project"`
}

// CoverageConfig holds coverage-aggregation settings
type CoverageConfig struct {
	// DataFileName is the fixed per-target coverage-data filename
	DataFileName string `toml:"dataFileName"`
	// ExcludeGlobs match source-file base names excluded as test scaffolding
	ExcludeGlobs []string `toml:"excludeGlobs"`
	// Detail is the default report granularity: target, file, function
	Detail string `toml:"detail"`
	// DemangleCommand renders decorated symbol names readable, e.g.
	// "swift demangle"; empty means verbatim
	DemangleCommand string `toml:"demangleCommand"`
}

// Load reads configuration from a TOML file. An explicitly named file
// that is missing is an error; a missing default file just means
// defaults apply.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, nil
	}

	var cfg Config
	metadata, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	undecoded := metadata.Undecoded()
	if len(undecoded) > 0 {
		var unknown []string
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		return nil, fmt.Errorf("unknown fields in config: %s", strings.Join(unknown, ", "))
	}

	return &cfg, nil
}

// Defaults returns the default configuration
func Defaults() Config {
	return Config{
		Tool:         "bazel",
		TestlogsRoot: "bazel-testlogs",
		Flags: FlagsConfig{
			Common:   []string{"--color=no", "--curses=no", "--noshow_progress"},
			Test:     []string{"--test_output=errors"},
			Coverage: []string{"--test_output=errors"},
		},
		Coverage: CoverageConfig{
			DataFileName: "coverage.dat",
			ExcludeGlobs: []string{"*Tests.*", "*_test.*"},
			Detail:       "file",
		},
	}
}

// MergeWithDefaults merges loaded config with defaults
func MergeWithDefaults(cfg *Config) Config {
	defaults := Defaults()

	if cfg == nil {
		return defaults
	}

	if cfg.Tool == "" {
		cfg.Tool = defaults.Tool
	}
	if cfg.TestlogsRoot == "" {
		cfg.TestlogsRoot = defaults.TestlogsRoot
	}
	if cfg.Flags.Common == nil {
		cfg.Flags.Common = defaults.Flags.Common
	}
	if cfg.Flags.Test == nil {
		cfg.Flags.Test = defaults.Flags.Test
	}
	if cfg.Flags.Coverage == nil {
		cfg.Flags.Coverage = defaults.Flags.Coverage
	}
	if cfg.Coverage.DataFileName == "" {
		cfg.Coverage.DataFileName = defaults.Coverage.DataFileName
	}
	if cfg.Coverage.ExcludeGlobs == nil {
		cfg.Coverage.ExcludeGlobs = defaults.Coverage.ExcludeGlobs
	}
	if cfg.Coverage.Detail == "" {
		cfg.Coverage.Detail = defaults.Coverage.Detail
	}

	return *cfg
}
