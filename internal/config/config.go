package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Config represents a tapevm.yaml benchmark configuration.
type Config struct {
	// Backends lists the backends every case runs on.
	// Defaults to DefaultBackend.
	Backends []string `yaml:"backends,omitempty"`

	// Iterations is how many times each case is executed per backend.
	Iterations int `yaml:"iterations,omitempty"`

	// Recompile prepares the expression again on every iteration, so
	// compilation cost is part of the measurement.
	Recompile bool `yaml:"recompile,omitempty"`

	// ResultsDB is the SQLite file runs are recorded in. Relative paths
	// are resolved against the directory of the config file. An empty
	// value after defaults means "-" which disables recording.
	ResultsDB string `yaml:"results_db,omitempty"`

	// Cases lists what to run. When empty, the built-in sample is used.
	Cases []Case `yaml:"cases,omitempty"`

	dir string
}

// Case is a single benchmark entry.
type Case struct {
	// File is an expression file, relative to the config file.
	File string `yaml:"file,omitempty"`

	// Sample selects the built-in accumulation expression instead of a file.
	Sample bool `yaml:"sample,omitempty"`

	// Name overrides the name taken from the expression file.
	Name string `yaml:"name,omitempty"`

	// Args overrides the arguments stored in the expression file.
	Args []int64 `yaml:"args,omitempty,flow"`
}

// Default returns the configuration used when no tapevm.yaml exists.
func Default() *Config {
	cfg := &Config{Cases: []Case{{Sample: true}}, dir: "."}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a tapevm.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses tapevm.yaml content from bytes.
// The path argument is used for error messages and to resolve relative paths.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for tapevm.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func init() {
	// env caches the environment on first use; tapevm reads it directly so
	// that variables set later in the process are seen.
	env.Unload()
}

// ApplyEnv overrides fields from TAPEVM_* environment variables.
// TAPEVM_BACKEND is a comma separated list.
func (c *Config) ApplyEnv() error {
	if env.Has(EnvBackend) {
		var backends []string
		for _, name := range strings.Split(env.Str(EnvBackend), ",") {
			if name = strings.TrimSpace(name); name != "" {
				backends = append(backends, name)
			}
		}
		c.Backends = backends
	}
	if env.Has(EnvIterations) {
		n := env.Int(EnvIterations, -1)
		if n <= 0 {
			return fmt.Errorf("%s: must be a positive integer, got %q", EnvIterations, env.Str(EnvIterations))
		}
		c.Iterations = n
	}
	if env.Has(EnvResultsDB) {
		c.ResultsDB = env.Str(EnvResultsDB)
	}
	if err := c.validate("environment"); err != nil {
		return err
	}
	c.setDefaults()
	return nil
}

// Resolve returns p relative to the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// ResultsPath returns the results database path, or "" when recording is
// disabled.
func (c *Config) ResultsPath() string {
	if c.ResultsDB == "-" {
		return ""
	}
	return c.Resolve(c.ResultsDB)
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Iterations < 0 {
		return fmt.Errorf("%s: iterations must not be negative", path)
	}

	seen := make(map[string]bool)
	for i, name := range c.Backends {
		if !IsBackend(name) {
			return fmt.Errorf("%s: backends[%d]: unknown backend %q (known: %s)",
				path, i, name, strings.Join(BackendNames(), ", "))
		}
		if seen[name] {
			return fmt.Errorf("%s: backends[%d]: duplicate backend %q", path, i, name)
		}
		seen[name] = true
	}

	for i, cs := range c.Cases {
		if cs.Sample && cs.File != "" {
			return fmt.Errorf("%s: cases[%d]: file and sample are mutually exclusive", path, i)
		}
		if !cs.Sample && cs.File == "" {
			return fmt.Errorf("%s: cases[%d]: either file or sample is required", path, i)
		}
		if cs.Sample && cs.Args != nil && len(cs.Args) != SampleArgCount {
			return fmt.Errorf("%s: cases[%d]: the sample takes %d arguments, got %d",
				path, i, SampleArgCount, len(cs.Args))
		}
		if cs.File != "" && !IsExprFile(cs.File) && !IsSexprFile(cs.File) {
			return fmt.Errorf("%s: cases[%d]: %q is not an expression file", path, i, cs.File)
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if len(c.Backends) == 0 {
		c.Backends = []string{DefaultBackend}
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.ResultsDB == "" {
		c.ResultsDB = DefaultResultsDB
	}
	if len(c.Cases) == 0 {
		c.Cases = []Case{{Sample: true}}
	}
}

// BackendNames returns the names of all backends in display order.
func BackendNames() []string {
	return []string{BackendVM, BackendVMDirect, BackendClosure, BackendTree}
}

// IsBackend reports whether name is a known backend.
func IsBackend(name string) bool {
	for _, b := range BackendNames() {
		if b == name {
			return true
		}
	}
	return false
}
