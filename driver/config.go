package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"ruchy/parser"
	"ruchy/types"
)

// ConfigFile is the name looked up next to a script and in its parents
const ConfigFile = "ruchy.yaml"

// Config holds the settings shared by every subcommand. Zero limits
// disable the corresponding check.
type Config struct {
	MaxSteps      int64    `yaml:"max_steps"`
	MaxDepth      int      `yaml:"max_depth"`
	MaxParseDepth int      `yaml:"max_parse_depth"`
	Provenance    bool     `yaml:"provenance"`
	Trace         bool     `yaml:"trace"`
	TraceFilter   []string `yaml:"trace_filter"`
	ModulePaths   []string `yaml:"module_paths"`

	// dir resolves relative module paths; it is the directory of the
	// config file when one was loaded
	dir string
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() Config {
	return Config{
		MaxSteps:      types.DefaultMaxSteps,
		MaxDepth:      types.DefaultMaxDepth,
		MaxParseDepth: parser.DefaultMaxDepth,
		Provenance:    true,
	}
}

// LoadConfig reads a YAML config file over the defaults. Unknown keys are
// rejected so that typos do not pass silently.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		cfg.dir = abs
	}
	return cfg, nil
}

// FindConfig walks from dir towards the filesystem root and returns the
// first ruchy.yaml found, or "" when there is none
func FindConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// modulePaths returns the configured search directories, made absolute
// against the config file's directory
func (c Config) modulePaths() []string {
	paths := make([]string, 0, len(c.ModulePaths))
	for _, p := range c.ModulePaths {
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}
		paths = append(paths, p)
	}
	return paths
}
