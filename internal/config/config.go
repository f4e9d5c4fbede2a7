// Package config loads the lint configuration document that drives checker
// dispatch: which checkers run, in what order, against which files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// CheckerSpec configures one checker in the roster. Identity is Name;
// Include and Exclude are anchored regular expressions narrowing the
// candidate file list; everything else under the checker's mapping is an
// opaque options blob handed to the checker's factory.
type CheckerSpec struct {
	Name    string
	Include []string
	Exclude []string
	Options map[string]any
}

// CacheConfig configures the clean-verdict cache.
type CacheConfig struct {
	// Enabled turns the cache on.
	Enabled bool `yaml:"enabled"`

	// Path is the cache database location.
	Path string `yaml:"path"`
}

// Config represents relint configuration options.
type Config struct {
	// Checkers is the ordered roster; checkers run in document order.
	Checkers []CheckerSpec

	// MaxConcurrency bounds the per-file worker pool
	// (0 = twice the number of CPUs).
	MaxConcurrency int

	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string

	// Cache configures the clean-verdict cache.
	Cache CacheConfig
}

// DefaultConfig returns a Config with sensible default values and an empty
// roster.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 0, // Auto: 2 x NumCPU, resolved by the engine
		LogLevel:       "info",
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".relint/cache.db",
		},
	}
}

// rawConfig mirrors the YAML document. The roster is kept as a yaml.Node so
// mapping order can be preserved; Go maps would lose it.
type rawConfig struct {
	Checkers       yaml.Node    `yaml:"checkers"`
	MaxConcurrency int          `yaml:"max_concurrency"`
	LogLevel       string       `yaml:"log_level"`
	Cache          *CacheConfig `yaml:"cache"`
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields defaults without error; a malformed file is an
// error (the caller treats it as fatal, before any checker runs).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if raw.MaxConcurrency != 0 {
		cfg.MaxConcurrency = raw.MaxConcurrency
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.Cache != nil {
		cfg.Cache.Enabled = raw.Cache.Enabled
		if raw.Cache.Path != "" {
			cfg.Cache.Path = raw.Cache.Path
		}
	}

	roster, err := decodeRoster(&raw.Checkers)
	if err != nil {
		return nil, err
	}
	cfg.Checkers = roster

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .relint/config.yaml in the
// specified directory, falling back to defaults when absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".relint", "config.yaml"))
}

// decodeRoster decodes the ordered `checkers:` mapping into CheckerSpecs.
// Include and exclude are reserved keys; every other key under a checker
// becomes part of its options blob.
func decodeRoster(node *yaml.Node) ([]CheckerSpec, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("checkers section must be a mapping of checker names")
	}

	var roster []CheckerSpec
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value

		var patterns struct {
			Include []string `yaml:"include"`
			Exclude []string `yaml:"exclude"`
		}
		if err := valNode.Decode(&patterns); err != nil {
			return nil, fmt.Errorf("failed to parse checker %q: %w", name, err)
		}

		options := make(map[string]any)
		if err := valNode.Decode(&options); err != nil {
			return nil, fmt.Errorf("failed to parse checker %q options: %w", name, err)
		}
		delete(options, "include")
		delete(options, "exclude")
		if len(options) == 0 {
			options = nil
		}

		roster = append(roster, CheckerSpec{
			Name:    name,
			Include: patterns.Include,
			Exclude: patterns.Exclude,
			Options: options,
		})
	}
	return roster, nil
}

// MergeWithFlags merges CLI flags into the configuration. Non-nil flag
// values override configuration values.
func (c *Config) MergeWithFlags(maxConcurrency *int, logLevel *string) {
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

// Validate validates the configuration values, including that every filter
// pattern compiles. Returns an error if any value is invalid.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path cannot be empty when the cache is enabled")
	}

	for _, spec := range c.Checkers {
		if spec.Name == "" {
			return fmt.Errorf("checker with empty name in checkers section")
		}
		for _, p := range append(append([]string{}, spec.Include...), spec.Exclude...) {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("checker %q: invalid pattern %q: %w", spec.Name, p, err)
			}
		}
	}

	return nil
}
