package explore

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jdziat/packaging-lines/pkg/security"
)

// Config holds explorer settings.
type Config struct {
	// Concurrency is the number of candidates explored at once.
	// Default: GOMAXPROCS
	Concurrency int `yaml:"concurrency"`

	// Verify runs Plan.Verify on every candidate that returns without error.
	Verify bool `yaml:"verify"`

	// StopOnError skips the remaining candidates after the first failure.
	StopOnError bool `yaml:"stop_on_error"`

	// CandidateTimeout bounds each candidate's context. Zero means no limit.
	CandidateTimeout time.Duration `yaml:"candidate_timeout"`
}

// DefaultConfig returns the default explorer configuration.
func DefaultConfig() Config {
	return Config{Concurrency: runtime.GOMAXPROCS(0)}
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("explore: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("explore: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}
}

// validate checks that all fields are in range.
func (c *Config) validate() error {
	var errs []string
	if c.Concurrency < 0 {
		errs = append(errs, "concurrency must not be negative")
	}
	if c.Concurrency > security.MaxConcurrency {
		errs = append(errs, fmt.Sprintf("concurrency must be at most %d", security.MaxConcurrency))
	}
	if c.CandidateTimeout < 0 {
		errs = append(errs, "candidate_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("explore: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
