// Package config loads extraction settings from a YAML file
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/manuel1618/mpcforces-extractor/internal/combine"
)

// Config holds the settings of one extraction run. Paths are used as given.
type Config struct {
	BlockSize int    `yaml:"block_size"`
	Model     string `yaml:"model"`
	MPCForces string `yaml:"mpc_forces,omitempty"`
	SPCForces string `yaml:"spc_forces,omitempty"`
	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`
	// MetricsFile, when set, receives the run metrics in text exposition format
	MetricsFile  string                    `yaml:"metrics_file,omitempty"`
	Combinations []combine.LoadCombination `yaml:"combinations,omitempty"`
}

// Defaults returns a config with the default block size, output dir and log
// level and no input files
func Defaults() Config {
	return Config{
		BlockSize: 8,
		OutputDir: "output",
		LogLevel:  "info",
	}
}

// LoadFromFile reads a YAML config on top of Defaults
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting. The returned error combines one
// *ValidationError per problem.
func (c *Config) Validate() error {
	var err error
	if c.Model == "" {
		err = multierr.Append(err, &ValidationError{Field: "model", msg: "a model file is required"})
	}
	if c.BlockSize <= 0 {
		err = multierr.Append(err, &ValidationError{Field: "block_size", msg: fmt.Sprintf("must be positive, got %d", c.BlockSize)})
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, &ValidationError{Field: "log_level", msg: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}
	if c.OutputDir == "" {
		err = multierr.Append(err, &ValidationError{Field: "output_dir", msg: "must not be empty"})
	}
	for i, lc := range c.Combinations {
		if lc.ID == "" {
			err = multierr.Append(err, &ValidationError{Field: fmt.Sprintf("combinations[%d].id", i), msg: "must not be empty"})
		}
	}
	return err
}

// ValidationError represents an invalid config setting
type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.msg
}

// IsValidationError reports whether err holds at least one ValidationError
func IsValidationError(err error) bool {
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			return true
		}
	}
	return false
}
