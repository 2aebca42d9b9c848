// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"upack-cli/pkg/types"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Config is the root configuration for upack.
	Config struct {
		// EngineBaseDir overrides the platform default engine install
		// location. Empty means "use the platform default".
		EngineBaseDir string `mapstructure:"engine_base_dir" toml:"engine_base_dir"`

		// OutputDir is where archives are written. Empty means the
		// current directory.
		OutputDir string `mapstructure:"output_dir" toml:"output_dir"`

		// DefaultVersions are the engine versions packaged when none are
		// given on the command line.
		DefaultVersions []types.EngineVersion `mapstructure:"default_versions" toml:"default_versions"`

		// UI holds user interface preferences.
		UI UIConfig `mapstructure:"ui" toml:"ui"`
	}

	// UIConfig holds user interface preferences.
	UIConfig struct {
		// Verbose enables detailed output.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no config file exists.
// The version list covers the engine releases the marketplace accepts
// submissions for.
func DefaultConfig() *Config {
	return &Config{
		DefaultVersions: []types.EngineVersion{
			"4.27", "5.0", "5.1", "5.2", "5.3", "5.4", "5.5",
		},
	}
}

// IsValid returns whether every configured engine version parses.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for _, v := range c.DefaultVersions {
		if ok, vErrs := v.IsValid(); !ok {
			errs = append(errs, vErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
