// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"

	"venvrun/internal/environment"
	"venvrun/pkg/types"

	"mvdan.cc/sh/v3/shell"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the resolved venvrun configuration.
	Config struct {
		// EnvironmentsDir is the directory containing the named
		// virtual environments.
		EnvironmentsDir string `mapstructure:"environments_dir" toml:"environments_dir"`

		// Environment is the default environment name.
		Environment string `mapstructure:"environment" toml:"environment"`

		// Manifest is the default dependency manifest path.
		Manifest string `mapstructure:"manifest" toml:"manifest"`

		// Program is the default program to invoke.
		Program string `mapstructure:"program" toml:"program"`

		// WorkDir is the program's working directory ("" = inherit).
		WorkDir string `mapstructure:"workdir" toml:"workdir"`

		// Pip configures the installation tool invocation.
		Pip PipConfig `mapstructure:"pip" toml:"pip"`

		// UI configures launcher output.
		UI UIConfig `mapstructure:"ui" toml:"ui"`
	}

	// PipConfig configures how pip is invoked during synchronization.
	PipConfig struct {
		// ExtraArgs are appended to the pip invocation. The value is
		// shell-quoted so paths with spaces survive.
		ExtraArgs string `mapstructure:"extra_args" toml:"extra_args"`

		// Quiet passes --quiet to pip.
		Quiet bool `mapstructure:"quiet" toml:"quiet"`
	}

	// UIConfig configures launcher output.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}

	// InvalidConfigError aggregates field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msg := "invalid config"
	for _, fe := range e.FieldErrors {
		msg += "\n  " + fe.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	envsDir := "venvs"
	if home, err := os.UserHomeDir(); err == nil {
		envsDir = filepath.Join(home, ".venvs")
	}

	return &Config{
		EnvironmentsDir: envsDir,
		Manifest:        "requirements.txt",
		Pip:             PipConfig{Quiet: true},
	}
}

// IsValid returns whether the Config's populated fields are valid.
// Zero-valued optional fields are not validated; required-at-run-time
// fields (environment, program) are checked at the CLI boundary where
// flags can still fill them.
func (c *Config) IsValid() (bool, []error) {
	var fieldErrs []error

	if isValid, errs := types.FilesystemPath(c.EnvironmentsDir).IsValid(); !isValid {
		fieldErrs = append(fieldErrs, errs...)
	}
	if isValid, errs := types.FilesystemPath(c.Manifest).IsValid(); !isValid {
		fieldErrs = append(fieldErrs, errs...)
	}
	if c.Environment != "" {
		if isValid, errs := environment.EnvName(c.Environment).IsValid(); !isValid {
			fieldErrs = append(fieldErrs, errs...)
		}
	}

	if len(fieldErrs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// ExtraArgsList splits the shell-quoted pip extra_args value into argv
// elements.
func (p PipConfig) ExtraArgsList() ([]string, error) {
	if p.ExtraArgs == "" {
		return nil, nil
	}
	return shell.Fields(p.ExtraArgs, nil)
}
