// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"venvrun/internal/config"
	"venvrun/internal/depsync"
	"venvrun/internal/environment"
	"venvrun/internal/issue"
	"venvrun/internal/launcher"
	"venvrun/internal/runtime"
	"venvrun/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagEnv      string
	flagManifest string
	flagProgram  string
	flagWorkDir  string
	flagDryRun   bool
)

// runLaunch resolves the effective launch settings, builds the launcher,
// and maps its outcome to the process exit code.
func runLaunch(cmd *cobra.Command, args []string) error {
	cfg := loadedCfg
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return reportFailure(cmd, launcher.ExitCodeConfig, err)
		}
	}

	opts := launchOptions(cfg, args)
	if opts.EnvName == "" {
		err := issue.NewErrorContext().
			WithOperation("determine environment").
			WithResource("launch settings").
			WithSuggestion("Pass --venvrun-env <name> or set 'environment' in the config file").
			Wrap(fmt.Errorf("no environment name configured")).
			BuildError()
		return reportFailure(cmd, launcher.ExitCodeEnvResolution, err)
	}
	if opts.Program == "" {
		err := issue.NewErrorContext().
			WithOperation("determine program").
			WithResource("launch settings").
			WithSuggestion("Pass --venvrun-program <name> or set 'program' in the config file").
			Wrap(fmt.Errorf("no program configured")).
			BuildError()
		return reportFailure(cmd, launcher.ExitCodeProgramLaunch, err)
	}

	logger := newLogger()

	extraArgs, err := cfg.Pip.ExtraArgsList()
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("parse pip extra arguments").
			WithResource(cfg.Pip.ExtraArgs).
			WithSuggestion("Check the 'pip.extra_args' value in the config file for unbalanced quotes").
			Wrap(err).
			BuildError()
		return reportFailure(cmd, launcher.ExitCodeConfig, err)
	}

	l := launcher.New(
		environment.NewVenvManager(cfg.EnvironmentsDir),
		depsync.NewPipSynchronizer(extraArgs, cfg.Pip.Quiet && !verbose),
		runtime.NewProgramRuntime(),
		logger,
	)

	code, runErr := l.Run(cmd.Context(), opts)
	if runErr != nil {
		return reportFailure(cmd, code, runErr)
	}
	if code != 0 {
		// The program ran and exited nonzero; its exit code is the
		// outcome, not an error of ours. Propagate it silently.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: code}
	}
	return nil
}

// launchOptions merges flags over configuration. Flags win; args are
// forwarded to the program exactly as given, never interpreted.
func launchOptions(cfg *config.Config, args []string) launcher.Options {
	opts := launcher.Options{
		EnvName:      environment.EnvName(cfg.Environment),
		ManifestPath: cfg.Manifest,
		Program:      cfg.Program,
		WorkDir:      cfg.WorkDir,
		Args:         args,
		DryRun:       flagDryRun,
	}
	if flagEnv != "" {
		opts.EnvName = environment.EnvName(flagEnv)
	}
	if flagManifest != "" {
		opts.ManifestPath = flagManifest
	}
	if flagProgram != "" {
		opts.Program = flagProgram
	}
	if flagWorkDir != "" {
		opts.WorkDir = flagWorkDir
	}
	return opts
}

// newLogger builds the launcher's logger. Debug output is gated on
// verbose mode; timestamps are omitted since runs are short-lived.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "venvrun",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// reportFailure prints a formatted error once and returns an ExitError
// carrying the launcher's exit code. Cobra's own error printing is
// silenced so the message is not duplicated.
func reportFailure(cmd *cobra.Command, code types.ExitCode, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: code, Err: err}
}
