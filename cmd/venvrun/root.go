// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"venvrun/internal/config"
	"venvrun/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging and full error chains.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	// loadedCfg caches the configuration loaded during initialization.
	loadedCfg *config.Config

	// rootCmd represents the base command. The root command IS the
	// launcher: venvrun's own flags live in the --venvrun- namespace and
	// are read only from the front of argv (see splitLaunchArgs); the
	// first token that is not one of them starts the program's argv,
	// which is forwarded verbatim and in order - flags included.
	rootCmd = &cobra.Command{
		Use:   "venvrun [venvrun flags] [--] [program arguments...]",
		Short: "Run a maintenance program inside a managed virtual environment",
		Long: TitleStyle.Render("venvrun") + SubtitleStyle.Render(" - isolated environment launcher") + `

venvrun activates a named Python virtual environment, synchronizes its
installed packages against a requirements manifest, runs the configured
program inside it with your arguments forwarded unchanged, and releases
the environment afterwards - also when synchronization or the program
fails.

Which environment, manifest, and program to use comes from the venvrun
config file or from the --venvrun-* flags; none of it is inferred from
the forwarded arguments. Anything that is not a leading --venvrun-*
flag belongs to the program, so its own flags pass through untouched.

` + SubtitleStyle.Render("Examples:") + `
  venvrun                            Run the configured program
  venvrun --venvrun-dry-run          Resolve and show the plan, change nothing
  venvrun --verbose --full           Forwarded to the program untouched
  venvrun -- --venvrun-env x         Forward even venvrun-looking flags
  venvrun config show                Show the resolved configuration`,
		Args: cobra.ArbitraryArgs,
		RunE: runLaunch,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Execute inserts "--" between venvrun's flags and the program
	// argv, so nothing after it is parsed as flags here.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().BoolVar(&verbose, "venvrun-verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "venvrun-config", "", "config file (default is <config-dir>/venvrun/config.cue)")

	rootCmd.Flags().StringVar(&flagEnv, "venvrun-env", "", "environment name (overrides config)")
	rootCmd.Flags().StringVar(&flagManifest, "venvrun-manifest", "", "dependency manifest path (overrides config)")
	rootCmd.Flags().StringVar(&flagProgram, "venvrun-program", "", "program to run inside the environment (overrides config)")
	rootCmd.Flags().StringVar(&flagWorkDir, "venvrun-workdir", "", "working directory for the program (overrides config)")
	rootCmd.Flags().BoolVar(&flagDryRun, "venvrun-dry-run", false, "resolve the environment and show the plan without syncing or running")

	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Split argv before the framework sees it: only a leading run of
	// --venvrun-* flags is venvrun's; everything else is the program's
	// and goes behind an inserted "--" so it is never parsed as flags.
	own, program, direct := splitLaunchArgs(os.Args[1:])
	if direct {
		rootCmd.SetArgs(own)
	} else {
		cobraArgs := append([]string{}, own...)
		cobraArgs = append(cobraArgs, "--")
		cobraArgs = append(cobraArgs, program...)
		rootCmd.SetArgs(cobraArgs)
	}

	// fang.Execute for enhanced Cobra styling; version goes through
	// fang.WithVersion since fang overrides rootCmd.Version.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads the config file and applies UI settings.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		// Surface config loading errors; the run itself will fail again
		// with a proper exit code if configuration is required.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}
	loadedCfg = cfg

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
