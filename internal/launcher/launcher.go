// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"fmt"
	"io"
	"os"

	"venvrun/internal/depsync"
	"venvrun/internal/environment"
	"venvrun/internal/issue"
	"venvrun/internal/manifest"
	"venvrun/internal/runtime"
	"venvrun/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Launcher-reserved exit codes. They sit above the low codes maintenance
// programs commonly use and below the shell's 126/127 conventions, so a
// caller can always tell a launcher failure from a program outcome.
const (
	// ExitCodeEnvResolution is returned when the environment cannot be
	// located or activated.
	ExitCodeEnvResolution types.ExitCode = 101
	// ExitCodeDependencySync is returned when package synchronization fails.
	ExitCodeDependencySync types.ExitCode = 102
	// ExitCodeProgramLaunch is returned when the program cannot be started.
	ExitCodeProgramLaunch types.ExitCode = 103
	// ExitCodeConfig is returned when the launcher's own configuration
	// cannot be loaded or parsed, before any environment is touched.
	ExitCodeConfig types.ExitCode = 104
)

type (
	// Options describes a single run.
	Options struct {
		// EnvName is the isolated environment to activate.
		EnvName environment.EnvName
		// ManifestPath is the dependency manifest to synchronize against.
		ManifestPath string
		// Program is the target program to invoke inside the environment.
		Program string
		// Args are the caller's arguments, forwarded verbatim and in order.
		Args []string
		// WorkDir overrides the program's working directory when non-empty.
		WorkDir string
		// DryRun resolves the environment and reports the plan without
		// synchronizing or invoking. The environment is still released.
		DryRun bool
	}

	// Launcher sequences one maintenance run. All collaborators are
	// interfaces so the sequencing contract is testable in isolation.
	Launcher struct {
		// Manager resolves and releases environments.
		Manager environment.Manager
		// Synchronizer reconciles installed packages with the manifest.
		Synchronizer depsync.Synchronizer
		// Runtime invokes the target program.
		Runtime runtime.Runtime
		// Logger receives structured progress and teardown diagnostics.
		Logger *log.Logger
		// Out receives the dry-run plan. Defaults to os.Stdout.
		Out io.Writer
	}
)

// New creates a Launcher with the default production collaborators.
func New(mgr environment.Manager, sync depsync.Synchronizer, rt runtime.Runtime, logger *log.Logger) *Launcher {
	return &Launcher{
		Manager:      mgr,
		Synchronizer: sync,
		Runtime:      rt,
		Logger:       logger,
		Out:          os.Stdout,
	}
}

// Run executes the four-step sequence. The returned exit code is the
// launcher's own verdict: a reserved code for resolution, sync, or
// launch failures, otherwise the program's exit code verbatim. The
// returned error is nil whenever the program itself ran, regardless of
// its exit code.
func (l *Launcher) Run(ctx context.Context, opts Options) (types.ExitCode, error) {
	logger := l.logger().With("run_id", uuid.NewString(), "env", opts.EnvName)
	lc := newLifecycle()

	logger.Debug("resolving environment")
	env, err := l.Manager.Resolve(ctx, opts.EnvName)
	if err != nil {
		// Nothing was activated, so nothing is released.
		_ = lc.transition(StateTerminal)
		return ExitCodeEnvResolution, err
	}

	if err := lc.transition(StateEnvironmentActive); err != nil {
		return 1, err
	}

	// Release is owed from this point on, on every path out of Run.
	defer func() {
		logger.Debug("releasing environment")
		if relErr := l.Manager.Release(env); relErr != nil {
			logger.Error("environment release failed", "error", relErr)
		}
		_ = lc.transition(StateTerminal)
	}()

	if opts.DryRun {
		return 0, l.printPlan(env, opts)
	}

	logger.Debug("synchronizing dependencies", "manifest", opts.ManifestPath)
	if err := l.syncDependencies(ctx, env, opts.ManifestPath); err != nil {
		return ExitCodeDependencySync, err
	}

	if err := lc.transition(StateDependenciesSynced); err != nil {
		return 1, err
	}

	logger.Debug("invoking program", "program", opts.Program, "args", len(opts.Args))
	if err := lc.transition(StateProgramRunning); err != nil {
		return 1, err
	}

	execCtx := runtime.NewExecutionContext(ctx, env, opts.Program, opts.Args)
	execCtx.WorkDir = opts.WorkDir

	result := l.Runtime.Execute(execCtx)
	if result.Error != nil {
		return ExitCodeProgramLaunch, result.Error
	}

	logger.Debug("program finished", "exit_code", result.ExitCode)
	return types.ExitCode(result.ExitCode), nil
}

// syncDependencies loads the manifest and hands it to the synchronizer.
// Manifest read errors are sync failures: the environment is already
// active and will be released.
func (l *Launcher) syncDependencies(ctx context.Context, env *environment.Environment, manifestPath string) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("read manifest").
			WithResource(manifestPath).
			WithSuggestion("Check the manifest path in the venvrun config or --venvrun-manifest flag").
			Wrap(err).
			BuildError()
	}

	if err := l.Synchronizer.Sync(ctx, env, m); err != nil {
		return issue.NewErrorContext().
			WithOperation("synchronize dependencies").
			WithResource(manifestPath).
			WithSuggestion("Check network connectivity and the declared version constraints").
			Wrap(err).
			BuildError()
	}

	return nil
}

// printPlan reports what a real run would do, without side effects
// beyond the activation itself.
func (l *Launcher) printPlan(env *environment.Environment, opts Options) error {
	out := l.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "environment: %s (%s)\n", env.Name, env.Root)
	fmt.Fprintf(out, "manifest:    %s\n", opts.ManifestPath)

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		fmt.Fprintf(out, "             (unreadable: %v)\n", err)
	} else {
		for _, spec := range m.Specifiers {
			fmt.Fprintf(out, "  - %s\n", spec)
		}
	}

	fmt.Fprintf(out, "program:     %s\n", opts.Program)
	for _, arg := range opts.Args {
		fmt.Fprintf(out, "  arg: %s\n", arg)
	}
	return nil
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}
