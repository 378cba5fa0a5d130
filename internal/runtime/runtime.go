// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"venvrun/internal/environment"
)

// ErrProgramLaunch is the sentinel error wrapped by LaunchError.
var ErrProgramLaunch = errors.New("program could not be started")

type (
	// ExecutionContext contains all information needed to run the target
	// program once.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Environment is the activated environment to run inside.
		Environment *environment.Environment
		// Program is the program to execute, either a bare name (resolved
		// against the environment's bin directory first) or a path.
		Program string
		// Args are the caller-supplied arguments, forwarded verbatim and
		// in order. Never inspected or mutated.
		Args []string
		// WorkDir overrides the working directory when non-empty.
		WorkDir string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
	}

	// Result contains the result of a program execution.
	Result struct {
		// ExitCode is the exit code of the program.
		ExitCode int
		// Error contains any launcher-level error. A started program's
		// nonzero exit code is not an error; it lives in ExitCode only.
		Error error
	}

	// Runtime runs a program inside an environment.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Execute runs the program described by the execution context.
		Execute(ctx *ExecutionContext) *Result
	}

	// LaunchError is returned when the target program could not be
	// started at all (not found, not executable, bad working directory).
	// It wraps ErrProgramLaunch for errors.Is() compatibility.
	LaunchError struct {
		Program string
		Cause   error
	}
)

// NewExecutionContext creates an execution context with the launcher's
// own standard streams.
func NewExecutionContext(ctx context.Context, env *environment.Environment, program string, args []string) *ExecutionContext {
	return &ExecutionContext{
		Context:     ctx,
		Environment: env,
		Program:     program,
		Args:        args,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
	}
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start program %q: %v", e.Program, e.Cause)
}

// Unwrap returns ErrProgramLaunch so callers can use errors.Is; the
// original cause remains reachable through the message.
func (e *LaunchError) Unwrap() error { return ErrProgramLaunch }

// Success returns true if the program executed and exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}
