// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// ProgramRuntime executes the target program as a subprocess with the
// environment activated in its environ.
type ProgramRuntime struct{}

// NewProgramRuntime creates a new ProgramRuntime.
func NewProgramRuntime() *ProgramRuntime {
	return &ProgramRuntime{}
}

// Name returns the runtime name.
func (r *ProgramRuntime) Name() string {
	return "subprocess"
}

// Execute runs the program with the caller's arguments forwarded
// unchanged. A program that starts and exits nonzero is a successful
// launch whose exit code is data; only a failure to start is an error.
func (r *ProgramRuntime) Execute(ctx *ExecutionContext) *Result {
	program, err := r.resolveProgram(ctx)
	if err != nil {
		return &Result{ExitCode: -1, Error: &LaunchError{Program: ctx.Program, Cause: err}}
	}

	cmd := exec.CommandContext(ctx.Context, program, ctx.Args...)
	cmd.Env = ctx.Environment.Environ(os.Environ())
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitCode: waitExitCode(exitErr)}
		}
		return &Result{ExitCode: -1, Error: &LaunchError{Program: ctx.Program, Cause: err}}
	}

	return &Result{ExitCode: 0}
}

// waitExitCode converts a finished process's wait status to a shell
// exit code. A signal death reports -1 through ExitCode(), so it is
// mapped to the conventional 128+signal; anything else negative clamps
// to 255 to stay inside the 0-255 range.
func waitExitCode(exitErr *exec.ExitError) int {
	code := exitErr.ExitCode()
	if code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 255
}

// resolveProgram turns the configured program into an executable path.
// Bare names prefer the environment's bin directory, so `python` or an
// entry-point script installed by sync resolve inside the environment
// before anything on the launcher's own PATH.
func (r *ProgramRuntime) resolveProgram(ctx *ExecutionContext) (string, error) {
	program := ctx.Program
	if strings.TrimSpace(program) == "" {
		return "", errors.New("no program configured")
	}

	if program != filepath.Base(program) {
		// Explicit path, use as-is; exec reports missing/non-executable.
		return program, nil
	}

	candidate := filepath.Join(ctx.Environment.BinDir(), program)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return "", err
	}
	return path, nil
}
