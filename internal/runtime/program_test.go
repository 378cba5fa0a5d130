// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"venvrun/internal/environment"
)

// writeEnvWithProgram creates a fake environment whose bin directory
// contains a shell script named program with the given body.
func writeEnvWithProgram(t *testing.T, program, body string) *environment.Environment {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub programs require a POSIX shell")
	}

	envRoot := filepath.Join(t.TempDir(), "plex")
	binDir := filepath.Join(envRoot, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, program), []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return &environment.Environment{Name: "plex", Root: envRoot}
}

func TestExecuteForwardsArgumentsVerbatim(t *testing.T) {
	t.Parallel()

	env := writeEnvWithProgram(t, "refresh-plex", `printf '%s\n' "$@"`)

	var stdout bytes.Buffer
	ctx := NewExecutionContext(context.Background(), env, "refresh-plex", []string{"--dry-run", "-c", "config with spaces.yaml", "--", "-x"})
	ctx.Stdout = &stdout

	result := NewProgramRuntime().Execute(ctx)
	if !result.Success() {
		t.Fatalf("Execute() = %+v, want success", result)
	}

	want := "--dry-run\n-c\nconfig with spaces.yaml\n--\n-x\n"
	if stdout.String() != want {
		t.Errorf("program observed args:\n%q\nwant:\n%q", stdout.String(), want)
	}
}

func TestExecutePropagatesExitCode(t *testing.T) {
	t.Parallel()

	env := writeEnvWithProgram(t, "refresh-plex", "exit 2")

	ctx := NewExecutionContext(context.Background(), env, "refresh-plex", nil)
	result := NewProgramRuntime().Execute(ctx)

	if result.Error != nil {
		t.Fatalf("Execute() error = %v, want nil (nonzero exit is data, not error)", result.Error)
	}
	if result.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", result.ExitCode)
	}
}

func TestExecuteMapsSignalDeathToShellConvention(t *testing.T) {
	t.Parallel()

	// The script terminates itself with SIGTERM; the wait status then
	// carries no ordinary exit code and must surface as 128+15.
	env := writeEnvWithProgram(t, "refresh-plex", "kill -TERM $$")

	ctx := NewExecutionContext(context.Background(), env, "refresh-plex", nil)
	result := NewProgramRuntime().Execute(ctx)

	if result.Error != nil {
		t.Fatalf("Execute() error = %v, want nil (signal death is an outcome, not a launch failure)", result.Error)
	}
	if result.ExitCode != 143 {
		t.Errorf("ExitCode = %d, want 143 (128+SIGTERM)", result.ExitCode)
	}
}

func TestExecuteRunsInsideEnvironment(t *testing.T) {
	t.Parallel()

	env := writeEnvWithProgram(t, "refresh-plex", `printf '%s\n' "$VIRTUAL_ENV"`)

	var stdout bytes.Buffer
	ctx := NewExecutionContext(context.Background(), env, "refresh-plex", nil)
	ctx.Stdout = &stdout

	if result := NewProgramRuntime().Execute(ctx); !result.Success() {
		t.Fatalf("Execute() = %+v, want success", result)
	}
	if got := stdout.String(); got != env.Root+"\n" {
		t.Errorf("VIRTUAL_ENV seen by program = %q, want %q", got, env.Root)
	}
}

func TestExecuteMissingProgramIsLaunchError(t *testing.T) {
	t.Parallel()

	env := writeEnvWithProgram(t, "something-else", "exit 0")

	ctx := NewExecutionContext(context.Background(), env, "venvrun-test-definitely-not-installed", nil)
	result := NewProgramRuntime().Execute(ctx)

	if result.Error == nil {
		t.Fatal("Execute() succeeded for a missing program")
	}
	if !errors.Is(result.Error, ErrProgramLaunch) {
		t.Errorf("error does not wrap ErrProgramLaunch: %v", result.Error)
	}

	var launchErr *LaunchError
	if !errors.As(result.Error, &launchErr) {
		t.Fatalf("error is not *LaunchError: %v", result.Error)
	}
	if launchErr.Program != "venvrun-test-definitely-not-installed" {
		t.Errorf("LaunchError.Program = %q", launchErr.Program)
	}
}

func TestExecuteEmptyProgramIsLaunchError(t *testing.T) {
	t.Parallel()

	env := &environment.Environment{Name: "plex", Root: t.TempDir()}

	ctx := NewExecutionContext(context.Background(), env, "  ", nil)
	if result := NewProgramRuntime().Execute(ctx); !errors.Is(result.Error, ErrProgramLaunch) {
		t.Errorf("error does not wrap ErrProgramLaunch: %v", result.Error)
	}
}

func TestExecutePrefersEnvironmentBinDir(t *testing.T) {
	t.Parallel()

	// `sh` exists on the system PATH; the environment's own `sh` must win.
	env := writeEnvWithProgram(t, "sh", "echo from-env")

	var stdout bytes.Buffer
	ctx := NewExecutionContext(context.Background(), env, "sh", nil)
	ctx.Stdout = &stdout

	if result := NewProgramRuntime().Execute(ctx); !result.Success() {
		t.Fatalf("Execute() = %+v, want success", result)
	}
	if stdout.String() != "from-env\n" {
		t.Errorf("resolved program output = %q, want %q", stdout.String(), "from-env\n")
	}
}

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{name: "zero exit", result: Result{ExitCode: 0}, want: true},
		{name: "nonzero exit", result: Result{ExitCode: 2}, want: false},
		{name: "launch error", result: Result{ExitCode: -1, Error: errors.New("x")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.result.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}
