// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"venvrun/internal/environment"
	"venvrun/internal/manifest"
)

// ErrSyncFailed is the sentinel error wrapped by SyncError.
var ErrSyncFailed = errors.New("dependency synchronization failed")

type (
	// Synchronizer installs or updates packages in an activated
	// environment so the installed set matches the manifest.
	Synchronizer interface {
		Sync(ctx context.Context, env *environment.Environment, m *manifest.Manifest) error
	}

	// PipSynchronizer shells out to the environment's own pip
	// (`python -m pip install --requirement <manifest>`). Network
	// failures, unresolvable constraints, and tool failures all surface
	// as pip exit codes; retries are pip's business, not ours.
	PipSynchronizer struct {
		// ExtraArgs are appended to the pip invocation (e.g. index
		// options from the launcher config).
		ExtraArgs []string
		// Quiet passes --quiet to pip, keeping routine runs silent.
		Quiet bool
		// Stdout and Stderr receive pip's output. Nil writers default
		// to the launcher's own streams.
		Stdout io.Writer
		Stderr io.Writer
	}

	// SyncError is returned when the installation tool ran but failed.
	// It wraps ErrSyncFailed and records the tool's exit code.
	SyncError struct {
		ExitCode int
		Cause    error
	}
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v (pip exit code %d)", e.Cause, e.ExitCode)
	}
	return fmt.Sprintf("pip exited with code %d", e.ExitCode)
}

// Unwrap returns ErrSyncFailed for errors.Is() compatibility.
func (e *SyncError) Unwrap() error { return ErrSyncFailed }

// NewPipSynchronizer creates a PipSynchronizer writing tool output to
// the launcher's own streams.
func NewPipSynchronizer(extraArgs []string, quiet bool) *PipSynchronizer {
	return &PipSynchronizer{
		ExtraArgs: extraArgs,
		Quiet:     quiet,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Sync runs pip inside env against the manifest. An empty manifest is a
// no-op: there is nothing to reconcile, and skipping the subprocess
// keeps the empty case fast and dependency-free.
func (s *PipSynchronizer) Sync(ctx context.Context, env *environment.Environment, m *manifest.Manifest) error {
	if m.IsEmpty() {
		return nil
	}

	manifestPath := m.Path
	if manifestPath == "" {
		path, cleanup, err := materialize(m)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
		defer cleanup()
		manifestPath = path
	}

	args := s.pipArgs(manifestPath)
	cmd := exec.CommandContext(ctx, env.Interpreter(), args...)
	cmd.Env = env.Environ(os.Environ())
	cmd.Stdout = s.stdout()
	cmd.Stderr = s.stderr()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &SyncError{ExitCode: exitErr.ExitCode()}
		}
		return &SyncError{ExitCode: -1, Cause: err}
	}

	return nil
}

// pipArgs builds the pip argv (after the interpreter).
func (s *PipSynchronizer) pipArgs(manifestPath string) []string {
	args := []string{"-m", "pip", "install", "--requirement", manifestPath}
	if s.Quiet {
		args = append(args, "--quiet")
	}
	return append(args, s.ExtraArgs...)
}

func (s *PipSynchronizer) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

func (s *PipSynchronizer) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}

// materialize writes an in-memory manifest to a temp file so pip can
// read it, returning the path and a cleanup function.
func materialize(m *manifest.Manifest) (string, func(), error) {
	f, err := os.CreateTemp("", "venvrun-requirements-*.txt")
	if err != nil {
		return "", nil, fmt.Errorf("create temp manifest: %w", err)
	}

	for _, spec := range m.Specifiers {
		if _, err := fmt.Fprintln(f, spec.String()); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", nil, fmt.Errorf("write temp manifest: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", nil, fmt.Errorf("close temp manifest: %w", err)
	}

	path := f.Name()
	return path, func() { _ = os.Remove(path) }, nil
}
