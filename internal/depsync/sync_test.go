// SPDX-License-Identifier: MPL-2.0

package depsync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"venvrun/internal/environment"
	"venvrun/internal/manifest"
)

// writeStubEnv creates a fake virtual environment whose interpreter is
// a shell script that records its argv and environ, then exits with the
// given code.
func writeStubEnv(t *testing.T, exitCode string) (*environment.Environment, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter requires a POSIX shell")
	}

	root := t.TempDir()
	envRoot := filepath.Join(root, "plex")
	binDir := filepath.Join(envRoot, "bin")
	recordDir := t.TempDir()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envRoot, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + filepath.Join(recordDir, "args.txt") + "\n" +
		"env > " + filepath.Join(recordDir, "env.txt") + "\n" +
		"exit " + exitCode + "\n"
	if err := os.WriteFile(filepath.Join(binDir, "python"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	return &environment.Environment{Name: "plex", Root: envRoot}, recordDir
}

func readRecord(t *testing.T, recordDir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(recordDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestSyncInvokesPipWithManifest(t *testing.T) {
	t.Parallel()

	env, recordDir := writeStubEnv(t, "0")
	m := &manifest.Manifest{
		Path:       "/tmp/requirements.txt",
		Specifiers: []manifest.Specifier{{Name: "foo", Version: "1.0"}},
	}

	s := &PipSynchronizer{Stdout: os.Stdout, Stderr: os.Stderr}
	if err := s.Sync(context.Background(), env, m); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	args := readRecord(t, recordDir, "args.txt")
	for _, want := range []string{"-m", "pip", "install", "--requirement", "/tmp/requirements.txt"} {
		if !strings.Contains(args, want) {
			t.Errorf("pip argv missing %q:\n%s", want, args)
		}
	}

	environ := readRecord(t, recordDir, "env.txt")
	if !strings.Contains(environ, "VIRTUAL_ENV="+env.Root) {
		t.Errorf("pip did not run inside the environment:\n%s", environ)
	}
}

func TestSyncQuietAndExtraArgs(t *testing.T) {
	t.Parallel()

	env, recordDir := writeStubEnv(t, "0")
	m := &manifest.Manifest{
		Path:       "/tmp/requirements.txt",
		Specifiers: []manifest.Specifier{{Name: "foo"}},
	}

	s := &PipSynchronizer{Quiet: true, ExtraArgs: []string{"--no-cache-dir"}}
	if err := s.Sync(context.Background(), env, m); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	args := readRecord(t, recordDir, "args.txt")
	if !strings.Contains(args, "--quiet") {
		t.Errorf("pip argv missing --quiet:\n%s", args)
	}
	if !strings.Contains(args, "--no-cache-dir") {
		t.Errorf("pip argv missing extra arg:\n%s", args)
	}
}

func TestSyncFailureWrapsSyncError(t *testing.T) {
	t.Parallel()

	env, _ := writeStubEnv(t, "1")
	m := &manifest.Manifest{
		Path:       "/tmp/requirements.txt",
		Specifiers: []manifest.Specifier{{Name: "foo", Version: "99.99"}},
	}

	s := &PipSynchronizer{}
	err := s.Sync(context.Background(), env, m)
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("error does not wrap ErrSyncFailed: %v", err)
	}

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("error is not *SyncError: %v", err)
	}
	if syncErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", syncErr.ExitCode)
	}
}

func TestSyncMissingInterpreterWrapsSyncError(t *testing.T) {
	t.Parallel()

	env := &environment.Environment{Name: "ghost", Root: filepath.Join(t.TempDir(), "ghost")}
	m := &manifest.Manifest{
		Path:       "/tmp/requirements.txt",
		Specifiers: []manifest.Specifier{{Name: "foo"}},
	}

	s := &PipSynchronizer{}
	if err := s.Sync(context.Background(), env, m); !errors.Is(err, ErrSyncFailed) {
		t.Errorf("error does not wrap ErrSyncFailed: %v", err)
	}
}

func TestSyncEmptyManifestIsNoop(t *testing.T) {
	t.Parallel()

	// Interpreter does not even exist; an empty manifest must not exec it.
	env := &environment.Environment{Name: "ghost", Root: filepath.Join(t.TempDir(), "ghost")}

	s := &PipSynchronizer{}
	if err := s.Sync(context.Background(), env, &manifest.Manifest{}); err != nil {
		t.Errorf("Sync() on empty manifest = %v, want nil", err)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	t.Parallel()

	env, recordDir := writeStubEnv(t, "0")
	m := &manifest.Manifest{
		Path:       "/tmp/requirements.txt",
		Specifiers: []manifest.Specifier{{Name: "foo", Version: "1.0"}},
	}

	s := &PipSynchronizer{}
	if err := s.Sync(context.Background(), env, m); err != nil {
		t.Fatalf("first Sync() error: %v", err)
	}
	first := readRecord(t, recordDir, "args.txt")

	if err := s.Sync(context.Background(), env, m); err != nil {
		t.Fatalf("second Sync() error: %v", err)
	}
	second := readRecord(t, recordDir, "args.txt")

	// Both runs hand pip the identical reconciliation request; pip's
	// installer semantics make the second run a no-op on disk.
	if first != second {
		t.Errorf("second sync issued a different pip invocation:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestSyncMaterializesInMemoryManifest(t *testing.T) {
	t.Parallel()

	env, recordDir := writeStubEnv(t, "0")
	m := &manifest.Manifest{Specifiers: []manifest.Specifier{{Name: "foo", Version: "1.0"}}}

	s := &PipSynchronizer{}
	if err := s.Sync(context.Background(), env, m); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	args := strings.Fields(readRecord(t, recordDir, "args.txt"))
	var reqPath string
	for i, a := range args {
		if a == "--requirement" && i+1 < len(args) {
			reqPath = args[i+1]
		}
	}
	if reqPath == "" {
		t.Fatalf("pip argv has no --requirement path: %v", args)
	}
	if _, err := os.Stat(reqPath); !os.IsNotExist(err) {
		t.Errorf("temp manifest %s was not cleaned up", reqPath)
	}
}
