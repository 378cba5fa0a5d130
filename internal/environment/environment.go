// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrInvalidEnvName is the sentinel error wrapped by InvalidEnvNameError.
	ErrInvalidEnvName = errors.New("invalid environment name")

	// ErrReleased is returned when an operation is attempted on an
	// environment handle that has already been released.
	ErrReleased = errors.New("environment already released")
)

type (
	// EnvName identifies an isolated environment under the environments
	// root. A valid name is non-empty, has no whitespace, and contains no
	// path separators (names address direct children of the root only).
	EnvName string

	// InvalidEnvNameError is returned when an EnvName value is malformed.
	// It wraps ErrInvalidEnvName for errors.Is() compatibility.
	InvalidEnvNameError struct {
		Value  EnvName
		Reason string
	}

	// Environment is an activated isolated dependency scope. Instances
	// are created by a Manager's Resolve and must be passed back to the
	// same Manager's Release exactly once.
	Environment struct {
		// Name is the environment's identifier.
		Name EnvName
		// Root is the environment's directory on disk.
		Root string

		// lock is the cross-process activation lock, held from Resolve
		// until Release.
		lock *activationLock
		// released flips when the manager releases the handle.
		released bool
	}
)

// String returns the string representation of the EnvName.
func (n EnvName) String() string { return string(n) }

// IsValid returns whether the EnvName is valid.
func (n EnvName) IsValid() (bool, []error) {
	s := string(n)
	switch {
	case strings.TrimSpace(s) == "":
		return false, []error{&InvalidEnvNameError{Value: n, Reason: "must be non-empty"}}
	case strings.ContainsAny(s, " \t"):
		return false, []error{&InvalidEnvNameError{Value: n, Reason: "must not contain whitespace"}}
	case strings.ContainsRune(s, '/') || strings.ContainsRune(s, filepath.Separator):
		return false, []error{&InvalidEnvNameError{Value: n, Reason: "must not contain path separators"}}
	case s == "." || s == "..":
		return false, []error{&InvalidEnvNameError{Value: n, Reason: "must not be a relative path element"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvNameError.
func (e *InvalidEnvNameError) Error() string {
	return fmt.Sprintf("invalid environment name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidEnvName for errors.Is() compatibility.
func (e *InvalidEnvNameError) Unwrap() error { return ErrInvalidEnvName }

// BinDir returns the environment's executable directory
// ("Scripts" on Windows, "bin" elsewhere).
func (e *Environment) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Root, "Scripts")
	}
	return filepath.Join(e.Root, "bin")
}

// Interpreter returns the path to the environment's Python interpreter.
func (e *Environment) Interpreter() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.BinDir(), "python.exe")
	}
	return filepath.Join(e.BinDir(), "python")
}

// Active returns whether the handle is still activated (not yet released).
func (e *Environment) Active() bool { return !e.released }

// Environ returns base with the environment activated on top of it:
// VIRTUAL_ENV set to the environment root, the bin directory prepended
// to PATH, and PYTHONHOME removed. This is what `bin/activate` exports,
// minus the shell prompt cosmetics.
func (e *Environment) Environ(base []string) []string {
	env := make([]string, 0, len(base)+2)
	pathSeen := false

	for _, kv := range base {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			// Malformed entry, keep it
			env = append(env, kv)
			continue
		}
		switch {
		case name == "PYTHONHOME":
			continue
		case name == "VIRTUAL_ENV":
			continue
		case isPathVar(name):
			pathSeen = true
			env = append(env, name+"="+e.BinDir()+string(filepath.ListSeparator)+value)
		default:
			env = append(env, kv)
		}
	}

	if !pathSeen {
		env = append(env, "PATH="+e.BinDir())
	}
	env = append(env, "VIRTUAL_ENV="+e.Root)

	return env
}

// isPathVar reports whether name is the PATH variable. Windows
// environment variable names are case-insensitive.
func isPathVar(name string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(name, "Path")
	}
	return name == "PATH"
}
