// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"venvrun/internal/issue"
)

var (
	// ErrEnvNotFound is returned when no environment exists under the
	// environments root with the requested name.
	ErrEnvNotFound = errors.New("environment not found")

	// ErrEnvCorrupted is returned when the environment directory exists
	// but is not a usable virtual environment.
	ErrEnvCorrupted = errors.New("environment corrupted")

	// ErrEnvBusy is returned when the environment's activation lock is
	// held by another process.
	ErrEnvBusy = errors.New("environment already active in another process")
)

type (
	// Manager resolves named environments into activated handles and
	// releases them. Implementations enforce that a handle is released
	// at most once.
	Manager interface {
		// Resolve locates and activates the named environment. On failure
		// no environment is considered active and no Release is owed.
		Resolve(ctx context.Context, name EnvName) (*Environment, error)
		// Release deactivates a previously resolved environment.
		// Releasing an already-released handle is an error.
		Release(env *Environment) error
	}

	// VenvManager resolves Python virtual environments that live as
	// direct children of a single environments root directory.
	VenvManager struct {
		// EnvsRoot is the directory containing the environments.
		EnvsRoot string
	}
)

// NewVenvManager creates a VenvManager rooted at envsRoot.
func NewVenvManager(envsRoot string) *VenvManager {
	return &VenvManager{EnvsRoot: envsRoot}
}

// Resolve locates the named environment under the environments root,
// verifies it is a usable virtual environment, and takes its activation
// lock. The context is consulted before filesystem work begins;
// resolution itself is fast and not cancelable mid-flight.
func (m *VenvManager) Resolve(ctx context.Context, name EnvName) (*Environment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve canceled: %w", err)
	}

	if isValid, errs := name.IsValid(); !isValid {
		return nil, errs[0]
	}

	root := filepath.Join(m.EnvsRoot, name.String())
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, issue.NewErrorContext().
				WithOperation("resolve environment").
				WithResource(root).
				WithSuggestion(fmt.Sprintf("Create it with 'python -m venv %s'", root)).
				WithSuggestion("Check the environments_dir setting in the venvrun config").
				Wrap(fmt.Errorf("%w: %s", ErrEnvNotFound, name)).
				BuildError()
		}
		return nil, fmt.Errorf("stat environment %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrEnvCorrupted, root)
	}

	env := &Environment{Name: name, Root: root}
	if err := m.validateLayout(env); err != nil {
		return nil, err
	}

	lock, err := acquireActivationLock(root)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("activate environment").
			WithResource(root).
			WithSuggestion("Wait for the other run to finish, then retry").
			Wrap(err).
			BuildError()
	}
	env.lock = lock

	return env, nil
}

// Release drops the activation lock and invalidates the handle.
func (m *VenvManager) Release(env *Environment) error {
	if env == nil {
		return fmt.Errorf("release: nil environment")
	}
	if env.released {
		return fmt.Errorf("release %s: %w", env.Name, ErrReleased)
	}
	env.released = true
	env.lock.Release()
	env.lock = nil
	return nil
}

// validateLayout checks that the directory is a virtual environment:
// pyvenv.cfg at the root and an executable interpreter in the bin dir.
func (m *VenvManager) validateLayout(env *Environment) error {
	cfgPath := filepath.Join(env.Root, "pyvenv.cfg")
	if _, err := os.Stat(cfgPath); err != nil {
		return issue.NewErrorContext().
			WithOperation("resolve environment").
			WithResource(env.Root).
			WithSuggestion("The directory exists but has no pyvenv.cfg; re-create the environment").
			Wrap(fmt.Errorf("%w: missing pyvenv.cfg", ErrEnvCorrupted)).
			BuildError()
	}

	if _, err := os.Stat(env.Interpreter()); err != nil {
		return issue.NewErrorContext().
			WithOperation("resolve environment").
			WithResource(env.Root).
			WithSuggestion("The environment has no interpreter; re-create it").
			Wrap(fmt.Errorf("%w: missing interpreter %s", ErrEnvCorrupted, env.Interpreter())).
			BuildError()
	}

	return nil
}
