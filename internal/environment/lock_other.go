// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package environment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// lockFileName is the well-known activation lock file inside an
// environment root.
const lockFileName = ".venvrun.lock"

// activationLock is the portable fallback: an O_EXCL-created lock file
// inside the environment root. Unlike the Linux flock variant it does
// not self-heal after a crash — a stale lock file must be removed by
// hand, which Release's error message points at.
type activationLock struct {
	path string
}

// acquireActivationLock creates the lock file exclusively. An existing
// file means another process holds the activation and yields ErrEnvBusy.
func acquireActivationLock(envRoot string) (*activationLock, error) {
	lockPath := filepath.Join(envRoot, lockFileName)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (stale lock? remove %s)", ErrEnvBusy, lockPath)
		}
		return nil, fmt.Errorf("create lock file %s: %w", lockPath, err)
	}
	if err := f.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}

	return &activationLock{path: lockPath}, nil
}

// Release removes the lock file. It is safe to call multiple times —
// subsequent calls are no-ops.
func (l *activationLock) Release() {
	if l == nil || l.path == "" {
		return
	}
	if err := os.Remove(l.path); err != nil {
		slog.Debug("lock file remove failed", "error", err)
	}
	l.path = ""
}
