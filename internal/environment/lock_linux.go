// SPDX-License-Identifier: MPL-2.0

//go:build linux

package environment

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockFileName is the well-known activation lock file inside an
// environment root. The zero-byte file is harmless if orphaned — the
// kernel releases the flock automatically when the fd is closed,
// including on process crash.
const lockFileName = ".venvrun.lock"

// activationLock holds a non-blocking exclusive flock on a well-known
// file inside the environment root, serializing activation across
// processes. A second venvrun targeting the same environment fails to
// resolve instead of racing the first run's package synchronization.
type activationLock struct {
	file *os.File
}

// acquireActivationLock opens (or creates) the lock file inside envRoot
// and acquires an exclusive flock without blocking. A held lock yields
// ErrEnvBusy.
func acquireActivationLock(envRoot string) (*activationLock, error) {
	lockPath := filepath.Join(envRoot, lockFileName)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrEnvBusy
		}
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &activationLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. It is safe
// to call multiple times — subsequent calls are no-ops.
func (l *activationLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
