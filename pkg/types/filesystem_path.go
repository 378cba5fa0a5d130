// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a manifest, working-directory, or environments
	// location as configured - absolute or relative, unresolved. It
	// rejects the empty string early so "" never reaches os.Open as
	// the current directory by accident.
	FilesystemPath string

	// InvalidFilesystemPathError reports an empty or whitespace-only path.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// IsValid reports whether the path names anything at all. Existence is
// not checked here; the consuming operation owes its own stat.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// String returns the path as configured, without cleaning.
func (p FilesystemPath) String() string { return string(p) }

// Error implements the error interface.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath so callers can use errors.Is.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
