// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"venvrun/pkg/types"
)

// ExitError carries an exit code from a RunE handler out to Execute,
// which turns it into the process exit status. A nil Err means the
// code IS the outcome - a propagated program exit, nothing of
// venvrun's own to report.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying launcher error, if any, to errors.Is/As.
func (e *ExitError) Unwrap() error { return e.Err }
