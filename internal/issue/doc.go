// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors carry the operation that failed, the resource involved, and
// remediation suggestions, so CLI failures tell the user what to do next
// instead of only what went wrong.
package issue
