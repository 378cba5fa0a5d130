// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for parsing and validating
// CUE configuration files: schema unification, user-facing error
// formatting with JSON-path prefixes, and input size guarding.
package cueutil
