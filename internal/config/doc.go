// SPDX-License-Identifier: MPL-2.0

// Package config loads the venvrun configuration: a CUE file validated
// against an embedded schema and merged into viper on top of defaults.
// Configuration only selects what to run (environments root, default
// environment, manifest, program); everything after the first program
// argument on the command line bypasses it entirely.
package config
