// SPDX-License-Identifier: MPL-2.0

// Package depsync reconciles an activated environment's installed
// packages with a dependency manifest. The actual installation work is
// delegated to pip running inside the environment, which makes the
// operation idempotent: synchronizing twice against the same manifest
// leaves the same installed set as synchronizing once.
package depsync
