// SPDX-License-Identifier: MPL-2.0

// Package launcher sequences a single maintenance run: resolve and
// activate the named environment, synchronize its installed packages
// against the manifest, invoke the target program with the caller's
// arguments, and release the environment on every exit path after
// activation. The release is bound to the activation with a defer, so
// dependency and program failures cannot leave the environment active.
package launcher
