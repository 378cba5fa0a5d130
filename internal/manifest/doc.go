// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the externally-owned dependency manifest: a
// plain-text, line-oriented file where each line declares a package as
// `name` or `name==version`. The launcher only ever reads the manifest;
// it is never written or reordered.
package manifest
