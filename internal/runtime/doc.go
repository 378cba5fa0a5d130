// SPDX-License-Identifier: MPL-2.0

// Package runtime executes the target program inside an activated
// environment. It owns argv construction (caller arguments forwarded
// verbatim and in order), environment injection, and exit-code
// extraction; it never interprets the program's arguments or output.
package runtime
