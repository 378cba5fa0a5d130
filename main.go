// SPDX-License-Identifier: MPL-2.0

// venvrun activates a named Python virtual environment, synchronizes its
// packages against a requirements manifest, and runs a maintenance
// program inside it.
package main

import "venvrun/cmd/venvrun"

func main() {
	cmd.Execute()
}
