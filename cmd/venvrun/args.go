// SPDX-License-Identifier: MPL-2.0

package cmd

import "strings"

// venvrun's own flags live in the --venvrun- namespace so they can
// never collide with a flag of the wrapped program. Only a leading run
// of these exact flags belongs to venvrun; the first token that is not
// one of them starts the program's argv.
var (
	// launcherValueFlags take a value (either "--flag value" or
	// "--flag=value" form).
	launcherValueFlags = map[string]bool{
		"venvrun-env":      true,
		"venvrun-manifest": true,
		"venvrun-program":  true,
		"venvrun-workdir":  true,
		"venvrun-config":   true,
	}

	// launcherBoolFlags take no value.
	launcherBoolFlags = map[string]bool{
		"venvrun-dry-run": true,
		"venvrun-verbose": true,
	}
)

// splitLaunchArgs separates venvrun's own leading flags from the
// program argv. Everything from the first non-venvrun token onward is
// forwarded untouched, flags included; a literal "--" ends venvrun's
// portion explicitly and is not forwarded itself.
//
// When the first token selects a subcommand or built-in (config, help,
// completion, -h/--help, --version), direct is true and the args are
// handed to the CLI framework unchanged.
func splitLaunchArgs(args []string) (own, program []string, direct bool) {
	if len(args) == 0 {
		return nil, nil, false
	}

	switch args[0] {
	case "config", "help", "completion", "-h", "--help", "--version":
		return args, nil, true
	}

	i := 0
loop:
	for i < len(args) {
		tok := args[i]
		if tok == "--" {
			return args[:i], args[i+1:], false
		}
		if !strings.HasPrefix(tok, "--") {
			break
		}

		name, _, hasValue := strings.Cut(tok[2:], "=")
		switch {
		case launcherBoolFlags[name]:
			i++
		case launcherValueFlags[name] && hasValue:
			i++
		case launcherValueFlags[name] && i+1 < len(args):
			i += 2
		default:
			// Not venvrun's flag: the program argv starts here.
			break loop
		}
	}

	return args[:i], args[i:], false
}
