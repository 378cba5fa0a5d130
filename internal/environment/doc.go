// SPDX-License-Identifier: MPL-2.0

// Package environment models the isolated dependency scope a program
// runs in: a named Python virtual environment resolved from a
// configured environments root. Activation is expressed as an explicit
// handle instead of ambient shell state: resolving an environment
// yields an Environment whose Environ() carries what `bin/activate`
// would have exported, and releasing it is a mandatory, observable
// operation rather than a textual fall-through.
package environment
