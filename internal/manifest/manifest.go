// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrInvalidSpecifier is the sentinel error wrapped by InvalidSpecifierError.
	ErrInvalidSpecifier = errors.New("invalid dependency specifier")

	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
)

type (
	// Specifier is a single dependency declaration: a package name with an
	// optional exact version pin. The zero value is invalid (empty name).
	Specifier struct {
		// Name is the package name as it appears in the manifest.
		Name string
		// Version is the pinned version, or "" when the line is unpinned.
		Version string
	}

	// Manifest is the ordered list of specifiers read from a manifest file.
	// Order and duplicates are preserved verbatim; the installation tool
	// owns their semantics.
	Manifest struct {
		// Path is the file the manifest was read from ("" when parsed
		// from an in-memory reader).
		Path string
		// Specifiers are the declarations in file order.
		Specifiers []Specifier
	}

	// InvalidSpecifierError is returned when a manifest line cannot be
	// parsed as a dependency specifier. It wraps ErrInvalidSpecifier and
	// carries the offending line and its 1-based line number.
	InvalidSpecifierError struct {
		Line    string
		LineNum int
		Reason  string
	}
)

// Error implements the error interface.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.LineNum, e.Reason, e.Line)
}

// Unwrap returns ErrInvalidSpecifier for errors.Is() compatibility.
func (e *InvalidSpecifierError) Unwrap() error { return ErrInvalidSpecifier }

// String renders the specifier back in its manifest form.
func (s Specifier) String() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "==" + s.Version
}

// IsValid returns whether the Specifier has a non-empty name and no
// stray whitespace in either field.
func (s Specifier) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, fmt.Errorf("%w: empty package name", ErrInvalidSpecifier))
	}
	if s.Version != strings.TrimSpace(s.Version) {
		errs = append(errs, fmt.Errorf("%w: version has surrounding whitespace", ErrInvalidSpecifier))
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse reads specifiers from r, one per line. Blank lines and lines
// whose first non-space character is '#' are skipped. Each remaining
// line must be `name` or `name==version`.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := parseLine(line, lineNum)
		if err != nil {
			return nil, err
		}
		m.Specifiers = append(m.Specifiers, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return m, nil
}

// versionOperatorChars are the characters of the comparison operators
// richer requirement grammars allow and this format rejects.
const versionOperatorChars = "<>!~="

// parseLine splits a single non-empty manifest line into a Specifier.
func parseLine(line string, lineNum int) (Specifier, error) {
	name, version, pinned := strings.Cut(line, "==")
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)

	if name == "" {
		return Specifier{}, &InvalidSpecifierError{Line: line, LineNum: lineNum, Reason: "missing package name"}
	}
	if strings.ContainsAny(name, " \t") {
		return Specifier{}, &InvalidSpecifierError{Line: line, LineNum: lineNum, Reason: "package name contains whitespace"}
	}
	// Only exact `==` pins are supported, so comparison characters left
	// over after the cut (>=, <=, !=, ~=, ===, bare < or >) mean the
	// line uses a constraint this format does not have.
	if strings.ContainsAny(name, versionOperatorChars) {
		return Specifier{}, &InvalidSpecifierError{Line: line, LineNum: lineNum, Reason: "unsupported version constraint (only '==' pins are allowed)"}
	}
	if pinned && version == "" {
		return Specifier{}, &InvalidSpecifierError{Line: line, LineNum: lineNum, Reason: "missing version after '=='"}
	}
	if strings.ContainsAny(version, versionOperatorChars) {
		return Specifier{}, &InvalidSpecifierError{Line: line, LineNum: lineNum, Reason: "unsupported version constraint (only '==' pins are allowed)"}
	}

	return Specifier{Name: name, Version: version}, nil
}

// IsEmpty returns true when the manifest declares no dependencies.
func (m *Manifest) IsEmpty() bool { return len(m.Specifiers) == 0 }

// Len returns the number of declared specifiers, duplicates included.
func (m *Manifest) Len() int { return len(m.Specifiers) }
