// Package label provides the identity types shared by every stage of BOM generation.
//
// A [Coordinate] is the (group, name, version) triple that identifies a dependency.
// Its string form, group:name:version, is the key used both for deduplication and for
// excluding artifacts produced by the build itself.
//
// # Validation
//
// Name and version are required. No field may contain ':' or whitespace, since either
// would make the string form ambiguous. Group may be empty; some build systems resolve
// flat-directory artifacts without one.
package label

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMalformedCoordinate is returned when a coordinate cannot identify a dependency.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Coordinate identifies a dependency by group, name and version.
// Coordinates are comparable values; two coordinates are equal iff all three fields
// match exactly (case-sensitive).
type Coordinate struct {
	Group   string
	Name    string
	Version string
}

// New creates a validated Coordinate.
func New(group, name, version string) (Coordinate, error) {
	c := Coordinate{Group: group, Name: name, Version: version}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Must creates a Coordinate or panics. Use only for constants/tests.
func Must(group, name, version string) Coordinate {
	c, err := New(group, name, version)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse parses the group:name:version form.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%w: %q: want group:name:version", ErrMalformedCoordinate, s)
	}
	return New(parts[0], parts[1], parts[2])
}

// Validate reports whether the coordinate can identify a dependency.
// The returned error wraps ErrMalformedCoordinate.
func (c Coordinate) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: %q: name is empty", ErrMalformedCoordinate, c.String())
	}
	if c.Version == "" {
		return fmt.Errorf("%w: %q: version is empty", ErrMalformedCoordinate, c.String())
	}
	fields := [...]struct{ name, value string }{
		{"group", c.Group},
		{"name", c.Name},
		{"version", c.Version},
	}
	for _, f := range fields {
		if strings.ContainsFunc(f.value, invalidRune) {
			return fmt.Errorf("%w: %q: %s contains ':' or whitespace", ErrMalformedCoordinate, c.String(), f.name)
		}
	}
	return nil
}

func invalidRune(r rune) bool {
	return r == ':' || unicode.IsSpace(r)
}

// String returns the group:name:version form.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Name + ":" + c.Version
}

// IsZero returns true for the zero Coordinate.
func (c Coordinate) IsZero() bool {
	return c == Coordinate{}
}
