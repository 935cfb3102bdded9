// Package version parses schema_version discriminators into a structured
// form and normalizes variant spellings to the canonical "major.minor"
// string the schema registry keys on.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable is returned when a raw value cannot be read as a
// version. Callers fall back to the oldest supported schema version.
var ErrUnparseable = errors.New("version: unparseable schema_version")

// versionPattern accepts "1.1", "v1.1", "1.1.2", and namespaced variants
// like "npc/v1.1".
var versionPattern = regexp.MustCompile(`^(?:([a-z][a-z0-9_-]*)/)?v?(\d+)\.(\d+)(?:\.(\d+))?$`)

// Version is a parsed schema version discriminator.
type Version struct {
	Namespace string
	Major     int
	Minor     int
	Patch     int
	HasPatch  bool
}

// Canonical returns the "major.minor" form used as a registry key.
// Namespace and patch are dropped: schemas are selected by minor version.
func (v Version) Canonical() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Parse reads a raw version string. It returns ErrUnparseable for
// anything that does not match the accepted forms.
func Parse(raw string) (Version, error) {
	m := versionPattern.FindStringSubmatch(raw)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}

	// Submatches are all-digit by construction, so Atoi cannot fail.
	major, _ := strconv.Atoi(m[2])
	minor, _ := strconv.Atoi(m[3])

	v := Version{
		Namespace: m[1],
		Major:     major,
		Minor:     minor,
	}
	if m[4] != "" {
		patch, _ := strconv.Atoi(m[4])
		v.Patch = patch
		v.HasPatch = true
	}
	return v, nil
}

// ParseValue reads a schema_version field value as decoded from JSON:
// either a string variant or a bare number like 1.1.
func ParseValue(raw any) (Version, error) {
	switch t := raw.(type) {
	case string:
		return Parse(t)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			// JSON renders 1.0 as 1; restore the minor component.
			s += ".0"
		}
		return Parse(s)
	case int:
		return Parse(strconv.Itoa(t) + ".0")
	}
	return Version{}, fmt.Errorf("%w: %v", ErrUnparseable, raw)
}

// NormalizeDocument returns a shallow copy of doc with its
// schema_version rewritten to the canonical "major.minor" string when
// the raw value parses. Unparseable values are left untouched so that
// strict validation can fail closed to the legacy schema. The input map
// is never mutated.
func NormalizeDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	raw, ok := out["schema_version"]
	if !ok {
		return out
	}
	v, err := ParseValue(raw)
	if err != nil {
		return out
	}
	out["schema_version"] = v.Canonical()
	return out
}
