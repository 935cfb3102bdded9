// Package schema validates canon entity records against versioned JSON
// Schema documents and formats violations into human-actionable reports.
//
// A Registry is built once at process startup and passed by reference to
// everything that validates; compiled schemas are immutable afterwards,
// so a single Registry is safe for concurrent use.
package schema

import (
	"bytes"
	"embed"
	stderrors "errors"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/contentcraft/canon-api/internal/errors"
)

//go:embed schemas/*.json
var embedded embed.FS

// Family identifies an entity family with its own schema lineage.
type Family string

// Entity families
const (
	FamilyLocation Family = "location"
	FamilyMonster  Family = "monster"
	FamilyNPC      Family = "npc"
)

// Families lists every known entity family.
var Families = []Family{FamilyLocation, FamilyMonster, FamilyNPC}

// IsValid reports whether f is a known entity family.
func (f Family) IsValid() bool {
	switch f {
	case FamilyLocation, FamilyMonster, FamilyNPC:
		return true
	}
	return false
}

// Schema versions. Version detection is strict: anything that is not an
// exact known version falls back to the legacy schema (fail closed).
const (
	VersionLegacy  = "1.0"
	VersionCurrent = "1.1"
)

// RawError is one schema violation as reported by the compiled
// validator, before formatting.
type RawError struct {
	InstancePath string `json:"instance_path"`
	Keyword      string `json:"keyword"`
	Message      string `json:"message"`
}

// Result is the outcome of validating one entity record.
type Result struct {
	Valid         bool       `json:"valid"`
	SchemaVersion string     `json:"schema_version"`
	Errors        []RawError `json:"errors,omitempty"`
	Details       string     `json:"details,omitempty"`
}

// Registry holds one compiled validator per (family, version) pair.
type Registry struct {
	validators map[string]*jsonschema.Schema
}

// NewRegistry compiles the embedded schema set.
func NewRegistry() (*Registry, error) {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded schemas")
	}
	return newRegistryFromFS(sub)
}

// NewRegistryFromDir compiles schemas from a directory on disk instead
// of the embedded set. Files must be named <family>_v<version>.json.
func NewRegistryFromDir(dir string) (*Registry, error) {
	return newRegistryFromFS(os.DirFS(dir))
}

func newRegistryFromFS(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read schema directory")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	r := &Registry{validators: make(map[string]*jsonschema.Schema)}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		family, ver, ok := parseSchemaName(e.Name())
		if !ok {
			return nil, errors.Internalf("schema file %q does not match <family>_v<version>.json", e.Name())
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read schema %q", e.Name())
		}

		url := "canon:///" + e.Name()
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, errors.Wrapf(err, "failed to load schema %q", e.Name())
		}
		sch, err := compiler.Compile(url)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compile schema %q", e.Name())
		}

		r.validators[registryKey(family, ver)] = sch
	}

	// Every family must at least carry its legacy schema, since that is
	// the fallback target for unrecognized versions.
	for _, f := range Families {
		if _, ok := r.validators[registryKey(f, VersionLegacy)]; !ok {
			return nil, errors.Internalf("schema set is missing %s v%s", f, VersionLegacy)
		}
	}

	return r, nil
}

// parseSchemaName splits "npc_v1.1.json" into ("npc", "1.1").
func parseSchemaName(name string) (Family, string, bool) {
	base := strings.TrimSuffix(name, ".json")
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", "", false
	}
	family := Family(base[:idx])
	ver := base[idx+2:]
	if !family.IsValid() || ver == "" {
		return "", "", false
	}
	return family, ver, true
}

func registryKey(f Family, ver string) string {
	return string(f) + "@" + ver
}

// has reports whether a compiled validator exists for the pair.
func (r *Registry) has(f Family, ver string) bool {
	_, ok := r.validators[registryKey(f, ver)]
	return ok
}

// Versions returns the known versions for a family in sorted order.
func (r *Registry) Versions(f Family) []string {
	var out []string
	prefix := string(f) + "@"
	for k := range r.validators {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return out
}

// detectVersion reads the schema_version discriminator strictly: an
// exact known version string, or a number whose decimal rendering is an
// exact known version. Everything else falls back to the legacy schema.
// Variant spellings like "npc/v1.1" are deliberately NOT accepted here;
// mapping those to canonical form is version.NormalizeDocument's job and
// must happen before validation if variants should be accepted.
func (r *Registry) detectVersion(f Family, raw any) string {
	switch t := raw.(type) {
	case string:
		if r.has(f, t) {
			return t
		}
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		if r.has(f, s) {
			return s
		}
	case int:
		s := strconv.Itoa(t) + ".0"
		if r.has(f, s) {
			return s
		}
	}
	return VersionLegacy
}

// Validate checks one entity record against the schema selected by its
// schema_version discriminator. The record is never mutated; validation
// is strict, with no auto-normalization and no fallbacks beyond the
// version-detection default.
func (r *Registry) Validate(family Family, doc map[string]any) (*Result, error) {
	if !family.IsValid() {
		return nil, errors.InvalidArgumentf("unknown entity family %q", family)
	}
	if doc == nil {
		return nil, errors.InvalidArgument("document cannot be nil")
	}

	ver := r.detectVersion(family, doc["schema_version"])
	sch, ok := r.validators[registryKey(family, ver)]
	if !ok {
		return nil, errors.Internalf("no compiled schema for %s v%s", family, ver)
	}

	err := sch.Validate(map[string]any(doc))
	if err == nil {
		return &Result{Valid: true, SchemaVersion: ver}, nil
	}

	var ve *jsonschema.ValidationError
	if !stderrors.As(err, &ve) {
		return nil, errors.Wrap(err, "schema validation failed unexpectedly")
	}

	raw := flattenViolations(ve)
	return &Result{
		Valid:         false,
		SchemaVersion: ver,
		Errors:        raw,
		Details:       FormatDetails(doc, raw),
	}, nil
}

// flattenViolations converts the validator's error tree into a flat
// list, dropping the synthetic root aggregate.
func flattenViolations(ve *jsonschema.ValidationError) []RawError {
	basic := ve.BasicOutput()
	out := make([]RawError, 0, len(basic.Errors))
	for _, be := range basic.Errors {
		if be.KeywordLocation == "" {
			continue
		}
		out = append(out, RawError{
			InstancePath: be.InstanceLocation,
			Keyword:      keywordOf(be.KeywordLocation),
			Message:      be.Error,
		})
	}
	return out
}

// keywordOf extracts the failing keyword from a keyword location like
// "/properties/armor_class/oneOf/0/type".
func keywordOf(loc string) string {
	parts := strings.Split(loc, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "" {
			continue
		}
		if _, err := strconv.Atoi(p); err == nil {
			continue
		}
		return p
	}
	return ""
}
