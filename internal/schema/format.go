package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// previewLimit caps how much of a rejected value is echoed back.
const previewLimit = 60

// fieldHints maps well-known fields to a concrete fix instruction.
// Keyed by the final path segment.
var fieldHints = map[string]string{
	"armor_class":      `Armor Class: enter a number like 18, or "18 (plate armor)"`,
	"hit_points":       `Hit Points: enter a number like 45, or dice notation like "45 (7d8+14)"`,
	"challenge_rating": `Challenge Rating: enter a number like 5, or a fraction like "1/2"`,
	"schema_version":   `Schema Version: use "1.0" or "1.1"`,
	"description":      `Description: write at least a full sentence (20 characters or more)`,
	"wall":             `Wall: use one of north, south, east or west`,
}

var (
	expectedTypesPattern = regexp.MustCompile(`expected ([a-z, or]+), but got`)
	quotedNamePattern    = regexp.MustCompile(`'([^']+)'`)
)

// FormatDetails renders raw schema violations as a numbered,
// human-readable report. Violations are grouped by field path; a oneOf
// failure bundled with type failures on the same path collapses into a
// single message naming every candidate type, the actual runtime type,
// a truncated value preview, and a field-specific hint when one exists.
// This output shape is a contract with calling UIs: every line carries
// a field path, the received value, and a concrete fix.
func FormatDetails(doc any, errs []RawError) string {
	if len(errs) == 0 {
		return ""
	}

	groups, order := groupByPath(errs)

	var lines []string
	for _, path := range order {
		lines = append(lines, formatGroup(doc, path, groups[path])...)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}

func groupByPath(errs []RawError) (map[string][]RawError, []string) {
	groups := make(map[string][]RawError)
	var order []string
	for _, e := range errs {
		if _, seen := groups[e.InstancePath]; !seen {
			order = append(order, e.InstancePath)
		}
		groups[e.InstancePath] = append(groups[e.InstancePath], e)
	}
	return groups, order
}

// formatGroup renders every violation at one field path. A group that
// contains a oneOf failure swallows its per-branch type failures into a
// single synthesized line.
func formatGroup(doc any, path string, errs []RawError) []string {
	display := displayPath(path)
	value, hasValue := valueAtPointer(doc, path)

	hasOneOf := false
	var typeErrs, rest []RawError
	for _, e := range errs {
		switch e.Keyword {
		case "oneOf":
			hasOneOf = true
		case "type":
			typeErrs = append(typeErrs, e)
		default:
			rest = append(rest, e)
		}
	}

	var lines []string

	if hasOneOf {
		lines = append(lines, formatOneOf(display, path, value, typeErrs))
		// Branch-specific pattern/minimum failures are noise once the
		// candidate types are spelled out.
		rest = filterKeywords(rest, "pattern", "minimum", "exclusiveMinimum")
	} else {
		for _, e := range typeErrs {
			lines = append(lines, formatType(display, path, value, hasValue, e))
		}
	}

	for _, e := range rest {
		lines = append(lines, formatSingle(display, path, value, hasValue, e))
	}
	return lines
}

func filterKeywords(errs []RawError, drop ...string) []RawError {
	out := errs[:0:0]
	for _, e := range errs {
		skip := false
		for _, k := range drop {
			if e.Keyword == k {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, e)
		}
	}
	return out
}

func formatOneOf(display, path string, value any, typeErrs []RawError) string {
	candidates := expectedTypes(typeErrs)
	expected := "one of the documented formats"
	if len(candidates) > 0 {
		expected = strings.Join(candidates, " or ")
	}

	msg := fmt.Sprintf("%s: expected %s, got %s %s",
		display, expected, runtimeTypeName(value), previewValue(value))
	return withHint(msg, path)
}

func formatType(display, path string, value any, hasValue bool, e RawError) string {
	if !hasValue {
		return withHint(fmt.Sprintf("%s: %s", display, e.Message), path)
	}
	candidates := expectedTypes([]RawError{e})
	expected := e.Message
	if len(candidates) > 0 {
		expected = strings.Join(candidates, " or ")
	}
	msg := fmt.Sprintf("%s: expected %s, got %s %s",
		display, expected, runtimeTypeName(value), previewValue(value))
	return withHint(msg, path)
}

func formatSingle(display, path string, value any, hasValue bool, e RawError) string {
	switch e.Keyword {
	case "required":
		missing := quotedNames(e.Message)
		if len(missing) == 0 {
			return fmt.Sprintf("%s: %s", display, e.Message)
		}
		msg := fmt.Sprintf("%s: missing required field(s): %s — add them to the record",
			display, strings.Join(missing, ", "))
		if len(missing) == 1 {
			if hint, ok := fieldHints[missing[0]]; ok {
				msg += " — " + hint
			}
		}
		return msg

	case "enum":
		msg := fmt.Sprintf("%s: %s is not an allowed value; %s",
			display, previewValue(value), e.Message)
		return withHint(msg, path)

	case "pattern":
		msg := fmt.Sprintf("%s: %s does not match the expected format",
			display, previewValue(value))
		return withHint(msg, path)

	case "additionalProperties":
		unknown := quotedNames(e.Message)
		if len(unknown) == 0 {
			return fmt.Sprintf("%s: %s", display, e.Message)
		}
		return fmt.Sprintf("%s: unknown field(s): %s — remove them or check for typos",
			display, strings.Join(unknown, ", "))

	case "minLength":
		msg := fmt.Sprintf("%s: %s is too short (%s)",
			display, previewValue(value), e.Message)
		return withHint(msg, path)

	default:
		if hasValue {
			return withHint(fmt.Sprintf("%s: %s (received %s)",
				display, e.Message, previewValue(value)), path)
		}
		return withHint(fmt.Sprintf("%s: %s", display, e.Message), path)
	}
}

func withHint(msg, path string) string {
	if hint, ok := fieldHints[lastSegment(path)]; ok {
		return msg + " — " + hint
	}
	return msg
}

// expectedTypes collects the candidate type names from validator type
// failures ("expected integer, but got string").
func expectedTypes(errs []RawError) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range errs {
		m := expectedTypesPattern.FindStringSubmatch(e.Message)
		if m == nil {
			continue
		}
		for _, part := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			if part == "" || part == "or" {
				continue
			}
			if !seen[part] {
				seen[part] = true
				out = append(out, part)
			}
		}
	}
	return out
}

func quotedNames(msg string) []string {
	var out []string
	for _, m := range quotedNamePattern.FindAllStringSubmatch(msg, -1) {
		out = append(out, m[1])
	}
	return out
}

// displayPath converts a JSON pointer like "/spaces/0/doors/1/wall" to
// the dotted form "spaces.0.doors.1.wall" used in reports.
func displayPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "(document root)"
	}
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

func lastSegment(ptr string) string {
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	return parts[len(parts)-1]
}

// valueAtPointer walks a decoded JSON document by pointer.
func valueAtPointer(doc any, ptr string) (any, bool) {
	if ptr == "" {
		return doc, true
	}
	cur := doc
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		switch t := cur.(type) {
		case map[string]any:
			v, ok := t[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// runtimeTypeName names the JSON type of a decoded value.
func runtimeTypeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		if t == float64(int64(t)) {
			return "integer"
		}
		return "number"
	case int:
		return "integer"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// previewValue renders a value for inclusion in a report, truncated so
// pasted AI output cannot flood the message.
func previewValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	s := string(data)
	if len(s) > previewLimit {
		s = s[:previewLimit] + "..."
	}
	return s
}
