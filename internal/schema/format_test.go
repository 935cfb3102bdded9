package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contentcraft/canon-api/internal/schema"
)

func TestFormatDetails_Empty(t *testing.T) {
	assert.Empty(t, schema.FormatDetails(map[string]any{}, nil))
}

func TestFormatDetails_NumbersEveryLine(t *testing.T) {
	doc := map[string]any{"name": 7.0, "size": "colossal"}
	errs := []schema.RawError{
		{InstancePath: "/name", Keyword: "type", Message: "expected string, but got number"},
		{InstancePath: "/size", Keyword: "enum", Message: `value must be one of "tiny", "small"`},
	}

	details := schema.FormatDetails(doc, errs)
	lines := strings.Split(details, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1. name:"), "got %q", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2. size:"), "got %q", lines[1])
}

func TestFormatDetails_TypeViolationNamesBothTypes(t *testing.T) {
	doc := map[string]any{"name": 7.0}
	errs := []schema.RawError{
		{InstancePath: "/name", Keyword: "type", Message: "expected string, but got number"},
	}

	details := schema.FormatDetails(doc, errs)
	assert.Contains(t, details, "expected string")
	assert.Contains(t, details, "got integer")
	assert.Contains(t, details, "7")
}

func TestFormatDetails_RequiredWithHint(t *testing.T) {
	doc := map[string]any{"name": "Gloom Stalker"}
	errs := []schema.RawError{
		{InstancePath: "", Keyword: "required", Message: "missing properties: 'description'"},
	}

	details := schema.FormatDetails(doc, errs)
	assert.Contains(t, details, "(document root)")
	assert.Contains(t, details, "missing required field(s): description")
	assert.Contains(t, details, "Description: write at least a full sentence")
}

func TestFormatDetails_AdditionalProperties(t *testing.T) {
	doc := map[string]any{"abilities": map[string]any{"luck": 12.0}}
	errs := []schema.RawError{
		{InstancePath: "/abilities", Keyword: "additionalProperties", Message: "additionalProperties 'luck' not allowed"},
	}

	details := schema.FormatDetails(doc, errs)
	assert.Contains(t, details, "unknown field(s): luck")
	assert.Contains(t, details, "remove them or check for typos")
}

func TestFormatDetails_UnknownKeywordFallsThrough(t *testing.T) {
	doc := map[string]any{"estimated_spaces": 0.0}
	errs := []schema.RawError{
		{InstancePath: "/estimated_spaces", Keyword: "minimum", Message: "must be >= 1 but found 0"},
	}

	details := schema.FormatDetails(doc, errs)
	assert.Contains(t, details, "estimated_spaces:")
	assert.Contains(t, details, "must be >= 1 but found 0")
}
