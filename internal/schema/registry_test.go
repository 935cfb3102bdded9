package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/contentcraft/canon-api/internal/pkg/version"
	"github.com/contentcraft/canon-api/internal/schema"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *schema.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupSuite() {
	registry, err := schema.NewRegistry()
	s.Require().NoError(err)
	s.registry = registry
}

func (s *RegistryTestSuite) TestKnownVersions() {
	for _, f := range schema.Families {
		s.Equal([]string{"1.0", "1.1"}, s.registry.Versions(f))
	}
}

func (s *RegistryTestSuite) TestValidNPC() {
	result, err := s.registry.Validate(schema.FamilyNPC, map[string]any{
		"schema_version": "1.1",
		"name":           "Mira the Cartographer",
		"description":    "A meticulous half-elf mapmaker who trades routes for rumors.",
		"occupation":     "cartographer",
	})

	s.Require().NoError(err)
	s.True(result.Valid)
	s.Equal("1.1", result.SchemaVersion)
	s.Empty(result.Errors)
	s.Empty(result.Details)
}

func (s *RegistryTestSuite) TestNumericSchemaVersion() {
	result, err := s.registry.Validate(schema.FamilyNPC, map[string]any{
		"schema_version": 1.1,
		"name":           "Brother Aldous",
		"description":    "An ink-stained monk who archives every rumor he hears.",
	})

	s.Require().NoError(err)
	s.True(result.Valid)
	s.Equal("1.1", result.SchemaVersion)
}

func (s *RegistryTestSuite) TestNamespacedVersionFallsBackToLegacy() {
	doc := map[string]any{
		"schema_version": "npc/v1.1",
		"name":           "Mira the Cartographer",
		"description":    "A meticulous half-elf mapmaker who trades routes for rumors.",
	}

	// Strict detection only accepts exact known versions, so the
	// variant string falls back to the legacy schema and fails there.
	result, err := s.registry.Validate(schema.FamilyNPC, doc)
	s.Require().NoError(err)
	s.False(result.Valid)
	s.Equal("1.0", result.SchemaVersion)

	// The explicit normalization step maps the variant to canonical
	// form; validation then selects and passes the current schema.
	normalized := version.NormalizeDocument(doc)
	result, err = s.registry.Validate(schema.FamilyNPC, normalized)
	s.Require().NoError(err)
	s.True(result.Valid)
	s.Equal("1.1", result.SchemaVersion)

	// The original document was never touched.
	s.Equal("npc/v1.1", doc["schema_version"])
}

func (s *RegistryTestSuite) TestUnknownFamily() {
	_, err := s.registry.Validate(schema.Family("spellbook"), map[string]any{})
	s.Error(err)
}

func (s *RegistryTestSuite) TestNilDocument() {
	_, err := s.registry.Validate(schema.FamilyNPC, nil)
	s.Error(err)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	result, err := registry.Validate(schema.FamilyMonster, map[string]any{
		"schema_version": "1.1",
		"name":           "Gloom Stalker",
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)

	// The report names the missing fields and tells the user what to do.
	assert.Contains(t, result.Details, "missing required field(s)")
	assert.Contains(t, result.Details, "size")
	assert.Contains(t, result.Details, "creature_type")
	assert.True(t, strings.HasPrefix(result.Details, "1. "), "details must be a numbered report, got: %s", result.Details)
}

func TestValidate_OneOfSynthesis(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	result, err := registry.Validate(schema.FamilyMonster, map[string]any{
		"schema_version": "1.1",
		"name":           "Gloom Stalker",
		"size":           "large",
		"creature_type":  "monstrosity",
		"armor_class":    true,
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)

	// One synthesized line: field path, actual runtime type, value
	// preview, and the field-specific remediation hint.
	assert.Contains(t, result.Details, "armor_class:")
	assert.Contains(t, result.Details, "boolean")
	assert.Contains(t, result.Details, "true")
	assert.Contains(t, result.Details, `Armor Class: enter a number like 18, or "18 (plate armor)"`)
}

func TestValidate_EnumViolation(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	result, err := registry.Validate(schema.FamilyMonster, map[string]any{
		"schema_version": "1.1",
		"name":           "Gloom Stalker",
		"size":           "enormous",
		"creature_type":  "monstrosity",
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Details, "size:")
	assert.Contains(t, result.Details, `"enormous"`)
	assert.Contains(t, result.Details, "is not an allowed value")
}

func TestValidate_ValuePreviewTruncated(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	longText := strings.Repeat("the shadows lengthen and twist ", 20)
	result, err := registry.Validate(schema.FamilyMonster, map[string]any{
		"schema_version": "1.1",
		"name":           "Gloom Stalker",
		"size":           "large",
		"creature_type":  "monstrosity",
		"armor_class":    longText,
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Details, "...")
	assert.NotContains(t, result.Details, longText)
}

func TestValidate_DoorWallEnum(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	result, err := registry.Validate(schema.FamilyLocation, map[string]any{
		"schema_version": "1.1",
		"name":           "The Sunken Vault",
		"spaces": []any{
			map[string]any{
				"id":   "vault",
				"name": "Vault",
				"doors": []any{
					map[string]any{
						"wall":                "up",
						"position_on_wall_ft": 5.0,
						"width_ft":            3.0,
						"leads_to":            "Outside",
					},
				},
			},
		},
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Details, "spaces.0.doors.0.wall")
	assert.Contains(t, result.Details, "Wall: use one of north, south, east or west")
}

func TestValidate_LegacyLocationSchema(t *testing.T) {
	registry, err := schema.NewRegistry()
	require.NoError(t, err)

	result, err := registry.Validate(schema.FamilyLocation, map[string]any{
		"schema_version": "1.0",
		"name":           "The Sunken Vault",
		"description":    "A flooded treasury beneath the old mint.",
		"rooms":          []any{"Antechamber", "Vault Proper"},
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "1.0", result.SchemaVersion)
}
