package canon

import (
	"github.com/contentcraft/canon-api/internal/doorsync"
	"github.com/contentcraft/canon-api/internal/entities"
	"github.com/contentcraft/canon-api/internal/schema"
)

// ValidateEntityInput defines the input for validating a canon document
type ValidateEntityInput struct {
	Family   schema.Family
	Document map[string]any
}

// ValidateEntityOutput defines the output for validating a canon document
type ValidateEntityOutput struct {
	Result *schema.Result
}

// ValidateLocationInput defines the input for combined location validation
type ValidateLocationInput struct {
	Document map[string]any
}

// ValidateLocationOutput defines the output for combined location validation
type ValidateLocationOutput struct {
	// Valid is true when the schema passed and no blocking geometry
	// conflicts remain.
	Valid        bool
	SchemaResult *schema.Result
	Conflicts    []entities.GeometryConflict
	Proposals    []entities.GeometryProposal
	// Location is the decoded document. Nil when the schema failed.
	Location *entities.Location
}

// SaveLocationInput defines the input for validating and persisting a location
type SaveLocationInput struct {
	Document map[string]any
}

// SaveLocationOutput defines the output for validating and persisting a location
type SaveLocationOutput struct {
	Location  *entities.Location
	Anomalies []doorsync.Anomaly
}

// SyncDoorsInput defines the input for re-synchronizing a stored location's doors
type SyncDoorsInput struct {
	LocationID string
}

// SyncDoorsOutput defines the output for re-synchronizing a stored location's doors
type SyncDoorsOutput struct {
	Location  *entities.Location
	Anomalies []doorsync.Anomaly
}

// NormalizeVersionInput defines the input for schema-version normalization
type NormalizeVersionInput struct {
	Document map[string]any
}

// NormalizeVersionOutput defines the output for schema-version normalization
type NormalizeVersionOutput struct {
	// Document is a copy with schema_version rewritten to canonical
	// "major.minor" form when the raw value parses.
	Document map[string]any
	// SchemaVersion is the canonical version, or "" when the document
	// carries no parseable version.
	SchemaVersion string
}

// BackfillReciprocalsInput defines the input for the reciprocal-flag migration.
// An empty LocationID migrates every stored location.
type BackfillReciprocalsInput struct {
	LocationID string
}

// BackfillReciprocalsOutput defines the output for the reciprocal-flag migration
type BackfillReciprocalsOutput struct {
	Migrated  int
	Anomalies []doorsync.Anomaly
}
