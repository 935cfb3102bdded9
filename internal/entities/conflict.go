package entities

// ConflictSeverity tags how serious a geometry conflict is. Only
// blocking conflicts fail validation; warnings are shown alongside a
// successfully saved location.
type ConflictSeverity string

// Conflict severities
const (
	SeverityBlocking ConflictSeverity = "blocking"
	SeverityWarning  ConflictSeverity = "warning"
)

// ConflictType identifies the family of geometry problem detected.
type ConflictType string

// Conflict types
const (
	ConflictMissingSpaces        ConflictType = "missing_spaces"
	ConflictDuplicateSpace       ConflictType = "duplicate_space"
	ConflictMissingGeometry      ConflictType = "missing_geometry"
	ConflictMissingDimensions    ConflictType = "missing_dimensions"
	ConflictMissingPosition      ConflictType = "missing_position"
	ConflictDisconnected         ConflictType = "disconnected"
	ConflictFullyDisconnected    ConflictType = "fully_disconnected"
	ConflictMissingMeshAnchors   ConflictType = "missing_mesh_anchors"
	ConflictUnmatchedLockingRef  ConflictType = "unmatched_locking_point"
	ConflictFloorMismatch        ConflictType = "floor_mismatch"
	ConflictDoorOutOfBounds      ConflictType = "door_out_of_bounds"
)

// GeometryConflict describes one spatial-consistency problem found in a
// location. Conflicts are produced by detection and consumed by proposal
// generation; they are never persisted directly.
type GeometryConflict struct {
	Type           ConflictType     `json:"type"`
	Severity       ConflictSeverity `json:"severity"`
	Description    string           `json:"description"`
	AffectedSpaces []string         `json:"affected_spaces,omitempty"`
	FieldPath      string           `json:"field_path,omitempty"`
	Details        map[string]any   `json:"details,omitempty"`
}

// GeometryProposal is a structured resolution offer for one conflict:
// a question, an ordered option list ending in "Custom", a human rule
// impact sentence, and an auto-fix suggestion drawn from the options.
type GeometryProposal struct {
	ConflictID        string   `json:"conflict_id"`
	Question          string   `json:"question"`
	Options           []string `json:"options"`
	RuleImpact        string   `json:"rule_impact"`
	AutoFixSuggestion string   `json:"auto_fix_suggestion,omitempty"`
}
