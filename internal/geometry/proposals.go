package geometry

import (
	"fmt"

	"github.com/contentcraft/canon-api/internal/entities"
)

// optionCustom is the escape hatch every proposal ends with.
const optionCustom = "Custom"

// proposalTemplate is the fixed resolution offer for one conflict type.
// AutoFix must name one of Options so an automated-apply path can never
// act outside the declared set.
type proposalTemplate struct {
	question   string
	options    []string
	ruleImpact string
	autoFix    string
}

var proposalTemplates = map[entities.ConflictType]proposalTemplate{
	entities.ConflictMissingSpaces: {
		question: "This location is large enough to need structured spaces. How should they be added?",
		options: []string{
			"Generate a space layout from the description",
			"Downgrade the location scale",
			"Author spaces manually",
			optionCustom,
		},
		ruleImpact: "Without spaces, encounter placement and travel timing inside this location cannot be resolved.",
		autoFix:    "Generate a space layout from the description",
	},
	entities.ConflictDuplicateSpace: {
		question: "Two spaces share the same identifier. Which one should be renamed?",
		options: []string{
			"Rename the later duplicate automatically",
			"Merge the duplicates into one space",
			"Review both spaces manually",
			optionCustom,
		},
		ruleImpact: "Duplicate identifiers make door targets and connections ambiguous.",
		autoFix:    "Rename the later duplicate automatically",
	},
	entities.ConflictMissingGeometry: {
		question: "A space has no geometry. How should its shape be established?",
		options: []string{
			"Generate default geometry from the location scale",
			"Copy geometry from an adjacent space",
			"Author the geometry manually",
			"Leave the space abstract",
			optionCustom,
		},
		ruleImpact: "Spaces without geometry cannot participate in distance, line-of-sight, or door placement rules.",
		autoFix:    "Generate default geometry from the location scale",
	},
	entities.ConflictMissingDimensions: {
		question: "A space has geometry but no dimensions. What size should it be?",
		options: []string{
			"Apply a default size for the location type",
			"Infer dimensions from connected spaces",
			"Enter dimensions manually",
			optionCustom,
		},
		ruleImpact: "Movement and area-of-effect rules need concrete dimensions to resolve.",
		autoFix:    "Apply a default size for the location type",
	},
	entities.ConflictMissingPosition: {
		question: "A space has no position on the plan. Where should it sit?",
		options: []string{
			"Auto-place next to its connected spaces",
			"Place at the plan origin",
			"Position it manually",
			optionCustom,
		},
		ruleImpact: "Unpositioned spaces render at arbitrary coordinates; travel distances between them are estimates.",
		autoFix:    "Auto-place next to its connected spaces",
	},
	entities.ConflictDisconnected: {
		question: "A connection points at a space that does not exist. How should it be repaired?",
		options: []string{
			"Remove the dangling connection",
			"Create the missing space",
			"Retarget the connection manually",
			optionCustom,
		},
		ruleImpact: "Dangling connections break pathfinding through the location graph.",
		autoFix:    "Remove the dangling connection",
	},
	entities.ConflictFullyDisconnected: {
		question: "Some spaces are not connected to the rest of the location. How should they be linked?",
		options: []string{
			"Connect each isolated space to its nearest neighbor",
			"Mark them as intentionally sealed",
			"Draw the connections manually",
			optionCustom,
		},
		ruleImpact: "Isolated spaces are unreachable during play unless the table improvises access.",
		autoFix:    "Connect each isolated space to its nearest neighbor",
	},
	entities.ConflictMissingMeshAnchors: {
		question: "No space declares mesh anchors. Should placeholder anchors be generated?",
		options: []string{
			"Generate anchors at space centers",
			"Skip meshing for this location",
			"Author anchors manually",
			optionCustom,
		},
		ruleImpact: "Renderers fall back to box meshes without anchors; play is unaffected.",
		autoFix:    "Generate anchors at space centers",
	},
	entities.ConflictUnmatchedLockingRef: {
		question: "A space references a locking point the location does not declare. How should it be resolved?",
		options: []string{
			"Remove the unmatched reference",
			"Declare the locking point at the location level",
			"Review the structural layout manually",
			optionCustom,
		},
		ruleImpact: "Structural solving aborts on dangling locking-point references.",
		autoFix:    "Remove the unmatched reference",
	},
	entities.ConflictFloorMismatch: {
		question: "A space sits on a floor level the location does not declare. Which should change?",
		options: []string{
			"Move the space to the nearest declared floor",
			"Declare the missing floor",
			"Correct the space manually",
			optionCustom,
		},
		ruleImpact: "Vertical alignment fails for spaces on undeclared floors, breaking stair and shaft placement.",
		autoFix:    "Move the space to the nearest declared floor",
	},
	entities.ConflictDoorOutOfBounds: {
		question: "A door sits beyond the end of its wall. How should it be corrected?",
		options: []string{
			"Clamp the door to the wall length",
			"Resize the space to fit the door",
			"Reposition the door manually",
			optionCustom,
		},
		ruleImpact: "Out-of-bounds doors cannot be matched with a reciprocal door in the adjoining space.",
		autoFix:    "Clamp the door to the wall length",
	},
}

// genericTemplate handles conflict types this generator does not know
// about yet, so proposal generation never fails.
var genericTemplate = proposalTemplate{
	question: "A geometry conflict was detected. How should it be handled?",
	options: []string{
		"Auto-fix if possible",
		"Skip validation",
		"Manual correction needed",
		optionCustom,
	},
	ruleImpact: "Unresolved geometry conflicts may produce inconsistent play-time rulings.",
	autoFix:    "Auto-fix if possible",
}

// GenerateProposals converts each conflict into a structured resolution
// proposal, one per conflict, order-preserving. The conflict id is the
// stable positional key "conflict_<index>".
func GenerateProposals(conflicts []entities.GeometryConflict) []entities.GeometryProposal {
	proposals := make([]entities.GeometryProposal, 0, len(conflicts))
	for i, c := range conflicts {
		tmpl, ok := proposalTemplates[c.Type]
		if !ok {
			tmpl = genericTemplate
		}

		options := make([]string, len(tmpl.options))
		copy(options, tmpl.options)

		proposals = append(proposals, entities.GeometryProposal{
			ConflictID:        fmt.Sprintf("conflict_%d", i),
			Question:          tmpl.question,
			Options:           options,
			RuleImpact:        tmpl.ruleImpact,
			AutoFixSuggestion: tmpl.autoFix,
		})
	}
	return proposals
}
