// Package geometry checks the spatial consistency of a location's space
// graph and converts detected conflicts into resolution proposals.
//
// Checks are scale-aware: simple and moderate locations may omit
// structured geometry entirely, while complex and massive locations run
// in strict mode, where most omissions become blocking. Detection is a
// pure read; the location is never modified.
package geometry

import (
	"fmt"

	"github.com/contentcraft/canon-api/internal/entities"
)

// meshAdvisoryThreshold is the space count above which a location with
// no mesh anchors at all gets an advisory warning. Mesh anchors are a
// renderer optimization hint, not a structural requirement.
const meshAdvisoryThreshold = 5

// DetectConflicts runs every spatial-consistency check over the
// location and returns the conflicts found, in check order.
func DetectConflicts(loc *entities.Location) []entities.GeometryConflict {
	if loc == nil {
		return nil
	}

	scale := loc.DeriveScale()
	strict := scale.IsStrict()

	var conflicts []entities.GeometryConflict

	if len(loc.Spaces) == 0 {
		// Small locations are allowed to stay prose-only.
		if strict {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:        entities.ConflictMissingSpaces,
				Severity:    entities.SeverityBlocking,
				Description: fmt.Sprintf("location %q is %s scale but declares no structured spaces", loc.Name, scale),
				FieldPath:   "spaces",
			})
		}
		return conflicts
	}

	conflicts = append(conflicts, checkSpaceIdentity(loc, strict)...)
	conflicts = append(conflicts, checkSpaceGeometry(loc, strict)...)
	conflicts = append(conflicts, checkConnectivity(loc, strict)...)
	conflicts = append(conflicts, checkMeshAnchors(loc)...)
	if strict {
		conflicts = append(conflicts, checkLockingPoints(loc)...)
		conflicts = append(conflicts, checkFloorAlignment(loc)...)
	}
	conflicts = append(conflicts, checkDoorBounds(loc, strict)...)

	return conflicts
}

func severityFor(strict bool) entities.ConflictSeverity {
	if strict {
		return entities.SeverityBlocking
	}
	return entities.SeverityWarning
}

// checkSpaceIdentity enforces unique space ids and names within the
// location.
func checkSpaceIdentity(loc *entities.Location, strict bool) []entities.GeometryConflict {
	var conflicts []entities.GeometryConflict
	seenID := make(map[string]bool)
	seenName := make(map[string]bool)

	for i, sp := range loc.Spaces {
		if sp.ID != "" && seenID[sp.ID] {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictDuplicateSpace,
				Severity:       severityFor(strict),
				Description:    fmt.Sprintf("space id %q appears more than once", sp.ID),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.id", i),
			})
		}
		seenID[sp.ID] = true

		if sp.Name != "" && seenName[sp.Name] {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictDuplicateSpace,
				Severity:       severityFor(strict),
				Description:    fmt.Sprintf("space name %q appears more than once", sp.Name),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.name", i),
			})
		}
		seenName[sp.Name] = true
	}
	return conflicts
}

// checkSpaceGeometry verifies per-space geometry presence. Position is
// recommended but never required, so its absence stays a warning even
// in strict mode.
func checkSpaceGeometry(loc *entities.Location, strict bool) []entities.GeometryConflict {
	var conflicts []entities.GeometryConflict

	for i, sp := range loc.Spaces {
		if sp.Geometry == nil {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictMissingGeometry,
				Severity:       severityFor(strict),
				Description:    fmt.Sprintf("space %q has no geometry", sp.Name),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.geometry", i),
			})
			continue
		}

		if sp.Geometry.Dimensions == nil {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictMissingDimensions,
				Severity:       severityFor(strict),
				Description:    fmt.Sprintf("space %q has no dimensions", sp.Name),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.geometry.dimensions", i),
			})
		}

		if strict && sp.Geometry.Position == nil {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictMissingPosition,
				Severity:       entities.SeverityWarning,
				Description:    fmt.Sprintf("space %q has no position; placement will be arbitrary", sp.Name),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.geometry.position", i),
			})
		}
	}
	return conflicts
}

// checkConnectivity verifies that every connection target exists and
// that no space is left out of the connection graph entirely. The
// aggregate fully-disconnected check only applies when the location has
// more than one space: a single room cannot be disconnected from
// anything.
func checkConnectivity(loc *entities.Location, strict bool) []entities.GeometryConflict {
	ids := make(map[string]bool, len(loc.Spaces))
	for _, sp := range loc.Spaces {
		ids[sp.ID] = true
	}

	var conflicts []entities.GeometryConflict
	connected := make(map[string]bool)

	for i, sp := range loc.Spaces {
		if sp.Geometry == nil {
			continue
		}
		for j, conn := range sp.Geometry.Connections {
			if !ids[conn.To] {
				conflicts = append(conflicts, entities.GeometryConflict{
					Type:           entities.ConflictDisconnected,
					Severity:       severityFor(strict),
					Description:    fmt.Sprintf("space %q connects to unknown space %q", sp.Name, conn.To),
					AffectedSpaces: []string{sp.ID},
					FieldPath:      fmt.Sprintf("spaces.%d.geometry.connections.%d.to", i, j),
				})
				continue
			}
			connected[sp.ID] = true
			connected[conn.To] = true
		}
	}

	if len(loc.Spaces) > 1 {
		var isolated []string
		for _, sp := range loc.Spaces {
			if !connected[sp.ID] {
				isolated = append(isolated, sp.ID)
			}
		}
		if len(isolated) > 0 {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictFullyDisconnected,
				Severity:       severityFor(strict),
				Description:    fmt.Sprintf("%d space(s) are not connected to anything: %v", len(isolated), isolated),
				AffectedSpaces: isolated,
				FieldPath:      "spaces",
			})
		}
	}

	return conflicts
}

// checkMeshAnchors emits one advisory when a larger location carries no
// meshing metadata at all. Never blocking.
func checkMeshAnchors(loc *entities.Location) []entities.GeometryConflict {
	if len(loc.Spaces) <= meshAdvisoryThreshold {
		return nil
	}
	for _, sp := range loc.Spaces {
		if sp.Geometry != nil && len(sp.Geometry.MeshAnchors) > 0 {
			return nil
		}
	}
	return []entities.GeometryConflict{{
		Type:        entities.ConflictMissingMeshAnchors,
		Severity:    entities.SeverityWarning,
		Description: fmt.Sprintf("none of the %d spaces declare mesh anchors; renderers will fall back to box meshes", len(loc.Spaces)),
		FieldPath:   "spaces",
	}}
}

// checkLockingPoints verifies that every space-level locking point
// reference resolves to a declared location-level locking point. Runs
// only when the location declares locking points at all; a dangling
// reference is always blocking because it corrupts downstream
// structural solving.
func checkLockingPoints(loc *entities.Location) []entities.GeometryConflict {
	if len(loc.LockingPoints) == 0 {
		return nil
	}

	known := make(map[string]bool, len(loc.LockingPoints))
	for _, lp := range loc.LockingPoints {
		known[lp.ID] = true
	}

	var conflicts []entities.GeometryConflict
	for i, sp := range loc.Spaces {
		if sp.Geometry == nil {
			continue
		}
		for j, ref := range sp.Geometry.LockingPoints {
			if !known[ref] {
				conflicts = append(conflicts, entities.GeometryConflict{
					Type:           entities.ConflictUnmatchedLockingRef,
					Severity:       entities.SeverityBlocking,
					Description:    fmt.Sprintf("space %q references undeclared locking point %q", sp.Name, ref),
					AffectedSpaces: []string{sp.ID},
					FieldPath:      fmt.Sprintf("spaces.%d.geometry.locking_points.%d", i, j),
				})
			}
		}
	}
	return conflicts
}

// checkFloorAlignment verifies that every space's floor_level matches a
// declared floor. Runs only when the location declares floors; always
// blocking for the same reason as locking points.
func checkFloorAlignment(loc *entities.Location) []entities.GeometryConflict {
	if len(loc.Floors) == 0 {
		return nil
	}

	levels := make(map[int]bool, len(loc.Floors))
	for _, f := range loc.Floors {
		levels[f.Level] = true
	}

	var conflicts []entities.GeometryConflict
	for i, sp := range loc.Spaces {
		if sp.FloorLevel == nil {
			continue
		}
		if !levels[*sp.FloorLevel] {
			conflicts = append(conflicts, entities.GeometryConflict{
				Type:           entities.ConflictFloorMismatch,
				Severity:       entities.SeverityBlocking,
				Description:    fmt.Sprintf("space %q sits on floor level %d, which is not declared", sp.Name, *sp.FloorLevel),
				AffectedSpaces: []string{sp.ID},
				FieldPath:      fmt.Sprintf("spaces.%d.floor_level", i),
			})
		}
	}
	return conflicts
}

// checkDoorBounds verifies that every door's offset fits on its wall.
func checkDoorBounds(loc *entities.Location, strict bool) []entities.GeometryConflict {
	var conflicts []entities.GeometryConflict
	for i, sp := range loc.Spaces {
		if sp.Geometry == nil || sp.Geometry.Dimensions == nil {
			continue
		}
		for j, d := range sp.Doors {
			if !d.Wall.IsValid() {
				continue
			}
			wallLen := sp.Geometry.Dimensions.WallLength(d.Wall)
			if wallLen > 0 && d.PositionOnWallFt > wallLen {
				conflicts = append(conflicts, entities.GeometryConflict{
					Type:           entities.ConflictDoorOutOfBounds,
					Severity:       severityFor(strict),
					Description:    fmt.Sprintf("space %q has a door at %.1f ft on its %.0f ft %s wall", sp.Name, d.PositionOnWallFt, wallLen, d.Wall),
					AffectedSpaces: []string{sp.ID},
					FieldPath:      fmt.Sprintf("spaces.%d.doors.%d.position_on_wall_ft", i, j),
				})
			}
		}
	}
	return conflicts
}

// HasBlocking reports whether any conflict in the list is blocking.
func HasBlocking(conflicts []entities.GeometryConflict) bool {
	for _, c := range conflicts {
		if c.Severity == entities.SeverityBlocking {
			return true
		}
	}
	return false
}
