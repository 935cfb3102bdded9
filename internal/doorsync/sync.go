// Package doorsync keeps inter-room doors bidirectionally consistent.
//
// Authors declare doors one way ("the hall has a door on its south wall
// leading to the kitchen"); synchronization computes and inserts the
// matching door on the opposite wall of the target room. Rooms of
// different sizes sharing a wall are aligned by relative position, so a
// door two thirds along a 40 ft wall lands two thirds along the
// adjoining 20 ft wall.
//
// Synchronization never mutates its input and never fails: doors whose
// target cannot be resolved are reported as anomalies and skipped.
package doorsync

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/contentcraft/canon-api/internal/entities"
)

// matchToleranceFt is how close an existing door must be to the
// computed reciprocal position to count as the reciprocal.
const matchToleranceFt = 0.5

// terminalTargets are leads_to values that never get a reciprocal door.
var terminalTargets = map[string]bool{
	"":        true,
	"Pending": true,
	"Outside": true,
}

// IsTerminal reports whether a leads_to value is a terminal target.
func IsTerminal(leadsTo string) bool {
	return terminalTargets[leadsTo]
}

// Anomaly records a door that synchronization had to skip.
type Anomaly struct {
	SpaceName string        `json:"space_name"`
	Door      entities.Door `json:"door"`
	Reason    string        `json:"reason"`
}

// Synchronize returns a copy of spaces in which every non-terminal door
// has exactly one reciprocal door on the opposite wall of its target
// room. Existing reciprocals within tolerance are kept; missing ones
// are appended with is_reciprocal set. Re-running synchronization on
// its own output adds nothing.
func Synchronize(spaces []entities.Space) ([]entities.Space, []Anomaly) {
	out := cloneSpaces(spaces)
	index := indexSpaces(out)

	processed := make(map[string]bool)
	var anomalies []Anomaly

	skip := func(sp *entities.Space, d entities.Door, reason string) {
		slog.Warn("door synchronization skipped a door",
			"space", sp.Name, "wall", d.Wall, "leads_to", d.LeadsTo, "reason", reason)
		anomalies = append(anomalies, Anomaly{SpaceName: sp.Name, Door: d, Reason: reason})
	}

	for i := range out {
		src := &out[i]
		for _, d := range src.Doors {
			if IsTerminal(d.LeadsTo) {
				continue
			}
			if !d.Wall.IsValid() {
				skip(src, d, fmt.Sprintf("unknown wall %q", d.Wall))
				continue
			}

			tgt, ok := index[d.LeadsTo]
			if !ok {
				skip(src, d, fmt.Sprintf("target room %q not found", d.LeadsTo))
				continue
			}
			if tgt == src {
				skip(src, d, "door leads back to its own room")
				continue
			}

			srcDim := wallDimension(src, d.Wall)
			tgtDim := wallDimension(tgt, d.Wall)
			if srcDim <= 0 || tgtDim <= 0 {
				skip(src, d, "source or target room has no usable dimensions")
				continue
			}

			recipPos := reciprocalPosition(d.PositionOnWallFt, srcDim, tgtDim)
			oppWall := d.Wall.Opposite()

			// Each unordered pair is handled at most once per pass, so
			// the existing reciprocal does not generate a door back.
			key := pairKey(src.Name, d.Wall, d.PositionOnWallFt, d.WidthFt,
				tgt.Name, oppWall, recipPos)
			if processed[key] {
				continue
			}
			processed[key] = true

			if findReciprocal(tgt, src, d, oppWall, recipPos) >= 0 {
				continue
			}

			tgt.Doors = append(tgt.Doors, reciprocalDoor(d, src, oppWall, recipPos))
		}
	}

	return out, anomalies
}

// reciprocalPosition maps a door offset on the source wall to the
// matching offset on the target wall. Equal walls reuse the offset;
// unequal walls scale it by the dimension ratio so the shared opening
// stays at the same relative position.
func reciprocalPosition(pos, srcDim, tgtDim float64) float64 {
	if srcDim == tgtDim {
		return pos
	}
	return pos / srcDim * tgtDim
}

// wallDimension returns the length of the given wall for a space, or 0
// when the space has no dimensions.
func wallDimension(sp *entities.Space, w entities.Wall) float64 {
	if sp.Geometry == nil || sp.Geometry.Dimensions == nil {
		return 0
	}
	return sp.Geometry.Dimensions.WallLength(w)
}

// pairKey builds a canonical key for the unordered door pair. Each side
// is identified by room, wall, offset rounded to one decimal, and door
// width; sorting the two tuples makes the key direction-independent.
// Width is part of the tuple so two distinct doors between the same
// rooms at near-identical offsets do not collide.
func pairKey(roomA string, wallA entities.Wall, posA, width float64,
	roomB string, wallB entities.Wall, posB float64) string {
	a := fmt.Sprintf("%s|%s|%.1f|%.1f", roomA, wallA, posA, width)
	b := fmt.Sprintf("%s|%s|%.1f|%.1f", roomB, wallB, posB, width)
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "::")
}

// findReciprocal returns the index of an existing door in tgt that
// mirrors door d from src, or -1. Width is part of the match so that
// two distinct doors between the same rooms at near-identical offsets
// each keep their own reciprocal.
func findReciprocal(tgt, src *entities.Space, d entities.Door, oppWall entities.Wall, recipPos float64) int {
	for i, e := range tgt.Doors {
		if e.Wall != oppWall {
			continue
		}
		if e.LeadsTo != src.Name && (src.ID == "" || e.LeadsTo != src.ID) {
			continue
		}
		if abs(e.WidthFt-d.WidthFt) > 0.1 {
			continue
		}
		if abs(e.PositionOnWallFt-recipPos) <= matchToleranceFt {
			return i
		}
	}
	return -1
}

// reciprocalDoor builds the mirrored door, copying the physical
// attributes of the source door.
func reciprocalDoor(d entities.Door, src *entities.Space, oppWall entities.Wall, recipPos float64) entities.Door {
	return entities.Door{
		Wall:             oppWall,
		PositionOnWallFt: recipPos,
		WidthFt:          d.WidthFt,
		LeadsTo:          src.Name,
		Style:            d.Style,
		DoorType:         d.DoorType,
		Material:         d.Material,
		State:            d.State,
		Color:            d.Color,
		IsReciprocal:     true,
	}
}

// indexSpaces maps room names and ids to the spaces in the working
// copy. Names take precedence over ids on collision.
func indexSpaces(spaces []entities.Space) map[string]*entities.Space {
	index := make(map[string]*entities.Space, len(spaces)*2)
	for i := range spaces {
		if id := spaces[i].ID; id != "" {
			index[id] = &spaces[i]
		}
	}
	for i := range spaces {
		if name := spaces[i].Name; name != "" {
			index[name] = &spaces[i]
		}
	}
	return index
}

// cloneSpaces deep-copies the parts of the space graph that
// synchronization touches or hands back, so callers keep an unmodified
// input.
func cloneSpaces(spaces []entities.Space) []entities.Space {
	out := make([]entities.Space, len(spaces))
	for i, sp := range spaces {
		cp := sp
		if sp.Geometry != nil {
			g := *sp.Geometry
			if sp.Geometry.Dimensions != nil {
				d := *sp.Geometry.Dimensions
				g.Dimensions = &d
			}
			if sp.Geometry.Position != nil {
				p := *sp.Geometry.Position
				g.Position = &p
			}
			g.Connections = append([]entities.Connection(nil), sp.Geometry.Connections...)
			g.LockingPoints = append([]string(nil), sp.Geometry.LockingPoints...)
			g.MeshAnchors = append([]string(nil), sp.Geometry.MeshAnchors...)
			cp.Geometry = &g
		}
		if sp.FloorLevel != nil {
			lvl := *sp.FloorLevel
			cp.FloorLevel = &lvl
		}
		cp.Doors = append([]entities.Door(nil), sp.Doors...)
		out[i] = cp
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
