package doorsync

// One-shot backfill support: after the is_reciprocal field was added to
// the door schema, stored locations carried stale or missing flags.
// Backfill re-derives provenance for every door, then re-runs
// synchronization. This runs from the migration command, not from the
// steady-state editing path.

import (
	"sort"

	"github.com/contentcraft/canon-api/internal/entities"
)

// ParentDoor identifies an author-declared door: the origin side of a
// door pair.
type ParentDoor struct {
	SpaceName string        `json:"space_name"`
	Door      entities.Door `json:"door"`
}

type doorRef struct {
	space int
	door  int
}

// IdentifyParentDoors picks exactly one parent per door pair. A door
// whose is_reciprocal flag is unset is preferred as the parent; when
// both or neither side is flagged, declaration order breaks the tie.
// Terminal doors are always parents of a pair of one.
func IdentifyParentDoors(spaces []entities.Space) []ParentDoor {
	parents := identifyParentRefs(spaces)
	out := make([]ParentDoor, 0, len(parents))
	for _, ref := range parents {
		out = append(out, ParentDoor{
			SpaceName: spaces[ref.space].Name,
			Door:      spaces[ref.space].Doors[ref.door],
		})
	}
	return out
}

func identifyParentRefs(spaces []entities.Space) []doorRef {
	index := indexSpaces(spaces)
	spaceIdx := make(map[*entities.Space]int, len(spaces))
	for i := range spaces {
		spaceIdx[&spaces[i]] = i
	}

	claimed := make(map[doorRef]bool)
	var parents []doorRef

	visit := func(flagged bool) {
		for i := range spaces {
			src := &spaces[i]
			for j, d := range src.Doors {
				if d.IsReciprocal != flagged {
					continue
				}
				ref := doorRef{space: i, door: j}
				if claimed[ref] {
					continue
				}
				claimed[ref] = true
				parents = append(parents, ref)

				if IsTerminal(d.LeadsTo) || !d.Wall.IsValid() {
					continue
				}
				tgt, ok := index[d.LeadsTo]
				if !ok || tgt == src {
					continue
				}
				srcDim := wallDimension(src, d.Wall)
				tgtDim := wallDimension(tgt, d.Wall)
				if srcDim <= 0 || tgtDim <= 0 {
					continue
				}

				// Claim the counterpart so it is not also treated as
				// a parent.
				recipPos := reciprocalPosition(d.PositionOnWallFt, srcDim, tgtDim)
				if k := findReciprocal(tgt, src, d, d.Wall.Opposite(), recipPos); k >= 0 {
					claimed[doorRef{space: spaceIdx[tgt], door: k}] = true
				}
			}
		}
	}

	// Unflagged doors claim their counterparts first; doors flagged as
	// reciprocal only become parents when nothing claimed them.
	visit(false)
	visit(true)

	// Restore declaration order regardless of which pass found each
	// parent.
	sort.Slice(parents, func(a, b int) bool {
		if parents[a].space != parents[b].space {
			return parents[a].space < parents[b].space
		}
		return parents[a].door < parents[b].door
	})
	return parents
}

// Backfill recomputes door provenance and reciprocals from scratch:
// parent doors lose any stale is_reciprocal flag, their counterparts
// gain it, and missing reciprocals are inserted. The input is not
// mutated.
func Backfill(spaces []entities.Space) ([]entities.Space, []Anomaly) {
	out := cloneSpaces(spaces)

	parents := make(map[doorRef]bool)
	for _, ref := range identifyParentRefs(out) {
		parents[ref] = true
	}

	for i := range out {
		for j := range out[i].Doors {
			d := &out[i].Doors[j]
			if IsTerminal(d.LeadsTo) {
				// A terminal door can never be a reciprocal.
				d.IsReciprocal = false
				continue
			}
			d.IsReciprocal = !parents[doorRef{space: i, door: j}]
		}
	}

	return Synchronize(out)
}
