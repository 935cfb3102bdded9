package doorsync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentcraft/canon-api/internal/doorsync"
	"github.com/contentcraft/canon-api/internal/entities"
)

func TestIdentifyParentDoors_PrefersUnflaggedSide(t *testing.T) {
	// Kitchen's door carries the reciprocal flag; Hall's does not.
	// Hall's door is the parent regardless of room order.
	reciprocal := entities.Door{
		Wall:             entities.WallNorth,
		PositionOnWallFt: 10,
		WidthFt:          4,
		LeadsTo:          "Hall",
		IsReciprocal:     true,
	}
	spaces := []entities.Space{
		room("Kitchen", 40, 20, reciprocal),
		room("Hall", 40, 30, door(entities.WallSouth, 10, 4, "Kitchen")),
	}

	parents := doorsync.IdentifyParentDoors(spaces)
	require.Len(t, parents, 1)
	assert.Equal(t, "Hall", parents[0].SpaceName)
	assert.False(t, parents[0].Door.IsReciprocal)
}

func TestIdentifyParentDoors_NeitherFlagged(t *testing.T) {
	// Both sides declared by hand (pre-flag data): declaration order
	// breaks the tie, so the first room's door is the parent.
	spaces := []entities.Space{
		room("Hall", 40, 30, door(entities.WallSouth, 10, 4, "Kitchen")),
		room("Kitchen", 40, 20, door(entities.WallNorth, 10, 4, "Hall")),
	}

	parents := doorsync.IdentifyParentDoors(spaces)
	require.Len(t, parents, 1)
	assert.Equal(t, "Hall", parents[0].SpaceName)
}

func TestIdentifyParentDoors_TerminalDoorsAreParents(t *testing.T) {
	spaces := []entities.Space{
		room("Hall", 40, 30,
			door(entities.WallNorth, 5, 4, "Outside"),
			door(entities.WallSouth, 10, 4, "Kitchen"),
		),
		room("Kitchen", 40, 20),
	}

	parents := doorsync.IdentifyParentDoors(spaces)
	require.Len(t, parents, 2)
	assert.Equal(t, "Outside", parents[0].Door.LeadsTo)
	assert.Equal(t, "Kitchen", parents[1].Door.LeadsTo)
}

func TestBackfill_CorrectsStaleFlags(t *testing.T) {
	// After the schema change, the author-declared door was wrongly
	// flagged and its counterpart was not flagged at all.
	declared := door(entities.WallSouth, 10, 4, "Kitchen")
	declared.IsReciprocal = true
	counterpart := door(entities.WallNorth, 10, 4, "Hall")

	spaces := []entities.Space{
		room("Hall", 40, 30, declared),
		room("Kitchen", 40, 20, counterpart),
	}

	fixed, anomalies := doorsync.Backfill(spaces)
	require.Empty(t, anomalies)

	hallDoors := doorsOf(fixed, "Hall")
	kitchenDoors := doorsOf(fixed, "Kitchen")
	require.Len(t, hallDoors, 1)
	require.Len(t, kitchenDoors, 1)

	// Provenance restored: parent unflagged, counterpart flagged.
	assert.False(t, hallDoors[0].IsReciprocal)
	assert.True(t, kitchenDoors[0].IsReciprocal)
}

func TestBackfill_FillsMissingReciprocals(t *testing.T) {
	spaces := []entities.Space{
		room("Hall", 40, 30, door(entities.WallSouth, 10, 4, "Kitchen")),
		room("Kitchen", 40, 20),
	}

	fixed, anomalies := doorsync.Backfill(spaces)
	require.Empty(t, anomalies)
	require.Len(t, doorsOf(fixed, "Kitchen"), 1)
	assert.True(t, doorsOf(fixed, "Kitchen")[0].IsReciprocal)
}

func TestBackfill_ClearsFlagOnTerminalDoors(t *testing.T) {
	d := door(entities.WallNorth, 5, 4, "Outside")
	d.IsReciprocal = true

	spaces := []entities.Space{room("Hall", 40, 30, d)}

	fixed, _ := doorsync.Backfill(spaces)
	require.Len(t, doorsOf(fixed, "Hall"), 1)
	assert.False(t, doorsOf(fixed, "Hall")[0].IsReciprocal)
}

func TestBackfill_Idempotent(t *testing.T) {
	spaces := []entities.Space{
		room("Hall", 40, 30, door(entities.WallSouth, 10, 4, "Kitchen")),
		room("Kitchen", 20, 20, door(entities.WallEast, 5, 3, "Pantry")),
		room("Pantry", 10, 20),
	}

	once, _ := doorsync.Backfill(spaces)
	twice, _ := doorsync.Backfill(once)
	assert.Equal(t, once, twice)
}
