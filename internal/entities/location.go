// Package entities provides core data structures for canon-api.
package entities

import (
	"time"
)

// Scale classifies how large a location is. It drives whether geometry
// issues are blocking or advisory.
type Scale string

// Location scales
const (
	ScaleSimple   Scale = "simple"
	ScaleModerate Scale = "moderate"
	ScaleComplex  Scale = "complex"
	ScaleMassive  Scale = "massive"
	ScaleUnknown  Scale = "unknown"
)

// IsStrict reports whether geometry validation runs in strict mode for
// this scale. Complex and massive locations must carry full geometry.
func (s Scale) IsStrict() bool {
	return s == ScaleComplex || s == ScaleMassive
}

// scaleForCount maps a space count to a scale bucket.
func scaleForCount(n int) Scale {
	switch {
	case n <= 0:
		return ScaleUnknown
	case n <= 4:
		return ScaleSimple
	case n <= 12:
		return ScaleModerate
	case n <= 30:
		return ScaleComplex
	default:
		return ScaleMassive
	}
}

// Location represents a canon location block: a named place with zero or
// more structured spaces (rooms), optional locking points for structural
// solving, and optional floor declarations for multi-level layouts.
type Location struct {
	ID              string         `json:"id,omitempty"`
	SchemaVersion   string         `json:"schema_version,omitempty"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	LocationType    string         `json:"location_type,omitempty"`
	Scale           Scale          `json:"scale,omitempty"`
	EstimatedSpaces int            `json:"estimated_spaces,omitempty"`
	Spaces          []Space        `json:"spaces,omitempty"`
	LockingPoints   []LockingPoint `json:"locking_points,omitempty"`
	Floors          []Floor        `json:"floors,omitempty"`
	CreatedAt       time.Time      `json:"created_at,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at,omitempty"`
}

// DeriveScale computes the effective scale of the location. An explicit
// scale field wins, then the author's estimated_spaces, then the actual
// space count.
func (l *Location) DeriveScale() Scale {
	switch l.Scale {
	case ScaleSimple, ScaleModerate, ScaleComplex, ScaleMassive:
		return l.Scale
	}
	if l.EstimatedSpaces > 0 {
		return scaleForCount(l.EstimatedSpaces)
	}
	return scaleForCount(len(l.Spaces))
}

// Space is a single room within a location.
// ID and Name must be unique within the location.
type Space struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Geometry   *Geometry `json:"geometry,omitempty"`
	FloorLevel *int      `json:"floor_level,omitempty"`
	Doors      []Door    `json:"doors,omitempty"`
}

// Geometry holds the spatial description of a space. Dimensions are
// required for strict-scale locations; position is recommended but never
// required.
type Geometry struct {
	Dimensions    *Dimensions  `json:"dimensions,omitempty"`
	Position      *Position    `json:"position,omitempty"`
	Connections   []Connection `json:"connections,omitempty"`
	LockingPoints []string     `json:"locking_points,omitempty"`
	MeshAnchors   []string     `json:"mesh_anchors,omitempty"`
}

// Dimensions is the floor-plan extent of a space in feet. Width runs
// east-west (the length of the north and south walls), height runs
// north-south (the length of the east and west walls).
type Dimensions struct {
	WidthFt   float64 `json:"width_ft"`
	HeightFt  float64 `json:"height_ft"`
	CeilingFt float64 `json:"ceiling_ft,omitempty"`
}

// Position places a space on the location's plan.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connection is a directed link from one space to another (stairs,
// corridors, passages). To references a space ID.
type Connection struct {
	To   string `json:"to"`
	Kind string `json:"type,omitempty"`
}

// LockingPoint is a location-level structural anchor that spaces may
// reference from their geometry.
type LockingPoint struct {
	ID          string `json:"id"`
	Kind        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Floor declares one vertical level of a multi-floor location.
type Floor struct {
	Level int    `json:"level"`
	Name  string `json:"name,omitempty"`
}

// Wall identifies one of the four walls of a rectangular space.
type Wall string

// Walls
const (
	WallNorth Wall = "north"
	WallSouth Wall = "south"
	WallEast  Wall = "east"
	WallWest  Wall = "west"
)

// IsValid reports whether w is a recognized wall.
func (w Wall) IsValid() bool {
	switch w {
	case WallNorth, WallSouth, WallEast, WallWest:
		return true
	}
	return false
}

// Opposite returns the facing wall: north<->south, east<->west.
func (w Wall) Opposite() Wall {
	switch w {
	case WallNorth:
		return WallSouth
	case WallSouth:
		return WallNorth
	case WallEast:
		return WallWest
	case WallWest:
		return WallEast
	}
	return w
}

// WallLength returns the length in feet of the given wall for these
// dimensions. North and south walls span the width, east and west walls
// span the height.
func (d *Dimensions) WallLength(w Wall) float64 {
	switch w {
	case WallNorth, WallSouth:
		return d.WidthFt
	case WallEast, WallWest:
		return d.HeightFt
	}
	return 0
}

// Door is an opening in a space's wall leading to another space, or to a
// terminal target such as "Outside". A door created by reciprocal
// synchronization carries IsReciprocal; author-declared doors do not.
type Door struct {
	Wall             Wall    `json:"wall"`
	PositionOnWallFt float64 `json:"position_on_wall_ft"`
	WidthFt          float64 `json:"width_ft"`
	LeadsTo          string  `json:"leads_to"`
	Style            string  `json:"style,omitempty"`
	DoorType         string  `json:"door_type,omitempty"`
	Material         string  `json:"material,omitempty"`
	State            string  `json:"state,omitempty"`
	Color            string  `json:"color,omitempty"`
	IsReciprocal     bool    `json:"is_reciprocal,omitempty"`
}
