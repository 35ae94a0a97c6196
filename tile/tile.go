// Package tile provides the identity and coordinate types shared by the atlas,
// pool, grid and autotile packages.
package tile

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the process-wide identity of a tile. IDs are random 128-bit values and
// are never reused once minted.
type ID uuid.UUID

// Nil is the zero ID. It never names a live tile and marks an empty brush slot.
var Nil ID

// NewID mints a fresh tile identity.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical textual form produced by ID.String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("tile: parse id %q: %w", s, err)
	}
	return ID(u), nil
}

func (id ID) IsNil() bool {
	return id == Nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Coord identifies a grid cell or an atlas slot. Atlas slots are never
// negative; grid coordinates may be, since layers have a movable origin.
type Coord struct {
	X int
	Y int
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// Add returns c offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
