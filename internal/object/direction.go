package object

import "github.com/tomz197/snakes/internal/physics"

// Direction is an orthogonal unit heading. Exactly one axis is non-zero.
// Up decreases Y, Down increases Y (screen coordinates).
type Direction struct {
	DX, DY int
}

// Headings.
var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Reverse returns the opposite heading.
func (d Direction) Reverse() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// IsReverse reports whether d points exactly opposite to o.
func (d Direction) IsReverse(o Direction) bool {
	return d.Valid() && d == o.Reverse()
}

// Delta returns the one-cell offset for moving along d.
func (d Direction) Delta() physics.Point {
	return physics.Point{X: d.DX, Y: d.DY}
}

// String returns the heading name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}
