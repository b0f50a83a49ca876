// Package physics provides grid geometry: points, axis-aligned rectangles
// and game-area bounds checks.
package physics

// Point is an integer cell position on the game grid.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p with both components multiplied by n.
func (p Point) Scale(n int) Point {
	return Point{X: p.X * n, Y: p.Y * n}
}

// Rect is a half-open axis-aligned rectangle covering
// [X, X+W) × [Y, Y+H).
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Area is the playing field. Column 0, row 0, column Width and row Height
// are walls; every cell strictly between them is open.
type Area struct {
	Width  int
	Height int
}

// InBounds reports whether p is an open cell of the area.
// Anything on or beyond a wall is out of bounds.
func (a Area) InBounds(p Point) bool {
	return p.X > 0 && p.X < a.Width && p.Y > 0 && p.Y < a.Height
}

// ContainsRect reports whether every cell of r is in bounds.
func (a Area) ContainsRect(r Rect) bool {
	if r.Empty() {
		return false
	}
	return a.InBounds(Point{X: r.X, Y: r.Y}) && a.InBounds(Point{X: r.X + r.W - 1, Y: r.Y + r.H - 1})
}

// Center returns the middle cell of the area.
func (a Area) Center() Point {
	return Point{X: a.Width / 2, Y: a.Height / 2}
}
