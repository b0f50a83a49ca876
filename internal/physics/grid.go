package physics

// OccupancyGrid is a dense per-cell counter over an Area, rebuilt from the
// current body cells whenever an overlap query is about to be made.
// Counting (rather than flagging) lets bodies that cross each other be
// inserted without losing cells.
type OccupancyGrid struct {
	area  Area
	cols  int
	rows  int
	cells []uint16
}

// NewOccupancyGrid creates a grid covering every cell of the area,
// walls included.
func NewOccupancyGrid(area Area) *OccupancyGrid {
	cols := area.Width + 1
	rows := area.Height + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &OccupancyGrid{
		area:  area,
		cols:  cols,
		rows:  rows,
		cells: make([]uint16, cols*rows),
	}
}

// Clear removes every cell without deallocating.
func (g *OccupancyGrid) Clear() {
	clear(g.cells)
}

// Insert marks p as occupied. Points off the grid are ignored.
func (g *OccupancyGrid) Insert(p Point) {
	if idx, ok := g.index(p); ok {
		g.cells[idx]++
	}
}

// InsertAll marks every point of ps as occupied.
func (g *OccupancyGrid) InsertAll(ps []Point) {
	for _, p := range ps {
		g.Insert(p)
	}
}

// Occupied reports whether any inserted point lies on p.
func (g *OccupancyGrid) Occupied(p Point) bool {
	idx, ok := g.index(p)
	return ok && g.cells[idx] > 0
}

// AnyIn reports whether any cell of r is occupied.
func (g *OccupancyGrid) AnyIn(r Rect) bool {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			if g.Occupied(Point{X: x, Y: y}) {
				return true
			}
		}
	}
	return false
}

func (g *OccupancyGrid) index(p Point) (int, bool) {
	if p.X < 0 || p.X >= g.cols || p.Y < 0 || p.Y >= g.rows {
		return 0, false
	}
	return p.Y*g.cols + p.X, true
}
