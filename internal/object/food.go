package object

import "github.com/tomz197/snakes/internal/physics"

// Food scoring. Every item is worth FoodPoints unless it rolled as fruit.
// Growth depends only on whether the item is worth more than FoodPoints.
const (
	FoodPoints  = 10
	FruitPoints = 30
	FoodGrowth  = 10
	FruitGrowth = 20
	DefaultBulk = 2
)

// Food is a single edible item. Its position is the top-left corner of
// its hit box.
type Food struct {
	Pos    physics.Point
	Bulk   int
	Points int
	Dir    physics.Point // Wandering heading, components in {-1, 0, 1}
	Phase  int           // Animation counter, advanced once per tick
	eaten  bool
}

// NewFood places a food item uniformly in [bulk, size-bulk) on both axes.
// fruitChance is a percentage; a successful roll makes the item fruit.
func NewFood(rng Rand, area physics.Area, bulk, fruitChance int) *Food {
	f := &Food{
		Pos: physics.Point{
			X: spawnCoord(rng, area.Width, bulk),
			Y: spawnCoord(rng, area.Height, bulk),
		},
		Bulk:   bulk,
		Points: FoodPoints,
	}
	if fruitChance > 0 && rng.Intn(100) < fruitChance {
		f.Points = FruitPoints
	}
	return f
}

// FoodAt creates an uneaten item at a fixed position.
func FoodAt(pos physics.Point, bulk, points int) *Food {
	return &Food{Pos: pos, Bulk: bulk, Points: points}
}

// spawnCoord picks a coordinate in [lo, size-bulk) where lo keeps the item
// off the wall at 0.
func spawnCoord(rng Rand, size, bulk int) int {
	lo := max(bulk, 1)
	hi := size - bulk
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}

// Box returns the cells covered by the item. Items with a bulk of 0 or 1
// are single cells; larger items cover [x, x+bulk] on both axes, edges
// included.
func (f *Food) Box() physics.Rect {
	if f.Bulk <= 1 {
		return physics.Rect{X: f.Pos.X, Y: f.Pos.Y, W: 1, H: 1}
	}
	return physics.Rect{X: f.Pos.X, Y: f.Pos.Y, W: f.Bulk + 1, H: f.Bulk + 1}
}

// BeingEaten reports whether a head at p is inside the hit box.
func (f *Food) BeingEaten(p physics.Point) bool {
	return f.Box().Contains(p)
}

// NutritionalValue is the length a snake gains by eating the item.
func (f *Food) NutritionalValue() int {
	if f.Points > FoodPoints {
		return FruitGrowth
	}
	return FoodGrowth
}

// IsFruit reports whether the item rolled as fruit.
func (f *Food) IsFruit() bool {
	return f.Points > FoodPoints
}

// MarkEaten flags the item. It is one-way.
func (f *Food) MarkEaten() {
	f.eaten = true
}

// Eaten reports whether the item has been eaten.
func (f *Food) Eaten() bool {
	return f.eaten
}

// Advance moves the animation phase forward by one tick.
func (f *Food) Advance() {
	f.Phase++
}

// Wander takes one wandering step. Half of the time the heading is
// re-rolled first. A step that would leave the area or touch an occupied
// cell is reverted, not retried. Returns true if the item moved.
func (f *Food) Wander(rng Rand, area physics.Area, occupied *physics.OccupancyGrid) bool {
	if f.eaten {
		return false
	}
	if rng.Intn(2) == 0 {
		f.Dir = physics.Point{X: rng.Intn(3) - 1, Y: rng.Intn(3) - 1}
	}

	if f.Dir == (physics.Point{}) {
		return false
	}
	box := f.Box().Translate(f.Dir)
	if !area.ContainsRect(box) || (occupied != nil && occupied.AnyIn(box)) {
		return false
	}
	f.Pos = f.Pos.Add(f.Dir)
	return true
}
