package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAreaInBounds(t *testing.T) {
	area := Area{Width: 20, Height: 10}
	for _, tc := range []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Pt(5, 5), true},
		{"first open cell", Pt(1, 1), true},
		{"last open cell", Pt(19, 9), true},
		{"left wall", Pt(0, 5), false},
		{"top wall", Pt(5, 0), false},
		{"right wall", Pt(20, 5), false},
		{"bottom wall", Pt(5, 10), false},
		{"beyond right", Pt(21, 5), false},
		{"negative", Pt(-3, 5), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, area.InBounds(tc.p))
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 3, H: 2}

	assert.True(t, r.Contains(Pt(2, 3)))
	assert.True(t, r.Contains(Pt(4, 4)))
	assert.False(t, r.Contains(Pt(5, 4)), "right edge is exclusive")
	assert.False(t, r.Contains(Pt(4, 5)), "bottom edge is exclusive")
	assert.False(t, Rect{X: 2, Y: 3}.Contains(Pt(2, 3)), "an empty rect holds nothing")
}

func TestAreaContainsRect(t *testing.T) {
	area := Area{Width: 10, Height: 10}

	assert.True(t, area.ContainsRect(Rect{X: 1, Y: 1, W: 3, H: 3}))
	assert.True(t, area.ContainsRect(Rect{X: 7, Y: 7, W: 3, H: 3}))
	assert.False(t, area.ContainsRect(Rect{X: 8, Y: 7, W: 3, H: 3}))
	assert.False(t, area.ContainsRect(Rect{X: 0, Y: 4, W: 3, H: 3}))
}

func TestOccupancyGrid(t *testing.T) {
	g := NewOccupancyGrid(Area{Width: 10, Height: 10})
	g.InsertAll([]Point{Pt(2, 2), Pt(3, 2), Pt(3, 2)})
	g.Insert(Pt(40, 40))

	assert.True(t, g.Occupied(Pt(3, 2)))
	assert.False(t, g.Occupied(Pt(4, 2)))
	assert.False(t, g.Occupied(Pt(40, 40)), "off-grid points are dropped")
	assert.True(t, g.AnyIn(Rect{X: 3, Y: 1, W: 2, H: 2}))
	assert.False(t, g.AnyIn(Rect{X: 5, Y: 5, W: 3, H: 3}))

	g.Clear()
	assert.False(t, g.Occupied(Pt(2, 2)))
}
