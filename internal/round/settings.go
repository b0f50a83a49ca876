package round

import (
	"fmt"
	"time"

	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/physics"
)

// MaxPlayers is the number of snakes a round supports.
const MaxPlayers = 2

// Settings are the tunables of a round that do not depend on difficulty.
type Settings struct {
	Area           physics.Area
	MaxFood        int // Active food items kept on the field
	Bulk           int // Food hit box size, see object.Food.Box
	FruitChance    int // Percent chance a new item is fruit
	StartLength    int
	Lives          int
	Stride         int           // Cells per logical step
	// WanderInterval is the minimum time between food wander steps. Zero
	// wanders on every tick; the default limits it to ten steps a second
	// so food stays catchable at 60 ticks a second.
	WanderInterval time.Duration
	Seed           uint64        // Zero seeds from the clock
}

// DefaultSettings returns the settings of a standard round.
func DefaultSettings() Settings {
	return Settings{
		Area:           physics.Area{Width: 119, Height: 76},
		MaxFood:        1,
		Bulk:           object.DefaultBulk,
		FruitChance:    10,
		StartLength:    12,
		Lives:          3,
		Stride:         1,
		WanderInterval: 100 * time.Millisecond,
	}
}

// Validate checks that a round can be played with s.
func (s Settings) Validate() error {
	switch {
	case s.Area.Width < 10 || s.Area.Height < 10:
		return fmt.Errorf("area %dx%d is too small", s.Area.Width, s.Area.Height)
	case s.MaxFood < 1:
		return fmt.Errorf("max food %d must be positive", s.MaxFood)
	case s.Bulk < 0 || 2*s.Bulk+2 >= min(s.Area.Width, s.Area.Height):
		return fmt.Errorf("bulk %d does not fit the area", s.Bulk)
	case s.FruitChance < 0 || s.FruitChance > 100:
		return fmt.Errorf("fruit chance %d is not a percentage", s.FruitChance)
	case s.StartLength < 1:
		return fmt.Errorf("start length %d must be positive", s.StartLength)
	case s.Lives < 1 || s.Lives > 3:
		return fmt.Errorf("lives %d out of range 1..3", s.Lives)
	case s.Stride < 1:
		return fmt.Errorf("stride %d must be positive", s.Stride)
	case s.WanderInterval < 0:
		return fmt.Errorf("wander interval %v is negative", s.WanderInterval)
	}
	return nil
}

// StartPos returns the spawn cell of the player in slot.
func (s Settings) StartPos(slot int) physics.Point {
	if slot == 0 {
		return s.Area.Center()
	}
	return physics.Pt(s.Area.Width/3, s.Area.Height/3)
}
