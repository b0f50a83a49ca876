package loop

import (
	"fmt"
	"time"

	"github.com/tomz197/snakes/internal/config"
	"github.com/tomz197/snakes/internal/round"
)

// Game configuration constants.
// All tunable game parameters are centralized here for easy adjustment.

// Frame timing
const (
	targetFPS       = 60
	targetFrameTime = time.Second / targetFPS
)

// View resolution - the logical canvas in cells.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical width
	ViewHeight = 80  // Logical height (in sub-pixels, so 40 terminal rows)
)

// Game area. Row and column 0 and the far edges are walls; the rows
// below GameHeight hold the status line.
const (
	GameWidth  = ViewWidth - 1
	GameHeight = 76
	statusY    = GameHeight + 2 // Logical row of the status line
)

// Max render resolution. Larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = 240
	MaxTermHeight = 80
)

// Players
const (
	MaxNameLength = 12
)

// Inactivity, only enforced when Options.IdleTimeout is set.
const (
	idleWarnFraction = 0.75 // Show the warning after this share of the timeout
)

// Persistence defaults
const (
	DefaultSessionFile = "snakes-session.bin"
	DefaultScoresFile  = "snakes-scores.bin"
)

// DefaultSettings returns the round settings for the view's board.
func DefaultSettings() round.Settings {
	s := round.DefaultSettings()
	s.Area.Width = GameWidth
	s.Area.Height = GameHeight
	return s
}

// SettingsFromEnv returns DefaultSettings with the overrides SNAKES_LIVES,
// SNAKES_MAX_FOOD, SNAKES_START_LENGTH and SNAKES_FRUIT_CHANCE applied.
func SettingsFromEnv() (round.Settings, error) {
	s := DefaultSettings()
	s.Lives = config.GetEnvInt("SNAKES_LIVES", s.Lives)
	s.MaxFood = config.GetEnvInt("SNAKES_MAX_FOOD", s.MaxFood)
	s.StartLength = config.GetEnvInt("SNAKES_START_LENGTH", s.StartLength)
	s.FruitChance = config.GetEnvInt("SNAKES_FRUIT_CHANCE", s.FruitChance)
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings from environment: %w", err)
	}
	return s, nil
}
