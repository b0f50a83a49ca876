package round

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the base snake speed and whether food wanders.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

// ParseDifficulty accepts the difficulty name or its first letter,
// case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e", "easy":
		return Easy, nil
	case "n", "normal":
		return Normal, nil
	case "h", "hard":
		return Hard, nil
	}
	return Normal, fmt.Errorf("unknown difficulty %q", s)
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// BaseInterval is the step interval snakes start a round with.
func (d Difficulty) BaseInterval() time.Duration {
	switch d {
	case Easy:
		return 80 * time.Millisecond
	case Hard:
		return 50 * time.Millisecond
	default:
		return 60 * time.Millisecond
	}
}

// Wanders reports whether food moves on its own.
func (d Difficulty) Wanders() bool {
	return d == Hard
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}
