package object

import (
	"slices"
	"time"

	"github.com/tomz197/snakes/internal/physics"
)

// Difficulty ramp. Every SpeedupScore points shave SpeedupStep off the step
// interval, never going below MinStepInterval.
const (
	SpeedupScore    = 50
	SpeedupStep     = 5 * time.Millisecond
	MinStepInterval = 25 * time.Millisecond
)

// MaxCatchUpSteps caps how many logical steps one Update may process after
// a slow frame. Time beyond the cap is dropped.
const MaxCatchUpSteps = 4

// SnakeConfig holds the starting values of a snake.
type SnakeConfig struct {
	Start    physics.Point
	Length   int
	Lives    int
	Stride   int           // Cells advanced per logical step
	Interval time.Duration // Base step interval
}

// Snake is the simulated body of one player.
//
// Body holds the occupied cells, head first. It never holds more than
// Length cells. Pos is the head cell and is always in bounds while the
// snake is playing.
type Snake struct {
	StartPos     physics.Point
	Pos          physics.Point
	Dir          Direction
	Body         []physics.Point
	Length       int
	StartLength  int
	Stride       int
	BaseInterval time.Duration
	StepInterval time.Duration
	Lives        int
	StartLives   int
	Score        int
	Playing      bool
	Crashed      bool

	lastStep time.Time
	turned   bool // A turn was accepted since the last committed step
}

// NewSnake creates a playing snake at cfg.Start heading up with an empty body.
func NewSnake(cfg SnakeConfig) *Snake {
	stride := cfg.Stride
	if stride < 1 {
		stride = 1
	}
	return &Snake{
		StartPos:     cfg.Start,
		Pos:          cfg.Start,
		Dir:          Up,
		Length:       cfg.Length,
		StartLength:  cfg.Length,
		Stride:       stride,
		BaseInterval: cfg.Interval,
		StepInterval: cfg.Interval,
		Lives:        cfg.Lives,
		StartLives:   cfg.Lives,
		Playing:      true,
	}
}

// Head returns the head cell.
func (s *Snake) Head() physics.Point {
	return s.Pos
}

// Turn changes the heading. Reversals, invalid headings, no-op turns and
// a second turn within the same logical step are rejected.
func (s *Snake) Turn(d Direction) bool {
	if !s.Playing || s.turned || !d.Valid() || d == s.Dir || d.IsReverse(s.Dir) {
		return false
	}
	s.Dir = d
	s.turned = true
	return true
}

// Resume restarts step timing at now, so time spent suspended does not
// turn into a burst of steps.
func (s *Snake) Resume(now time.Time) {
	s.lastStep = now
}

// Update advances the snake by every whole step interval elapsed since the
// last step. The first call only starts the clock. snakes is every snake
// of the round, s included; their bodies are read, never written.
// Returns the number of steps committed. A step that would crash is not
// committed and leaves Crashed set.
func (s *Snake) Update(now time.Time, area physics.Area, snakes []*Snake) int {
	if !s.Playing || s.Crashed {
		return 0
	}
	if s.lastStep.IsZero() {
		s.lastStep = now
		return 0
	}

	elapsed := now.Sub(s.lastStep)
	if s.StepInterval <= 0 || elapsed < s.StepInterval {
		return 0
	}

	steps := int(elapsed / s.StepInterval)
	if steps > MaxCatchUpSteps {
		steps = MaxCatchUpSteps
		s.lastStep = now
	} else {
		s.lastStep = s.lastStep.Add(time.Duration(steps) * s.StepInterval)
	}

	for i := 0; i < steps; i++ {
		if !s.step(area, snakes) {
			return i
		}
	}
	return steps
}

// step looks ahead over every cell the head crosses during one logical
// step, then commits the move.
func (s *Snake) step(area physics.Area, snakes []*Snake) bool {
	delta := s.Dir.Delta()

	for i := 1; i <= s.Stride; i++ {
		if s.CheckCrash(s.Pos.Add(delta.Scale(i)), area, snakes) {
			s.Crashed = true
			return false
		}
	}

	for i := 0; i < s.Stride; i++ {
		s.Pos = s.Pos.Add(delta)
		s.Body = slices.Insert(s.Body, 0, s.Pos)
		if len(s.Body) > s.Length {
			s.Body = s.Body[:s.Length]
		}
	}
	s.turned = false
	return true
}

// CheckCrash reports whether a head entering cell would crash: the cell is
// on or past a wall, or any snake's body (own included) occupies it.
// Bodies of game-over snakes stay on the field and still count.
func (s *Snake) CheckCrash(cell physics.Point, area physics.Area, snakes []*Snake) bool {
	if !area.InBounds(cell) {
		return true
	}
	for _, other := range snakes {
		if slices.Contains(other.Body, cell) {
			return true
		}
	}
	return false
}

// Eat checks the head against foods and eats the first uneaten match.
// Returns the eaten item or nil.
func (s *Snake) Eat(foods []*Food) *Food {
	if !s.Playing {
		return nil
	}
	for _, f := range foods {
		if f.Eaten() || !f.BeingEaten(s.Pos) {
			continue
		}
		s.Score += f.Points
		s.Length += f.NutritionalValue()
		f.MarkEaten()
		if next := StepIntervalFor(s.BaseInterval, s.Score); next < s.StepInterval {
			s.StepInterval = next
		}
		return f
	}
	return nil
}

// StepIntervalFor returns the step interval a snake with the given base
// interval earns at score.
func StepIntervalFor(base time.Duration, score int) time.Duration {
	interval := base - time.Duration(score/SpeedupScore)*SpeedupStep
	if interval < MinStepInterval {
		interval = MinStepInterval
	}
	if interval > base {
		interval = base
	}
	return interval
}

// HandleCrash consumes the Crashed flag. A life is lost; with lives left
// the snake respawns, otherwise it stops playing and its body stays where
// it died. Returns true when the snake is out of lives.
func (s *Snake) HandleCrash() (gameOver bool) {
	if !s.Crashed {
		return false
	}
	s.Lives--
	if s.Lives > 0 {
		s.Respawn()
		return false
	}
	s.Lives = 0
	s.Crashed = false
	s.Playing = false
	return true
}

// Respawn is the soft reset after losing a life. Score, length and speed
// are kept.
func (s *Snake) Respawn() {
	s.Body = nil
	s.Pos = s.StartPos
	s.Dir = Up
	s.Crashed = false
	s.turned = false
}

// Reset is the full reset for a new round.
func (s *Snake) Reset() {
	s.Respawn()
	s.Score = 0
	s.Length = s.StartLength
	s.Lives = s.StartLives
	s.StepInterval = s.BaseInterval
	s.Playing = true
	s.lastStep = time.Time{}
}

// SegmentShape tells a renderer how a body cell connects to its neighbours.
type SegmentShape int

const (
	SegmentHead SegmentShape = iota
	SegmentHorizontal
	SegmentVertical
	SegmentCorner
	SegmentTail
)

// Segment is one body cell with its shape.
type Segment struct {
	Pos   physics.Point
	Shape SegmentShape
}

// Segments returns the body with shapes derived from each cell's
// neighbours. The head cell is always SegmentHead.
func (s *Snake) Segments() []Segment {
	segs := make([]Segment, len(s.Body))
	for i, p := range s.Body {
		segs[i] = Segment{Pos: p, Shape: segmentShape(s.Body, i)}
	}
	return segs
}

func segmentShape(body []physics.Point, i int) SegmentShape {
	switch {
	case i == 0:
		return SegmentHead
	case i == len(body)-1:
		return SegmentTail
	}
	prev, next := body[i-1], body[i+1]
	switch {
	case prev.Y == next.Y:
		return SegmentHorizontal
	case prev.X == next.X:
		return SegmentVertical
	default:
		return SegmentCorner
	}
}
