package round

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/physics"
)

// ErrInvalidSnapshot is returned by Restore for snapshots that break
// round invariants.
var ErrInvalidSnapshot = errors.New("invalid round snapshot")

// Snapshot is the persisted form of a round. Every saved field is listed
// explicitly; adding a field to Snake or Food does not change it.
type Snapshot struct {
	ID         string           `msgpack:"id"`
	Difficulty Difficulty       `msgpack:"difficulty"`
	Settings   Settings         `msgpack:"settings"`
	Players    []PlayerSnapshot `msgpack:"players"`
	Foods      []FoodSnapshot   `msgpack:"foods"`
}

// PlayerSnapshot is the saved state of one player and their snake.
type PlayerSnapshot struct {
	Name         string           `msgpack:"name"`
	Slot         int              `msgpack:"slot"`
	StartPos     physics.Point    `msgpack:"start_pos"`
	Pos          physics.Point    `msgpack:"pos"`
	Dir          object.Direction `msgpack:"dir"`
	Body         []physics.Point  `msgpack:"body"`
	Length       int              `msgpack:"length"`
	StartLength  int              `msgpack:"start_length"`
	Stride       int              `msgpack:"stride"`
	BaseInterval time.Duration    `msgpack:"base_interval"`
	StepInterval time.Duration    `msgpack:"step_interval"`
	Lives        int              `msgpack:"lives"`
	StartLives   int              `msgpack:"start_lives"`
	Score        int              `msgpack:"score"`
	Playing      bool             `msgpack:"playing"`
}

// FoodSnapshot is the saved state of one food item.
type FoodSnapshot struct {
	Pos    physics.Point `msgpack:"pos"`
	Bulk   int           `msgpack:"bulk"`
	Points int           `msgpack:"points"`
	Dir    physics.Point `msgpack:"dir"`
	Phase  int           `msgpack:"phase"`
	Eaten  bool          `msgpack:"eaten"`
}

// Snapshot captures the round for a later Restore.
func (r *Round) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:         r.ID.String(),
		Difficulty: r.Difficulty,
		Settings:   r.Settings,
	}
	for _, p := range r.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			Name:         p.Name,
			Slot:         p.Slot,
			StartPos:     p.StartPos,
			Pos:          p.Pos,
			Dir:          p.Dir,
			Body:         append([]physics.Point(nil), p.Body...),
			Length:       p.Length,
			StartLength:  p.StartLength,
			Stride:       p.Stride,
			BaseInterval: p.BaseInterval,
			StepInterval: p.StepInterval,
			Lives:        p.Lives,
			StartLives:   p.StartLives,
			Score:        p.Score,
			Playing:      p.Playing,
		})
	}
	for _, f := range r.Foods {
		snap.Foods = append(snap.Foods, FoodSnapshot{
			Pos:    f.Pos,
			Bulk:   f.Bulk,
			Points: f.Points,
			Dir:    f.Dir,
			Phase:  f.Phase,
			Eaten:  f.Eaten(),
		})
	}
	return snap
}

// Restore rebuilds a round from snap. Step timing starts on the first
// Tick. A snapshot that breaks any round invariant is rejected with
// ErrInvalidSnapshot.
func Restore(snap *Snapshot, opts ...Option) (*Round, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidSnapshot)
	}
	if err := snap.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	r := newRound(snap.Settings, snap.Difficulty, opts)
	if id, err := uuid.Parse(snap.ID); err == nil {
		r.setID(id)
	}
	for _, ps := range snap.Players {
		s := &object.Snake{
			StartPos:     ps.StartPos,
			Pos:          ps.Pos,
			Dir:          ps.Dir,
			Body:         append([]physics.Point(nil), ps.Body...),
			Length:       ps.Length,
			StartLength:  ps.StartLength,
			Stride:       ps.Stride,
			BaseInterval: ps.BaseInterval,
			StepInterval: ps.StepInterval,
			Lives:        ps.Lives,
			StartLives:   ps.StartLives,
			Score:        ps.Score,
			Playing:      ps.Playing,
		}
		r.addPlayer(&Player{Snake: s, Controls: Controls{Name: ps.Name, Slot: ps.Slot}})
	}
	for _, fs := range snap.Foods {
		f := object.FoodAt(fs.Pos, fs.Bulk, fs.Points)
		f.Dir = fs.Dir
		f.Phase = fs.Phase
		if fs.Eaten {
			f.MarkEaten()
		}
		r.Foods = append(r.Foods, f)
	}
	r.running = r.Playing() > 0
	r.replenish()

	r.log.Info().
		Str("difficulty", r.Difficulty.String()).
		Int("players", len(r.Players)).
		Msg("Round restored")
	return r, nil
}

func (snap *Snapshot) validate() error {
	if !snap.Difficulty.Valid() {
		return fmt.Errorf("difficulty %d", snap.Difficulty)
	}
	if err := snap.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if len(snap.Players) < 1 || len(snap.Players) > MaxPlayers {
		return fmt.Errorf("%d players", len(snap.Players))
	}

	area := snap.Settings.Area
	slots := make(map[int]bool)
	for i, p := range snap.Players {
		if slots[p.Slot] || p.Slot < 0 || p.Slot >= MaxPlayers {
			return fmt.Errorf("player %d: slot %d", i, p.Slot)
		}
		slots[p.Slot] = true

		switch {
		case !p.Dir.Valid():
			return fmt.Errorf("player %d: direction %+v", i, p.Dir)
		case p.Length < 1 || len(p.Body) > p.Length:
			return fmt.Errorf("player %d: body of %d cells exceeds length %d", i, len(p.Body), p.Length)
		case p.Stride < 1:
			return fmt.Errorf("player %d: stride %d", i, p.Stride)
		case p.StepInterval <= 0 || p.StepInterval > p.BaseInterval:
			return fmt.Errorf("player %d: step interval %v", i, p.StepInterval)
		case p.Lives < 0 || p.Lives > p.StartLives:
			return fmt.Errorf("player %d: lives %d", i, p.Lives)
		case p.Playing && p.Lives == 0:
			return fmt.Errorf("player %d: playing without lives", i)
		case p.Score < 0:
			return fmt.Errorf("player %d: score %d", i, p.Score)
		case !area.InBounds(p.StartPos):
			return fmt.Errorf("player %d: start %v out of bounds", i, p.StartPos)
		case p.Playing && !area.InBounds(p.Pos):
			return fmt.Errorf("player %d: head %v out of bounds", i, p.Pos)
		case len(p.Body) > 0 && p.Body[0] != p.Pos:
			return fmt.Errorf("player %d: head %v is not the first body cell", i, p.Pos)
		}
		for _, c := range p.Body {
			if !area.InBounds(c) {
				return fmt.Errorf("player %d: body cell %v out of bounds", i, c)
			}
		}
	}

	for i, f := range snap.Foods {
		if f.Points <= 0 || f.Bulk < 0 {
			return fmt.Errorf("food %d: points %d, bulk %d", i, f.Points, f.Bulk)
		}
	}
	return nil
}
