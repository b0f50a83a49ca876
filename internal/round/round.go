// Package round drives one game of snake: it owns the snakes and food,
// steps them in a fixed order each tick and reports what happened as
// events.
package round

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/physics"
)

// Controls attach a human to a snake.
type Controls struct {
	Name string
	Slot int // Key set index, 0 = arrows, 1 = WASD
}

// Player is a snake driven by a human.
type Player struct {
	*object.Snake
	Controls
}

// Turn is a heading request from the player in Slot.
type Turn struct {
	Slot int
	Dir  object.Direction
}

// EventKind tells what happened in an Event.
type EventKind int

const (
	EventAte EventKind = iota
	EventCrashed
	EventLifeLost
	EventGameOver
	EventRoundOver
)

func (k EventKind) String() string {
	switch k {
	case EventAte:
		return "ate"
	case EventCrashed:
		return "crashed"
	case EventLifeLost:
		return "life_lost"
	case EventGameOver:
		return "game_over"
	case EventRoundOver:
		return "round_over"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event reports a state change of one tick. Slot is -1 for round events.
type Event struct {
	Kind   EventKind
	Slot   int
	Points int // Points of the eaten item for EventAte
	Score  int
	Lives  int
}

// Result is the final score of one player.
type Result struct {
	Name  string
	Slot  int
	Score int
}

// Option configures a Round.
type Option func(*Round)

// WithLogger sets the logger round events are written to.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Round) {
		r.base = l
	}
}

// WithRand replaces the random source seeded from Settings.Seed.
func WithRand(rng object.Rand) Option {
	return func(r *Round) {
		r.rng = rng
	}
}

// Round is the state of one game. It is not safe for concurrent use;
// a single frame loop owns it.
type Round struct {
	ID         uuid.UUID
	Settings   Settings
	Difficulty Difficulty
	Players    []*Player
	Foods      []*object.Food

	snakes     []*object.Snake
	running    bool
	lastWander time.Time
	rng        object.Rand
	grid       *physics.OccupancyGrid
	base       zerolog.Logger
	log        zerolog.Logger
}

// New creates a running round with one snake per name. Empty names
// default to "Player N".
func New(settings Settings, difficulty Difficulty, names []string, opts ...Option) (*Round, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", difficulty)
	}
	if len(names) < 1 || len(names) > MaxPlayers {
		return nil, fmt.Errorf("need 1 to %d players, got %d", MaxPlayers, len(names))
	}

	r := newRound(settings, difficulty, opts)
	for slot, name := range names {
		if name == "" {
			name = fmt.Sprintf("Player %d", slot+1)
		}
		r.addPlayer(&Player{
			Snake: object.NewSnake(object.SnakeConfig{
				Start:    settings.StartPos(slot),
				Length:   settings.StartLength,
				Lives:    settings.Lives,
				Stride:   settings.Stride,
				Interval: difficulty.BaseInterval(),
			}),
			Controls: Controls{Name: name, Slot: slot},
		})
	}
	r.running = true
	r.replenish()

	r.log.Info().
		Str("difficulty", difficulty.String()).
		Int("players", len(r.Players)).
		Msg("Round started")
	return r, nil
}

func newRound(settings Settings, difficulty Difficulty, opts []Option) *Round {
	r := &Round{
		ID:         uuid.New(),
		Settings:   settings,
		Difficulty: difficulty,
		grid:       physics.NewOccupancyGrid(settings.Area),
		base:       zerolog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		seed := settings.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		r.rng = rand.New(rand.NewSource(seed))
	}
	r.setID(r.ID)
	return r
}

func (r *Round) setID(id uuid.UUID) {
	r.ID = id
	r.log = r.base.With().Str("round_id", id.String()).Logger()
}

func (r *Round) addPlayer(p *Player) {
	r.Players = append(r.Players, p)
	r.snakes = append(r.snakes, p.Snake)
}

// Running reports whether at least one snake is still playing.
func (r *Round) Running() bool {
	return r.running
}

// Playing returns the number of snakes still playing.
func (r *Round) Playing() int {
	n := 0
	for _, p := range r.Players {
		if p.Playing {
			n++
		}
	}
	return n
}

// Player returns the player in slot, or nil.
func (r *Round) Player(slot int) *Player {
	for _, p := range r.Players {
		if p.Slot == slot {
			return p
		}
	}
	return nil
}

// Tick runs one frame of simulation at now:
//
//  1. turns are applied to their players,
//  2. each playing snake eats, moves and handles a crash, one snake at a time,
//  3. the round ends when no snake is playing,
//  4. eaten food is removed and replaced,
//  5. food wanders on hard difficulty.
//
// Tick does nothing once the round is over.
func (r *Round) Tick(now time.Time, turns []Turn) []Event {
	if !r.running {
		return nil
	}
	var events []Event

	for _, t := range turns {
		if p := r.Player(t.Slot); p != nil {
			p.Turn(t.Dir)
		}
	}

	for _, p := range r.Players {
		if !p.Playing {
			continue
		}
		if f := p.Eat(r.Foods); f != nil {
			events = append(events, r.event(EventAte, p, f.Points))
		}
		p.Update(now, r.Settings.Area, r.snakes)
		if !p.Crashed {
			continue
		}
		events = append(events, r.event(EventCrashed, p, 0))
		if p.HandleCrash() {
			events = append(events, r.event(EventGameOver, p, 0))
		} else {
			events = append(events, r.event(EventLifeLost, p, 0))
		}
	}

	if r.Playing() == 0 {
		r.running = false
		events = append(events, Event{Kind: EventRoundOver, Slot: -1})
		r.log.Info().Msg("Round over")
	}

	r.replenish()
	r.wander(now)
	return events
}

func (r *Round) event(kind EventKind, p *Player, points int) Event {
	ev := Event{Kind: kind, Slot: p.Slot, Points: points, Score: p.Score, Lives: p.Lives}
	r.log.Info().
		Str("player", p.Name).
		Int("score", p.Score).
		Int("lives", p.Lives).
		Msg(kind.String())
	return ev
}

// replenish removes eaten food and spawns new items up to MaxFood.
func (r *Round) replenish() {
	r.Foods = slices.DeleteFunc(r.Foods, (*object.Food).Eaten)
	for len(r.Foods) < r.Settings.MaxFood {
		f := object.NewFood(r.rng, r.Settings.Area, r.Settings.Bulk, r.Settings.FruitChance)
		r.Foods = append(r.Foods, f)
		r.log.Debug().
			Int("x", f.Pos.X).
			Int("y", f.Pos.Y).
			Int("points", f.Points).
			Msg("Food spawned")
	}
}

// wander advances food animation and, on difficulties where food moves,
// steps every item at most once per WanderInterval.
func (r *Round) wander(now time.Time) {
	for _, f := range r.Foods {
		f.Advance()
	}
	if !r.Difficulty.Wanders() {
		return
	}
	if !r.lastWander.IsZero() && now.Sub(r.lastWander) < r.Settings.WanderInterval {
		return
	}
	r.lastWander = now

	r.grid.Clear()
	for _, s := range r.snakes {
		r.grid.InsertAll(s.Body)
	}
	for _, f := range r.Foods {
		f.Wander(r.rng, r.Settings.Area, r.grid)
	}
}

// Resume restarts step timing after the round was suspended, so paused
// time does not produce a burst of steps.
func (r *Round) Resume(now time.Time) {
	for _, s := range r.snakes {
		s.Resume(now)
	}
	r.lastWander = now
}

// Reset starts a new round with the same players: every snake is fully
// reset and the food is respawned.
func (r *Round) Reset() {
	r.setID(uuid.New())
	for _, s := range r.snakes {
		s.Reset()
	}
	r.Foods = nil
	r.lastWander = time.Time{}
	r.running = true
	r.replenish()
	r.log.Info().Msg("Round reset")
}

// Results returns every player's score, best first. Ties keep slot order.
func (r *Round) Results() []Result {
	res := make([]Result, 0, len(r.Players))
	for _, p := range r.Players {
		res = append(res, Result{Name: p.Name, Slot: p.Slot, Score: p.Score})
	}
	slices.SortStableFunc(res, func(a, b Result) int {
		return b.Score - a.Score
	})
	return res
}
