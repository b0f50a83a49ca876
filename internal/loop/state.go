package loop

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/tomz197/snakes/internal/input"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

// Screen is the current phase of the frame loop.
type Screen int

const (
	ScreenMenu       Screen = iota // Player count, difficulty, continue
	ScreenNames                    // Name entry, one player at a time
	ScreenPlaying                  // Round in progress
	ScreenPaused                   // Round suspended
	ScreenHighScores               // Table, shown after a round or from the menu
	ScreenPlayAgain                // Prompt after the high scores of a finished round
)

func (s Screen) String() string {
	switch s {
	case ScreenMenu:
		return "menu"
	case ScreenNames:
		return "names"
	case ScreenPlaying:
		return "playing"
	case ScreenPaused:
		return "paused"
	case ScreenHighScores:
		return "high_scores"
	case ScreenPlayAgain:
		return "play_again"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Game holds everything the frame loop owns: the screen state machine,
// the round in progress and the persistence collaborators. Update is the
// only mutator and is called once per frame.
type Game struct {
	Screen     Screen
	Running    bool
	Round      *round.Round
	Players    int
	Difficulty round.Difficulty
	Names      []string
	NameBuf    []byte
	Scores     *store.HighScores
	NewRanks   []int  // Ranks inserted at the last round end, for highlighting
	Notice     string // One-line message shown on the menu

	settings round.Settings
	sessions store.SessionStore
	scores   store.ScoreStore
	log      zerolog.Logger

	afterScores Screen
	lastInput   time.Time
	idleTimeout time.Duration
	idleWarning bool
	dirty       bool // Text screens need a redraw
	err         error
}

// NewGame creates a game on the menu screen.
func NewGame(opts Options, scores *store.HighScores) *Game {
	settings := opts.Settings
	if settings == (round.Settings{}) {
		settings = DefaultSettings()
	}
	return &Game{
		Screen:      ScreenMenu,
		Running:     true,
		Players:     1,
		Difficulty:  opts.Difficulty,
		Scores:      scores,
		settings:    settings,
		sessions:    opts.Sessions,
		scores:      opts.Scores,
		log:         opts.Logger,
		idleTimeout: opts.IdleTimeout,
		dirty:       true,
	}
}

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error {
	return g.err
}

// Update handles one frame: input first, then the simulation when a
// round is being played.
func (g *Game) Update(in input.Input, now time.Time) {
	if g.lastInput.IsZero() || len(in.Events) > 0 {
		g.lastInput = now
		if g.idleWarning {
			g.idleWarning = false
			g.dirty = true
		}
	}
	if len(in.Events) > 0 {
		g.dirty = true
	}

	if in.Interrupted() {
		g.quit("interrupted")
		return
	}
	if g.checkIdle(now) {
		return
	}

	switch g.Screen {
	case ScreenMenu:
		g.updateMenu(in, now)
	case ScreenNames:
		g.updateNames(in, now)
	case ScreenPlaying:
		g.updatePlaying(in, now)
	case ScreenPaused:
		g.updatePaused(in, now)
	case ScreenHighScores:
		g.updateHighScores(in)
	case ScreenPlayAgain:
		g.updatePlayAgain(in, now)
	}
}

// checkIdle warns and then disconnects an idle player. Returns true when
// the game was stopped.
func (g *Game) checkIdle(now time.Time) bool {
	if g.idleTimeout <= 0 {
		return false
	}
	idle := now.Sub(g.lastInput)
	if idle >= g.idleTimeout {
		g.quit("idle")
		return true
	}
	warn := time.Duration(float64(g.idleTimeout) * idleWarnFraction)
	if idle >= warn && !g.idleWarning {
		g.idleWarning = true
		g.dirty = true
	}
	return false
}

func (g *Game) setScreen(s Screen) {
	if s != g.Screen {
		g.log.Debug().Str("from", g.Screen.String()).Str("to", s.String()).Msg("Screen change")
	}
	g.Screen = s
	g.dirty = true
}

// quit stops the loop. The session and scores are persisted by Close.
func (g *Game) quit(reason string) {
	g.log.Info().Str("reason", reason).Str("screen", g.Screen.String()).Msg("Quit")
	g.Running = false
}

// fail stops the loop with err.
func (g *Game) fail(err error) {
	g.log.Error().Err(err).Msg("Game stopped")
	g.err = err
	g.Running = false
}

// inRound reports whether a round is in progress and worth saving.
func (g *Game) inRound() bool {
	return g.Round != nil && g.Round.Running() &&
		(g.Screen == ScreenPlaying || g.Screen == ScreenPaused)
}

// saveSession persists the round in progress, if any.
func (g *Game) saveSession() error {
	if !g.inRound() {
		return nil
	}
	if err := g.sessions.Save(g.Round.Snapshot()); err != nil {
		return err
	}
	g.log.Info().Str("round_id", g.Round.ID.String()).Msg("Session saved")
	return nil
}

// Close persists the round in progress. High scores are written when a
// round ends, never here, so a stale copy cannot overwrite what other
// games saved. Every failure is reported.
func (g *Game) Close() error {
	var merr *multierror.Error
	if err := g.saveSession(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if g.err != nil {
		merr = multierror.Append(merr, g.err)
	}
	return merr.ErrorOrNil()
}

// startRound creates a fresh round for the entered names.
func (g *Game) startRound(now time.Time) {
	r, err := round.New(g.settings, g.Difficulty, g.Names, round.WithLogger(g.log))
	if err != nil {
		g.fail(fmt.Errorf("start round: %w", err))
		return
	}
	g.Round = r
	g.Round.Resume(now)
	g.setScreen(ScreenPlaying)
}

// continueRound resumes the saved session.
func (g *Game) continueRound(now time.Time) {
	snap, err := g.sessions.Load()
	if errors.Is(err, store.ErrNoSession) {
		g.Notice = "No saved game"
		return
	}
	if err != nil {
		g.fail(err)
		return
	}
	r, err := round.Restore(snap, round.WithLogger(g.log))
	if err != nil {
		g.fail(fmt.Errorf("%s: %w", g.sessions.Path, err))
		return
	}
	if !r.Running() {
		g.Notice = "Saved game was already over"
		if err := g.sessions.Clear(); err != nil {
			g.log.Warn().Err(err).Msg("Clear finished session")
		}
		return
	}

	g.Round = r
	g.Players = len(r.Players)
	g.Difficulty = r.Difficulty
	g.Names = g.Names[:0]
	for _, p := range r.Players {
		g.Names = append(g.Names, p.Name)
	}
	g.Round.Resume(now)
	g.setScreen(ScreenPlaying)
}

// finishRound records qualifying scores and drops the finished session.
func (g *Game) finishRound() {
	g.NewRanks = g.NewRanks[:0]

	// Entries on disk only ever rise, so a score that misses the table we
	// hold misses the current one too.
	var qualified []round.Result
	for _, res := range g.Round.Results() {
		if g.Scores.Qualifies(res.Score) {
			qualified = append(qualified, res)
		}
	}
	if len(qualified) > 0 {
		hs, err := g.scores.Update(func(hs *store.HighScores) bool {
			g.NewRanks = g.NewRanks[:0]
			for _, res := range qualified {
				rank, ok := hs.Insert(res.Name, res.Score)
				if !ok {
					continue
				}
				for i, r := range g.NewRanks {
					if r >= rank {
						g.NewRanks[i]++
					}
				}
				g.NewRanks = append(g.NewRanks, rank)
			}
			// A later insert can push an earlier one off the table.
			g.NewRanks = slices.DeleteFunc(g.NewRanks, func(r int) bool { return r >= store.Capacity })
			return len(g.NewRanks) > 0
		})
		if err != nil {
			g.log.Error().Err(err).Msg("Save high scores")
			g.NewRanks = g.NewRanks[:0]
		} else {
			g.Scores = hs
			for _, rank := range g.NewRanks {
				e := hs.Entries[rank]
				g.log.Info().Str("player", e.Name).Int("score", e.Score).Int("rank", rank+1).Msg("New high score")
			}
		}
	}
	if err := g.sessions.Clear(); err != nil {
		g.log.Warn().Err(err).Msg("Clear session")
	}
	g.afterScores = ScreenPlayAgain
	g.setScreen(ScreenHighScores)
}

// refreshScores rereads the table other games may have changed.
func (g *Game) refreshScores() {
	hs, err := g.scores.Load()
	if err != nil {
		g.log.Warn().Err(err).Msg("Reload high scores")
		return
	}
	g.Scores = hs
}

// toMenu saves the round in progress and returns to the menu.
func (g *Game) toMenu() {
	if err := g.saveSession(); err != nil {
		g.log.Error().Err(err).Msg("Save session")
		g.Notice = "Could not save the game"
	}
	g.Round = nil
	g.setScreen(ScreenMenu)
}
