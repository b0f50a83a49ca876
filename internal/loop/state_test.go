package loop

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/snakes/internal/draw"
	"github.com/tomz197/snakes/internal/input"
	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/physics"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func typed(s string) input.Input {
	return input.Input{Events: input.Parse([]byte(s))}
}

func key(k input.Key) input.Input {
	return input.Input{Events: []input.Event{{Key: k, Player: input.NoPlayer}}}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		Sessions:   store.SessionStore{Path: filepath.Join(dir, DefaultSessionFile)},
		Scores:     store.ScoreStore{Path: filepath.Join(dir, DefaultScoresFile)},
		Logger:     zerolog.Nop(),
		Difficulty: round.Normal,
	}
}

// smallSettings gives a board where a snake going up from the center
// reaches the wall after four steps.
func smallSettings() round.Settings {
	s := round.DefaultSettings()
	s.Area = physics.Area{Width: 10, Height: 10}
	s.Bulk = 0
	s.Lives = 1
	s.StartLength = 3
	s.FruitChance = 0
	s.Seed = 7
	return s
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	return NewGame(opts, store.NewHighScores())
}

// startSolo goes from the menu to a one player round named name.
func startSolo(t *testing.T, g *Game, name string) {
	t.Helper()
	g.Update(typed("1\r"), epoch)
	require.Equal(t, ScreenNames, g.Screen)
	g.Update(typed(name+"\r"), epoch)
	require.Equal(t, ScreenPlaying, g.Screen)
}

func TestMenuToPlaying(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	assert.Equal(t, ScreenMenu, g.Screen)
	assert.True(t, g.Running)

	g.Update(typed("2h"), epoch)
	assert.Equal(t, 2, g.Players)
	assert.Equal(t, round.Hard, g.Difficulty)

	g.Update(key(input.KeyEnter), epoch)
	require.Equal(t, ScreenNames, g.Screen)

	g.Update(typed("annx"), epoch)
	g.Update(key(input.KeyBackspace), epoch)
	g.Update(key(input.KeyEnter), epoch)
	assert.Equal(t, ScreenNames, g.Screen, "second player still has to enter a name")
	g.Update(key(input.KeyEnter), epoch)

	require.Equal(t, ScreenPlaying, g.Screen)
	require.NotNil(t, g.Round)
	require.Len(t, g.Round.Players, 2)
	assert.Equal(t, "ann", g.Round.Players[0].Name)
	assert.Equal(t, "Player 2", g.Round.Players[1].Name)
	assert.Equal(t, round.Hard, g.Round.Difficulty)
	assert.Equal(t, physics.Area{Width: GameWidth, Height: GameHeight}, g.Round.Settings.Area)
}

func TestNameLength(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	g.Update(key(input.KeyEnter), epoch)
	g.Update(typed("abcdefghijklmnopqrstuvwxyz"), epoch)
	assert.Len(t, g.NameBuf, MaxNameLength)

	g.Update(key(input.KeyEscape), epoch)
	assert.Equal(t, ScreenMenu, g.Screen)
}

func TestPlayingTurnsAndPause(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	startSolo(t, g, "ann")
	p := g.Round.Players[0]

	g.Update(input.Input{Events: input.Parse([]byte("\x1b[C"))}, epoch)
	assert.Equal(t, "right", p.Dir.String())

	g.Update(key(input.KeyPause), epoch)
	require.Equal(t, ScreenPaused, g.Screen)
	pos := p.Pos
	g.Update(input.Input{}, epoch.Add(time.Second))
	assert.Equal(t, pos, p.Pos, "a paused round does not move")

	g.Update(key(input.KeyPause), epoch.Add(2*time.Second))
	assert.Equal(t, ScreenPlaying, g.Screen)
}

func TestEscapeSavesAndContinueRestores(t *testing.T) {
	opts := testOptions(t)
	g := newTestGame(t, opts)
	startSolo(t, g, "ann")
	id := g.Round.ID

	g.Update(key(input.KeyEscape), epoch)
	assert.Equal(t, ScreenMenu, g.Screen)
	assert.Nil(t, g.Round)
	require.True(t, opts.Sessions.Exists())

	// A fresh game, as after a restart, picks the session up.
	g = newTestGame(t, opts)
	g.Update(typed("c"), epoch)
	require.Equal(t, ScreenPlaying, g.Screen)
	assert.Equal(t, id, g.Round.ID)
	assert.Equal(t, []string{"ann"}, g.Names)
	assert.Equal(t, 1, g.Players)
}

func TestContinueWithoutSession(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	g.Update(typed("c"), epoch)
	assert.Equal(t, ScreenMenu, g.Screen)
	assert.Equal(t, "No saved game", g.Notice)
	assert.True(t, g.Running)
}

func TestContinueCorruptSession(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.Sessions.Path, []byte("garbage"), 0o600))

	g := newTestGame(t, opts)
	g.Update(typed("c"), epoch)
	assert.False(t, g.Running)
	assert.ErrorIs(t, g.Err(), store.ErrCorrupt)
}

// crashSolo runs the round until the only snake hits the top wall. Food
// is parked off the snake's path.
func crashSolo(t *testing.T, g *Game, score int) {
	t.Helper()
	g.Round.Foods = []*object.Food{object.FoodAt(physics.Pt(8, 8), 0, object.FoodPoints)}
	g.Round.Players[0].Score = score

	interval := round.Normal.BaseInterval()
	g.Update(input.Input{}, epoch.Add(10*interval))
	require.Equal(t, ScreenPlaying, g.Screen)
	g.Update(input.Input{}, epoch.Add(20*interval))
	require.Equal(t, ScreenHighScores, g.Screen)
}

func TestRoundOverRecordsHighScore(t *testing.T) {
	opts := testOptions(t)
	opts.Settings = smallSettings()
	g := newTestGame(t, opts)
	startSolo(t, g, "ann")
	g.Update(key(input.KeyEscape), epoch)
	require.True(t, opts.Sessions.Exists())

	g.Update(typed("c"), epoch)
	require.Equal(t, ScreenPlaying, g.Screen)
	crashSolo(t, g, 500)

	assert.False(t, opts.Sessions.Exists(), "a finished round leaves no session")
	assert.Equal(t, []int{0}, g.NewRanks)
	assert.Equal(t, store.Entry{Name: "ann", Score: 500}, g.Scores.Entries[0])

	saved, err := opts.Scores.Load()
	require.NoError(t, err)
	assert.Equal(t, g.Scores.Entries, saved.Entries)

	g.Update(key(input.KeyEnter), epoch)
	assert.Equal(t, ScreenPlayAgain, g.Screen)
}

func TestPlayAgain(t *testing.T) {
	opts := testOptions(t)
	opts.Settings = smallSettings()

	t.Run("yes", func(t *testing.T) {
		g := newTestGame(t, opts)
		startSolo(t, g, "ann")
		crashSolo(t, g, 0)
		g.Update(key(input.KeyEnter), epoch)
		id := g.Round.ID

		g.Update(typed("y"), epoch)
		assert.Equal(t, ScreenPlaying, g.Screen)
		assert.NotEqual(t, id, g.Round.ID)
		assert.True(t, g.Round.Running())
		assert.Equal(t, 0, g.Round.Players[0].Score)
	})

	t.Run("no", func(t *testing.T) {
		g := newTestGame(t, opts)
		startSolo(t, g, "ann")
		crashSolo(t, g, 0)
		g.Update(key(input.KeyEnter), epoch)

		g.Update(typed("n"), epoch)
		assert.False(t, g.Running)
		require.NoError(t, g.Close())
		assert.False(t, opts.Sessions.Exists())
	})
}

func TestHighScoresFromMenu(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	g.Update(typed("s"), epoch)
	require.Equal(t, ScreenHighScores, g.Screen)
	g.Update(key(input.KeyEscape), epoch)
	assert.Equal(t, ScreenMenu, g.Screen)
}

func TestInterruptSavesOnClose(t *testing.T) {
	opts := testOptions(t)
	g := newTestGame(t, opts)
	startSolo(t, g, "ann")

	g.Update(key(input.KeyInterrupt), epoch)
	assert.False(t, g.Running)
	require.NoError(t, g.Close())
	assert.True(t, opts.Sessions.Exists())

	_, err := opts.Scores.Load()
	assert.NoError(t, err)
}

func TestClosedInputQuits(t *testing.T) {
	g := newTestGame(t, testOptions(t))
	g.Update(input.Input{Closed: true}, epoch)
	assert.False(t, g.Running)
}

func TestCloseReportsEveryFailure(t *testing.T) {
	opts := testOptions(t)
	opts.Sessions.Path = filepath.Join(t.TempDir(), "missing", "session.bin")

	g := newTestGame(t, opts)
	startSolo(t, g, "ann")
	g.fail(errors.New("draw: broken pipe"))

	err := g.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "save session")
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestSharedScoresSurviveOtherGames(t *testing.T) {
	opts := testOptions(t)
	opts.Settings = smallSettings()
	load := func() *store.HighScores {
		hs, err := opts.Scores.Load()
		require.NoError(t, err)
		return hs
	}

	// All games start from the same empty table, as SSH sessions do.
	idle := NewGame(opts, load())
	late := NewGame(opts, load())
	bob := NewGame(opts, load())

	startSolo(t, bob, "bob")
	crashSolo(t, bob, 500)
	require.NoError(t, bob.Close())

	idle.Update(typed("q"), epoch)
	require.False(t, idle.Running)
	require.NoError(t, idle.Close())

	onDisk, err := opts.Scores.Load()
	require.NoError(t, err)
	assert.Equal(t, store.Entry{Name: "bob", Score: 500}, onDisk.Entries[0], "quitting without a round keeps other games' scores")

	startSolo(t, late, "ann")
	crashSolo(t, late, 300)
	assert.Equal(t, []int{1}, late.NewRanks)
	require.NoError(t, late.Close())

	onDisk, err = opts.Scores.Load()
	require.NoError(t, err)
	assert.Equal(t, []store.Entry{{Name: "bob", Score: 500}, {Name: "ann", Score: 300}}, onDisk.Entries[:2])
	assert.Equal(t, onDisk.Entries, late.Scores.Entries, "the game shows the merged table")
}

func TestScoresReloadedFromMenu(t *testing.T) {
	opts := testOptions(t)
	g := newTestGame(t, opts)

	hs := store.NewHighScores()
	hs.Insert("eve", 70)
	require.NoError(t, opts.Scores.Save(hs))

	g.Update(typed("s"), epoch)
	require.Equal(t, ScreenHighScores, g.Screen)
	assert.Equal(t, store.Entry{Name: "eve", Score: 70}, g.Scores.Entries[0])
}

func TestIdleTimeout(t *testing.T) {
	opts := testOptions(t)
	opts.IdleTimeout = 10 * time.Second
	g := newTestGame(t, opts)

	g.Update(input.Input{}, epoch)
	g.Update(input.Input{}, epoch.Add(8*time.Second))
	assert.True(t, g.idleWarning)
	assert.True(t, g.Running)

	g.Update(typed("1"), epoch.Add(9*time.Second))
	assert.False(t, g.idleWarning, "any key clears the warning")

	g.Update(input.Input{}, epoch.Add(18*time.Second))
	assert.True(t, g.Running)
	g.Update(input.Input{}, epoch.Add(19*time.Second))
	assert.False(t, g.Running)
}

func TestClampTermSize(t *testing.T) {
	w, h, col, row := clampTermSize(100, 30)
	assert.Equal(t, []int{100, 30, 0, 0}, []int{w, h, col, row})

	w, h, col, row = clampTermSize(300, 100)
	assert.Equal(t, []int{MaxTermWidth, MaxTermHeight, 30, 10}, []int{w, h, col, row})
}

func TestStatusLine(t *testing.T) {
	r, err := round.New(smallSettings(), round.Easy, []string{"ann", "bob"})
	require.NoError(t, err)
	r.Players[0].Score = 40
	r.Players[1].Playing = false

	assert.Equal(t, "ann(1): 40   bob(DEAD): 0   easy", statusLine(r))
}

func TestRendererFrames(t *testing.T) {
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	rend := newRenderer(cw, func() (int, int, error) { return 120, 40, nil })

	g := newTestGame(t, testOptions(t))
	require.NoError(t, rend.draw(g))
	assert.Contains(t, out.String(), "S N A K E S")

	out.Reset()
	require.NoError(t, rend.draw(g))
	assert.Empty(t, out.String(), "an unchanged menu is not redrawn")

	startSolo(t, g, "ann")
	out.Reset()
	require.NoError(t, rend.draw(g))
	assert.Contains(t, out.String(), "ann(3): 0")
}
