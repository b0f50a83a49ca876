package round

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/physics"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// zeroRand always returns 0: food spawns at (bulk, bulk) and wandering
// food always re-rolls its heading to up-left.
type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

func testSettings() Settings {
	s := DefaultSettings()
	s.Area = physics.Area{Width: 30, Height: 30}
	s.StartLength = 5
	s.FruitChance = 0
	s.WanderInterval = 0
	s.Seed = 1
	return s
}

func newTestRound(t *testing.T, d Difficulty, names ...string) *Round {
	t.Helper()
	r, err := New(testSettings(), d, names, WithRand(zeroRand{}))
	require.NoError(t, err)
	// Park the food in a corner no test snake visits.
	r.Foods = []*object.Food{object.FoodAt(physics.Pt(25, 25), 0, object.FoodPoints)}
	return r
}

// at returns the time after n normal-difficulty step intervals.
func at(n int) time.Time {
	return epoch.Add(time.Duration(n) * Normal.BaseInterval())
}

func kinds(events []Event) []EventKind {
	var ks []EventKind
	for _, ev := range events {
		ks = append(ks, ev.Kind)
	}
	return ks
}

func TestNew(t *testing.T) {
	r, err := New(testSettings(), Normal, []string{"ann", ""})
	require.NoError(t, err)

	require.Len(t, r.Players, 2)
	assert.Equal(t, "ann", r.Players[0].Name)
	assert.Equal(t, "Player 2", r.Players[1].Name)
	assert.Equal(t, 1, r.Players[1].Slot)
	assert.NotEqual(t, r.Players[0].StartPos, r.Players[1].StartPos)
	assert.True(t, r.Running())
	assert.Equal(t, 2, r.Playing())
	assert.Len(t, r.Foods, 1)
	assert.NotEqual(t, uuid.Nil, r.ID)
	for _, p := range r.Players {
		assert.Equal(t, Normal.BaseInterval(), p.StepInterval)
		assert.Equal(t, 3, p.Lives)
	}
}

func TestNewRejects(t *testing.T) {
	_, err := New(testSettings(), Normal, nil)
	assert.Error(t, err)

	_, err = New(testSettings(), Normal, []string{"a", "b", "c"})
	assert.Error(t, err)

	_, err = New(testSettings(), Difficulty(9), []string{"a"})
	assert.Error(t, err)

	s := testSettings()
	s.Lives = 0
	_, err = New(s, Normal, []string{"a"})
	assert.Error(t, err)
}

func TestTickAppliesTurns(t *testing.T) {
	r := newTestRound(t, Normal, "a", "b")
	r.Tick(at(0), nil)

	r.Tick(at(1), []Turn{
		{Slot: 0, Dir: object.Left},
		{Slot: 1, Dir: object.Down}, // reversal, ignored
		{Slot: 5, Dir: object.Left},
	})
	assert.Equal(t, object.Left, r.Players[0].Dir)
	assert.Equal(t, object.Up, r.Players[1].Dir)
	assert.Equal(t, r.Players[0].StartPos.Add(physics.Pt(-1, 0)), r.Players[0].Pos)
}

func TestTickEatsAndReplenishes(t *testing.T) {
	r := newTestRound(t, Normal, "a")
	p := r.Players[0]
	food := object.FoodAt(p.Pos, 0, object.FoodPoints)
	r.Foods = []*object.Food{food}

	events := r.Tick(at(0), nil)
	require.Equal(t, []EventKind{EventAte}, kinds(events))
	assert.Equal(t, object.FoodPoints, events[0].Points)
	assert.Equal(t, object.FoodPoints, p.Score)
	assert.Equal(t, 5+object.FoodGrowth, p.Length)

	require.Len(t, r.Foods, 1)
	assert.NotSame(t, food, r.Foods[0], "eaten food is culled and replaced in the same tick")
	assert.False(t, r.Foods[0].Eaten())

	r.Tick(at(0), nil)
	assert.Equal(t, object.FoodPoints, p.Score)
}

func TestTickLifeLost(t *testing.T) {
	r := newTestRound(t, Normal, "a")
	p := r.Players[0]
	p.Pos = physics.Pt(28, 10)
	p.Dir = object.Right

	r.Tick(at(0), nil)
	r.Tick(at(1), nil)
	events := r.Tick(at(2), nil)

	assert.Equal(t, []EventKind{EventCrashed, EventLifeLost}, kinds(events))
	assert.Equal(t, 2, events[1].Lives)
	assert.True(t, p.Playing)
	assert.False(t, p.Crashed)
	assert.Equal(t, p.StartPos, p.Pos)
	assert.Equal(t, object.Up, p.Dir)
	assert.True(t, r.Running())
}

func TestRoundOverWhenNoSnakePlays(t *testing.T) {
	s := testSettings()
	s.Lives = 1
	r, err := New(s, Normal, []string{"a", "b"}, WithRand(zeroRand{}))
	require.NoError(t, err)
	r.Foods = []*object.Food{object.FoodAt(physics.Pt(25, 25), 0, object.FoodPoints)}

	a, b := r.Players[0], r.Players[1]
	a.Pos = physics.Pt(29, 20)
	a.Dir = object.Right
	b.Pos = physics.Pt(3, 3)

	r.Tick(at(0), nil)
	events := r.Tick(at(1), nil)
	assert.Equal(t, []EventKind{EventCrashed, EventGameOver}, kinds(events))
	assert.False(t, a.Playing)
	assert.True(t, r.Running(), "one snake still plays")
	assert.Equal(t, 1, r.Playing())

	events = r.Tick(at(2), nil)
	assert.Empty(t, events)
	events = r.Tick(at(3), nil)
	assert.Equal(t, []EventKind{EventCrashed, EventGameOver, EventRoundOver}, kinds(events))
	assert.Equal(t, -1, events[2].Slot)
	assert.False(t, r.Running())
	assert.Zero(t, r.Playing())

	assert.Nil(t, r.Tick(at(4), nil))
}

func TestFrozenBodyBlocks(t *testing.T) {
	s := testSettings()
	s.Lives = 1
	r, err := New(s, Normal, []string{"a", "b"}, WithRand(zeroRand{}))
	require.NoError(t, err)
	r.Foods = []*object.Food{object.FoodAt(physics.Pt(25, 25), 0, object.FoodPoints)}

	a, b := r.Players[0], r.Players[1]
	a.Playing = false
	a.Lives = 0
	a.Body = []physics.Point{physics.Pt(10, 5), physics.Pt(11, 5)}
	b.Pos = physics.Pt(11, 6)

	r.Tick(at(0), nil)
	events := r.Tick(at(1), nil)
	assert.Equal(t, []EventKind{EventCrashed, EventGameOver, EventRoundOver}, kinds(events))
	assert.Equal(t, physics.Pt(11, 6), b.Pos)
}

func TestFoodWandersOnHard(t *testing.T) {
	for _, tc := range []struct {
		d     Difficulty
		moved bool
	}{
		{Easy, false},
		{Normal, false},
		{Hard, true},
	} {
		t.Run(tc.d.String(), func(t *testing.T) {
			r := newTestRound(t, tc.d, "a")
			food := object.FoodAt(physics.Pt(20, 20), 2, object.FoodPoints)
			r.Foods = []*object.Food{food}

			r.Tick(epoch, nil)
			assert.Equal(t, tc.moved, food.Pos != physics.Pt(20, 20))
			assert.Equal(t, 1, food.Phase)
		})
	}
}

func TestWanderInterval(t *testing.T) {
	s := testSettings()
	s.WanderInterval = time.Second
	r, err := New(s, Hard, []string{"a"}, WithRand(zeroRand{}))
	require.NoError(t, err)
	food := object.FoodAt(physics.Pt(20, 20), 2, object.FoodPoints)
	r.Foods = []*object.Food{food}

	r.Tick(epoch, nil)
	assert.Equal(t, physics.Pt(19, 19), food.Pos)
	r.Tick(epoch.Add(500*time.Millisecond), nil)
	assert.Equal(t, physics.Pt(19, 19), food.Pos)
	r.Tick(epoch.Add(time.Second), nil)
	assert.Equal(t, physics.Pt(18, 18), food.Pos)
}

func TestWanderEveryTickWithoutInterval(t *testing.T) {
	r := newTestRound(t, Hard, "a")
	require.Zero(t, r.Settings.WanderInterval)
	food := object.FoodAt(physics.Pt(20, 20), 2, object.FoodPoints)
	r.Foods = []*object.Food{food}

	r.Tick(epoch, nil)
	r.Tick(epoch.Add(time.Millisecond), nil)
	r.Tick(epoch.Add(2*time.Millisecond), nil)
	assert.Equal(t, physics.Pt(17, 17), food.Pos)
}

func TestResume(t *testing.T) {
	r := newTestRound(t, Normal, "a")
	p := r.Players[0]
	start := p.Pos

	r.Tick(at(0), nil)
	r.Resume(at(100))
	r.Tick(at(100), nil)
	assert.Equal(t, start, p.Pos, "paused time is not replayed")
	r.Tick(at(101), nil)
	assert.Equal(t, start.Add(physics.Pt(0, -1)), p.Pos)
}

func TestReset(t *testing.T) {
	r := newTestRound(t, Normal, "a")
	p := r.Players[0]
	id := r.ID
	p.Score = 90
	p.Length = 40
	p.Lives = 0
	p.Playing = false
	r.running = false

	r.Reset()
	assert.True(t, r.Running())
	assert.NotEqual(t, id, r.ID)
	assert.Zero(t, p.Score)
	assert.Equal(t, p.StartLength, p.Length)
	assert.Equal(t, p.StartLives, p.Lives)
	assert.Len(t, r.Foods, 1)
}

func TestResults(t *testing.T) {
	r := newTestRound(t, Normal, "a", "b")
	r.Players[0].Score = 10
	r.Players[1].Score = 30

	assert.Equal(t, []Result{
		{Name: "b", Slot: 1, Score: 30},
		{Name: "a", Slot: 0, Score: 10},
	}, r.Results())
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{
		"e": Easy, "Easy": Easy, "N": Normal, "normal": Normal, " hard ": Hard,
	} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDifficulty("nightmare")
	assert.Error(t, err)

	assert.Greater(t, Easy.BaseInterval(), Normal.BaseInterval())
	assert.Greater(t, Normal.BaseInterval(), Hard.BaseInterval())
}
