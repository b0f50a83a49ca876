package loop

import (
	"time"

	"github.com/tomz197/snakes/internal/input"
	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/round"
)

// updateMenu handles the title screen.
func (g *Game) updateMenu(in input.Input, now time.Time) {
	for _, ev := range in.Events {
		switch ev.Char {
		case '1', '2':
			g.Players = int(ev.Char - '0')
		case 'e', 'E':
			g.Difficulty = round.Easy
		case 'n', 'N':
			g.Difficulty = round.Normal
		case 'h', 'H':
			g.Difficulty = round.Hard
		case 's', 'S':
			g.refreshScores()
			g.afterScores = ScreenMenu
			g.setScreen(ScreenHighScores)
			return
		case 'c', 'C':
			g.continueRound(now)
			return
		case 'q', 'Q':
			g.quit("menu")
			return
		}
		if ev.Key == input.KeyEnter {
			g.Notice = ""
			g.Names = g.Names[:0]
			g.NameBuf = g.NameBuf[:0]
			g.setScreen(ScreenNames)
			return
		}
	}
}

// updateNames handles name entry. Names are typed one player at a time;
// an empty entry keeps the default name.
func (g *Game) updateNames(in input.Input, now time.Time) {
	for _, ev := range in.Events {
		switch ev.Key {
		case input.KeyEscape:
			g.setScreen(ScreenMenu)
			return
		case input.KeyBackspace:
			if n := len(g.NameBuf); n > 0 {
				g.NameBuf = g.NameBuf[:n-1]
			}
		case input.KeyEnter:
			g.Names = append(g.Names, string(g.NameBuf))
			g.NameBuf = g.NameBuf[:0]
			if len(g.Names) == g.Players {
				g.startRound(now)
				return
			}
		default:
			if ev.Printable() && len(g.NameBuf) < MaxNameLength {
				g.NameBuf = append(g.NameBuf, ev.Char)
			}
		}
	}
}

// updatePlaying maps direction keys to turns and ticks the round.
func (g *Game) updatePlaying(in input.Input, now time.Time) {
	var turns []round.Turn
	for _, ev := range in.Events {
		switch ev.Key {
		case input.KeyUp:
			turns = append(turns, round.Turn{Slot: ev.Player, Dir: object.Up})
		case input.KeyDown:
			turns = append(turns, round.Turn{Slot: ev.Player, Dir: object.Down})
		case input.KeyLeft:
			turns = append(turns, round.Turn{Slot: ev.Player, Dir: object.Left})
		case input.KeyRight:
			turns = append(turns, round.Turn{Slot: ev.Player, Dir: object.Right})
		case input.KeyPause:
			g.setScreen(ScreenPaused)
			return
		case input.KeyEscape:
			g.toMenu()
			return
		case input.KeyQuit:
			g.quit("playing")
			return
		}
	}

	for _, ev := range g.Round.Tick(now, turns) {
		if ev.Kind == round.EventRoundOver {
			g.finishRound()
			return
		}
	}
}

// updatePaused waits for the round to be resumed.
func (g *Game) updatePaused(in input.Input, now time.Time) {
	for _, ev := range in.Events {
		switch ev.Key {
		case input.KeyPause, input.KeyEnter:
			g.Round.Resume(now)
			g.setScreen(ScreenPlaying)
			return
		case input.KeyEscape:
			g.toMenu()
			return
		case input.KeyQuit:
			g.quit("paused")
			return
		}
	}
}

// updateHighScores leaves the table on Enter or Escape.
func (g *Game) updateHighScores(in input.Input) {
	if in.Has(input.KeyEnter) || in.Has(input.KeyEscape) {
		g.setScreen(g.afterScores)
	}
}

// updatePlayAgain resets the round on 'y' and exits on 'n'.
func (g *Game) updatePlayAgain(in input.Input, now time.Time) {
	for _, ev := range in.Events {
		switch ev.Char {
		case 'y', 'Y':
			g.Round.Reset()
			g.Round.Resume(now)
			g.setScreen(ScreenPlaying)
			return
		case 'n', 'N', 'q', 'Q':
			g.quit("play again declined")
			return
		}
	}
}
