package loop

import (
	"fmt"
	"strings"

	"github.com/tomz197/snakes/internal/draw"
	"github.com/tomz197/snakes/internal/object"
	"github.com/tomz197/snakes/internal/round"
	"github.com/tomz197/snakes/internal/store"
)

// Colors
var playerColors = [round.MaxPlayers]draw.Color{draw.ColorGreen, draw.ColorMagenta}

const (
	wallColor  = draw.ColorGray
	headColor  = draw.ColorWhite
	foodColor  = draw.ColorYellow
	fruitColor = draw.ColorRed
	pulseColor = draw.ColorWhite
	pulseTicks = 20 // Frames per half pulse of food
)

// overlay is text written on top of the canvas during the last frame.
type overlay struct {
	col, row, width int
}

// renderer draws a Game. It keeps the canvas between frames so only
// changed cells are sent.
type renderer struct {
	canvas     *draw.Canvas
	cw         *draw.ChunkWriter
	termSize   draw.TermSizeFunc
	lastScreen Screen
	overlays   []overlay
	fresh      bool // Screen was cleared, everything must be redrawn
}

func newRenderer(cw *draw.ChunkWriter, termSize draw.TermSizeFunc) *renderer {
	return &renderer{
		canvas:     draw.NewScaledCanvas(ViewWidth, ViewHeight/2, ViewWidth, ViewHeight),
		cw:         cw,
		termSize:   termSize,
		lastScreen: -1,
	}
}

// clampTermSize limits the render area to the max resolution and
// centers it.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, MaxTermWidth)
	renderHeight = min(termHeight, MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// resize follows the terminal size. Any change clears the screen.
func (r *renderer) resize() error {
	termWidth, termHeight, err := r.termSize()
	if err != nil {
		return err
	}
	w, h, col, row := clampTermSize(termWidth, termHeight)
	if w != r.canvas.TerminalWidth() || h != r.canvas.TerminalHeight() ||
		col != r.canvas.OffsetCol() || row != r.canvas.OffsetRow() {
		r.canvas.Resize(w, h)
		r.canvas.SetOffset(col, row)
		r.cw.SetOffset(col, row)
		r.fresh = true
	}
	return nil
}

// draw renders one frame.
func (r *renderer) draw(g *Game) error {
	if err := r.resize(); err != nil {
		return err
	}
	if g.Screen != r.lastScreen {
		r.lastScreen = g.Screen
		r.fresh = true
	}

	switch g.Screen {
	case ScreenPlaying, ScreenPaused:
		r.beginFrame()
		r.drawRound(g)
	default:
		if !r.fresh && !g.dirty {
			return nil
		}
		r.fresh = true
		r.beginFrame()
		r.drawTextScreen(g)
	}
	g.dirty = false
	return r.cw.Flush()
}

// beginFrame clears the terminal when the previous frame is unusable.
func (r *renderer) beginFrame() {
	if !r.fresh {
		return
	}
	r.cw.WriteString(draw.SeqClearScreen)
	r.canvas.ForceRedraw()
	r.overlays = r.overlays[:0]
	r.fresh = false
	_ = r.canvas.RenderBorder(r.cw)
}

// text writes an overlay that is erased on the next frame.
func (r *renderer) text(col, row int, s string, c draw.Color) {
	if col < 1 || row < 1 || row > r.canvas.TerminalHeight() {
		return
	}
	width := len(s)
	if col+width-1 > r.canvas.TerminalWidth() {
		width = r.canvas.TerminalWidth() - col + 1
		if width <= 0 {
			return
		}
		s = s[:width]
	}
	r.cw.WriteColored(col, row, s, c)
	r.overlays = append(r.overlays, overlay{col: col, row: row, width: width})
}

// drawRound renders the board, the bodies, the food and the overlays.
func (r *renderer) drawRound(g *Game) {
	// Erase last frame's text and let the canvas repaint under it.
	for _, o := range r.overlays {
		r.cw.ClearLine(o.col, o.row, o.width)
		r.canvas.Invalidate(o.col, o.row, o.width)
	}
	r.overlays = r.overlays[:0]

	c := r.canvas
	c.Clear()
	c.DrawRect(0, 0, GameWidth, GameHeight, wallColor)

	rd := g.Round
	for _, f := range rd.Foods {
		color := foodColor
		if f.IsFruit() {
			color = fruitColor
		}
		if (f.Phase/pulseTicks)%2 == 1 {
			color = pulseColor
		}
		box := f.Box()
		c.FillRect(box.X, box.Y, box.W, box.H, color)
	}

	for _, p := range rd.Players {
		color := playerColors[p.Slot%len(playerColors)]
		for _, seg := range p.Segments() {
			cellColor := color
			if seg.Shape == object.SegmentHead {
				cellColor = headColor
			}
			c.Set(seg.Pos.X, seg.Pos.Y, cellColor)
		}
		if len(p.Body) == 0 && p.Playing {
			c.Set(p.Head().X, p.Head().Y, headColor)
		}
	}

	_ = c.Render(r.cw)

	for _, p := range rd.Players {
		if !p.Playing {
			continue
		}
		head := p.Head()
		col, row := c.LogicalToTerminal(head.X, head.Y)
		r.text(col+1, row-1, p.Name, playerColors[p.Slot%len(playerColors)])
	}

	_, row := c.LogicalToTerminal(0, statusY)
	r.text(2, row, statusLine(rd), draw.ColorWhite)

	centerCol := c.TerminalWidth() / 2
	_, midRow := c.LogicalToTerminal(0, GameHeight/2)
	switch {
	case g.Screen == ScreenPaused:
		r.text(centerCol-3, midRow, "PAUSED", draw.ColorYellow)
		r.text(centerCol-17, midRow+2, "P to resume, ESC to save and leave", draw.ColorWhite)
	case g.idleWarning:
		r.text(centerCol-12, midRow, "Still there? Press a key", draw.ColorYellow)
	}
}

// statusLine renders "name(lives): score" for every player.
func statusLine(rd *round.Round) string {
	parts := make([]string, 0, len(rd.Players)+1)
	for _, p := range rd.Players {
		lives := fmt.Sprint(p.Lives)
		if !p.Playing {
			lives = "DEAD"
		}
		parts = append(parts, fmt.Sprintf("%s(%s): %d", p.Name, lives, p.Score))
	}
	parts = append(parts, rd.Difficulty.String())
	return strings.Join(parts, "   ")
}

// drawTextScreen renders the screens that have no board.
func (r *renderer) drawTextScreen(g *Game) {
	centerCol := r.canvas.TerminalWidth() / 2
	row := r.canvas.TerminalHeight()/2 - 6
	line := func(s string, c draw.Color) {
		r.cw.WriteCentered(centerCol, row, s, c)
		row++
	}

	switch g.Screen {
	case ScreenMenu:
		line("S N A K E S", draw.ColorGreen)
		row++
		line(fmt.Sprintf("Players: %d   (1/2)", g.Players), draw.ColorWhite)
		line(fmt.Sprintf("Difficulty: %-6s (E/N/H)", g.Difficulty), draw.ColorWhite)
		row++
		line("ENTER start   S high scores   Q quit", draw.ColorWhite)
		if g.sessions.Exists() {
			line("C continue saved game", draw.ColorYellow)
		}
		row++
		line("Player 1: arrows   Player 2: W A S D   P pause   ESC save and menu", draw.ColorGray)
		if g.Notice != "" {
			row++
			line(g.Notice, draw.ColorRed)
		}
		if g.idleWarning {
			row++
			line("Still there? Press a key", draw.ColorYellow)
		}

	case ScreenNames:
		slot := len(g.Names)
		line(fmt.Sprintf("Name for player %d", slot+1), playerColors[slot%len(playerColors)])
		row++
		line(string(g.NameBuf)+"_", draw.ColorWhite)
		row++
		line(fmt.Sprintf("ENTER to confirm (empty keeps \"Player %d\"), ESC back", slot+1), draw.ColorGray)

	case ScreenHighScores:
		line("HIGH SCORES", draw.ColorGreen)
		row++
		for i, e := range g.Scores.Entries {
			color := draw.ColorWhite
			if e.Name == store.PlaceholderName {
				color = draw.ColorGray
			}
			for _, rank := range g.NewRanks {
				if rank == i && g.afterScores == ScreenPlayAgain {
					color = draw.ColorYellow
				}
			}
			line(fmt.Sprintf("%2d. %-*s %6d", i+1, MaxNameLength, e.Name, e.Score), color)
		}
		row++
		line("ENTER to continue", draw.ColorGray)

	case ScreenPlayAgain:
		if g.Round != nil {
			for _, res := range g.Round.Results() {
				line(fmt.Sprintf("%s: %d", res.Name, res.Score), playerColors[res.Slot%len(playerColors)])
			}
			row++
		}
		line("Play again? (y/n)", draw.ColorWhite)
	}
}
