package draw

import (
	"io"
	"strconv"
	"strings"
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block
// characters. Game code draws in logical cells; the canvas scales them to
// the terminal it is rendered on.
//
// Render only emits cells that changed since the previous Render, so the
// screen is never cleared between frames.
type Canvas struct {
	termWidth      int     // Terminal columns used for rendering
	termHeight     int     // Terminal rows used for rendering
	subPixelHeight int     // termHeight * 2
	pixels         []Color // [y * termWidth + x]

	logicalWidth  int
	logicalHeight int
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // subPixelHeight / logicalHeight

	// Offset for centering the render area when the terminal is larger
	// than the render area. 0-based columns/rows to skip.
	offsetCol int
	offsetRow int

	prev      []cell // Cells as last rendered, nil forces a full redraw
	renderBuf strings.Builder
}

// cell is one rendered terminal cell.
type cell struct {
	top, bottom Color
}

// NewScaledCanvas creates a canvas that scales logical cells to terminal
// pixels. logicalHeight is in sub-pixels (two per terminal row at 1:1).
func NewScaledCanvas(termWidth, termHeight, logicalWidth, logicalHeight int) *Canvas {
	c := &Canvas{
		logicalWidth:  max(logicalWidth, 1),
		logicalHeight: max(logicalHeight, 1),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping
// the logical size. A size change forces a full redraw.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.prev = nil
	}
	c.scaleX = float64(c.termWidth) / float64(c.logicalWidth)
	c.scaleY = float64(c.subPixelHeight) / float64(c.logicalHeight)
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.prev = nil
	}
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) OffsetCol() int { return c.offsetCol }
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// ForceRedraw makes the next Render emit every cell. Call it after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.prev = nil
}

// Invalidate forces the next Render to repaint width cells of row
// starting at col (1-based, as returned by LogicalToTerminal). Use it
// after text was written over the canvas.
func (c *Canvas) Invalidate(col, row, width int) {
	if c.prev == nil || row < 1 || row > c.termHeight {
		return
	}
	for x := max(col, 1); x < col+width && x <= c.termWidth; x++ {
		c.prev[(row-1)*c.termWidth+x-1] = cell{top: dirtyColor}
	}
}

// dirtyColor never matches a drawn pixel.
const dirtyColor Color = 0xff

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at terminal pixel coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// pixelSpan returns the pixel range [lo, hi) covered by logical cell v.
// Every cell covers at least one pixel.
func pixelSpan(v int, scale float64) (lo, hi int) {
	lo = int(float64(v) * scale)
	hi = int(float64(v+1) * scale)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Set fills the logical cell (x, y).
func (c *Canvas) Set(x, y int, color Color) {
	x0, x1 := pixelSpan(x, c.scaleX)
	y0, y1 := pixelSpan(y, c.scaleY)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.setPixel(px, py, color)
		}
	}
}

// FillRect fills w×h logical cells starting at (x, y).
func (c *Canvas) FillRect(x, y, w, h int, color Color) {
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			c.Set(cx, cy, color)
		}
	}
}

// DrawLine draws a line of logical cells using Bresenham's algorithm.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int, color Color) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.Set(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawRect outlines the logical rectangle with corners (x1, y1), (x2, y2).
func (c *Canvas) DrawRect(x1, y1, x2, y2 int, color Color) {
	c.DrawLine(x1, y1, x2, y1, color)
	c.DrawLine(x1, y2, x2, y2, color)
	c.DrawLine(x1, y1, x1, y2, color)
	c.DrawLine(x2, y1, x2, y2, color)
}

// maxChunkSize is the maximum bytes to write at once for smooth
// SSH/network transmission.
const maxChunkSize = 1400

// Render writes every cell that changed since the last Render.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	cells := c.termWidth * c.termHeight
	full := len(c.prev) != cells
	if full {
		c.prev = make([]cell, cells)
	}

	var numBuf [20]byte
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !full && c.prev[idx] == cur {
				continue
			}
			if full && cur == (cell{}) {
				continue // A cleared screen is already blank
			}
			c.prev[idx] = cur

			c.renderBuf.WriteString("\033[")
			c.renderBuf.Write(strconv.AppendInt(numBuf[:0], int64(row+1+c.offsetRow), 10))
			c.renderBuf.WriteByte(';')
			c.renderBuf.Write(strconv.AppendInt(numBuf[:0], int64(col+1+c.offsetCol), 10))
			c.renderBuf.WriteByte('H')
			writeCell(&c.renderBuf, cur, numBuf[:0])
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// writeCell emits the glyph for one cell and resets the style.
func writeCell(b *strings.Builder, cur cell, num []byte) {
	sgr := func(params ...int) {
		b.WriteString("\033[")
		for i, p := range params {
			if i > 0 {
				b.WriteByte(';')
			}
			b.Write(strconv.AppendInt(num, int64(p), 10))
		}
		b.WriteByte('m')
	}

	switch {
	case cur.top == ColorNone && cur.bottom == ColorNone:
		b.WriteByte(' ')
		return
	case cur.top == cur.bottom:
		sgr(cur.top.fg())
		b.WriteRune(BlockFull)
	case cur.bottom == ColorNone:
		sgr(cur.top.fg())
		b.WriteRune(BlockUpperHalf)
	case cur.top == ColorNone:
		sgr(cur.bottom.fg())
		b.WriteRune(BlockLowerHalf)
	default:
		sgr(cur.top.fg(), cur.bottom.bg())
		b.WriteRune(BlockUpperHalf)
	}
	b.WriteString(resetStyle)
}

// RenderBorder draws a box border around the canvas area when the
// terminal has room for it on either axis.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return nil
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	cw := NewChunkWriter(w, 0, 0)
	if hasV {
		if hasH {
			cw.WriteAt(left, top, "┌"+line+"┐")
			cw.WriteAt(left, bottom, "└"+line+"┘")
		} else {
			cw.WriteAt(c.offsetCol+1, top, line)
			cw.WriteAt(c.offsetCol+1, bottom, line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			cw.WriteAt(left, row, "│")
			cw.WriteAt(right, row, "│")
		}
	}
	return cw.Flush()
}

func (c *Canvas) LogicalWidth() int   { return c.logicalWidth }
func (c *Canvas) LogicalHeight() int  { return c.logicalHeight }
func (c *Canvas) TerminalWidth() int  { return c.termWidth }
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts logical cell coordinates to a 1-based
// terminal position relative to the canvas (offset not applied). Use it
// to place text overlays next to drawn cells.
func (c *Canvas) LogicalToTerminal(x, y int) (col, row int) {
	px, _ := pixelSpan(x, c.scaleX)
	py, _ := pixelSpan(y, c.scaleY)
	return px + 1, py/2 + 1
}
