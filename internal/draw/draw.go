// Package draw renders a low-resolution pixel canvas to an ANSI terminal
// using half-block characters, plus the cursor and text helpers the
// screens need.
package draw

import "strconv"

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockLight     = '░'
	BlockMedium    = '▒'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a terminal palette entry. ColorNone is an unset pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorWhite
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorGray
)

// fg returns the SGR parameter selecting c as the foreground.
func (c Color) fg() int {
	switch c {
	case ColorRed:
		return 31
	case ColorGreen:
		return 32
	case ColorYellow:
		return 33
	case ColorBlue:
		return 34
	case ColorMagenta:
		return 35
	case ColorCyan:
		return 36
	case ColorGray:
		return 90
	default:
		return 37
	}
}

// bg returns the SGR parameter selecting c as the background.
func (c Color) bg() int {
	return c.fg() + 10
}

const resetStyle = "\033[0m"

// Colorize wraps s in the escape sequences for c.
func Colorize(s string, c Color) string {
	if c == ColorNone {
		return s
	}
	return "\033[" + strconv.Itoa(c.fg()) + "m" + s + resetStyle
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
