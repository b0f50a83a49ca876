// Package input turns raw terminal bytes into discrete key events.
package input

import (
	"bufio"
	"io"
)

// Key identifies what a byte or escape sequence means to the game.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPause
	KeyQuit
	KeyInterrupt // Ctrl-C
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyChar
)

// Key sets. Each player owns a disjoint set of direction keys.
const (
	PlayerArrows = 0
	PlayerWASD   = 1
	NoPlayer     = -1
)

// Event is one key press. Player is set for direction keys only. Char is
// the raw byte for single-byte keys so text entry can use it.
type Event struct {
	Key    Key
	Player int
	Char   byte
}

// Input is everything that arrived since the previous read, in order.
type Input struct {
	Events []Event
	Closed bool // The input stream ended
}

// Has reports whether any event carries k.
func (in Input) Has(k Key) bool {
	for _, ev := range in.Events {
		if ev.Key == k {
			return true
		}
	}
	return false
}

// Interrupted reports whether the user asked to leave from anywhere:
// Ctrl-C or a closed stream.
func (in Input) Interrupted() bool {
	return in.Closed || in.Has(KeyInterrupt)
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch      chan byte
	closed  bool
	pending []byte // Unfinished escape sequence held back from the last read
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	br := bufio.NewReader(r)
	go func() {
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking)
// and parses them into events. A read ending in ESC, ESC [ or ESC O holds
// those bytes back for one more read, so an arrow key split across reads
// is not seen as ESC plus letters. If nothing arrives by then they are
// parsed as they are.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil
	held := len(buf)

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	if len(buf) > held && !s.closed {
		if n := partialEscape(buf); n > 0 {
			s.pending = append([]byte(nil), buf[len(buf)-n:]...)
			buf = buf[:len(buf)-n]
		}
	}

	return Input{Events: Parse(buf), Closed: s.closed}
}

// partialEscape returns the length of an escape sequence prefix at the end
// of buf, or 0.
func partialEscape(buf []byte) int {
	n := len(buf)
	switch {
	case n >= 1 && buf[n-1] == '\x1b':
		return 1
	case n >= 2 && buf[n-2] == '\x1b' && (buf[n-1] == '[' || buf[n-1] == 'O'):
		return 2
	}
	return 0
}

// Parse converts raw bytes into events. Arrow keys arrive as
// ESC [ A..D or ESC O A..D; a lone ESC is the escape key.
func Parse(buf []byte) []Event {
	var events []Event
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
			if k := arrowKey(buf[i+2]); k != KeyNone {
				events = append(events, Event{Key: k, Player: PlayerArrows})
				i += 2
				continue
			}
		}

		events = append(events, byteEvent(b))
	}
	return events
}

func arrowKey(code byte) Key {
	switch code {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return KeyNone
}

// byteEvent maps a single byte.
func byteEvent(b byte) Event {
	ev := Event{Player: NoPlayer, Char: b}
	switch b {
	case 'w', 'W':
		ev.Key, ev.Player = KeyUp, PlayerWASD
	case 's', 'S':
		ev.Key, ev.Player = KeyDown, PlayerWASD
	case 'a', 'A':
		ev.Key, ev.Player = KeyLeft, PlayerWASD
	case 'd', 'D':
		ev.Key, ev.Player = KeyRight, PlayerWASD
	case 'p', 'P':
		ev.Key = KeyPause
	case 'q', 'Q':
		ev.Key = KeyQuit
	case '\x03':
		ev.Key = KeyInterrupt
	case '\x1b':
		ev.Key = KeyEscape
	case '\n', '\r':
		ev.Key = KeyEnter
	case '\b', '\x7f':
		ev.Key = KeyBackspace
	default:
		if b >= ' ' && b < '\x7f' {
			ev.Key = KeyChar
		} else {
			ev.Key = KeyNone
		}
	}
	return ev
}

// Printable reports whether ev carries a character usable in a name.
func (ev Event) Printable() bool {
	return ev.Char >= ' ' && ev.Char < '\x7f'
}
