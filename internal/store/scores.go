package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const scoresMagic = "SNKH"

// Capacity is the number of entries a high-score table holds.
const Capacity = 10

// PlaceholderName fills the unused entries of a fresh table.
const PlaceholderName = "---"

// Entry is one ranked score.
type Entry struct {
	Name  string `msgpack:"name" json:"name"`
	Score int    `msgpack:"score" json:"score"`
}

// HighScores is a ranked table, best first, always Capacity entries long.
type HighScores struct {
	Entries []Entry `msgpack:"entries"`
}

// NewHighScores returns a table of zero-score placeholders.
func NewHighScores() *HighScores {
	hs := &HighScores{Entries: make([]Entry, Capacity)}
	for i := range hs.Entries {
		hs.Entries[i] = Entry{Name: PlaceholderName}
	}
	return hs
}

// Qualifies reports whether score would beat an entry of the table.
func (hs *HighScores) Qualifies(score int) bool {
	hs.normalize()
	return hs.rankFor(score) < Capacity
}

// Insert adds name with score if it beats an existing entry. The entry
// goes after every equal score and the table is truncated back to
// Capacity. Returns the zero-based rank.
func (hs *HighScores) Insert(name string, score int) (rank int, ok bool) {
	hs.normalize()
	rank = hs.rankFor(score)
	if rank >= Capacity {
		return 0, false
	}
	hs.Entries = append(hs.Entries, Entry{})
	copy(hs.Entries[rank+1:], hs.Entries[rank:])
	hs.Entries[rank] = Entry{Name: name, Score: score}
	hs.Entries = hs.Entries[:Capacity]
	return rank, true
}

// rankFor returns the index of the first entry score strictly beats.
func (hs *HighScores) rankFor(score int) int {
	for i, e := range hs.Entries {
		if score > e.Score {
			return i
		}
	}
	return len(hs.Entries)
}

// normalize pads or truncates the table to Capacity.
func (hs *HighScores) normalize() {
	for len(hs.Entries) < Capacity {
		hs.Entries = append(hs.Entries, Entry{Name: PlaceholderName})
	}
	hs.Entries = hs.Entries[:Capacity]
}

// ScoreStore persists a HighScores table.
type ScoreStore struct {
	Path string
}

// Load reads the table. A missing file yields a placeholder table.
func (s ScoreStore) Load() (*HighScores, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewHighScores(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load high scores: %w", err)
	}

	var hs HighScores
	if err := decode(s.Path, scoresMagic, data, &hs); err != nil {
		return nil, err
	}
	for i := 1; i < len(hs.Entries); i++ {
		if hs.Entries[i].Score > hs.Entries[i-1].Score {
			return nil, fmt.Errorf("%w: %s: entries out of order", ErrCorrupt, s.Path)
		}
	}
	hs.normalize()
	return &hs, nil
}

// pathLocks serialises Update calls per file within the process.
var pathLocks sync.Map // cleaned path -> *sync.Mutex

func lockPath(path string) func() {
	v, _ := pathLocks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Update reloads the table, applies fn and saves the result, holding a
// per-file lock so concurrent games in one process never drop each
// other's entries. Nothing is written when fn reports no change. Returns
// the table as it is on disk afterwards.
func (s ScoreStore) Update(fn func(hs *HighScores) (changed bool)) (*HighScores, error) {
	defer lockPath(s.Path)()

	hs, err := s.Load()
	if err != nil {
		return nil, err
	}
	if !fn(hs) {
		return hs, nil
	}
	if err := s.Save(hs); err != nil {
		return nil, err
	}
	return hs, nil
}

// Save writes the table.
func (s ScoreStore) Save(hs *HighScores) error {
	data, err := encode(scoresMagic, hs)
	if err != nil {
		return fmt.Errorf("encode high scores: %w", err)
	}
	if err := writeFile(s.Path, data); err != nil {
		return fmt.Errorf("save high scores: %w", err)
	}
	return nil
}
