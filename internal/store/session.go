package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tomz197/snakes/internal/round"
)

const sessionMagic = "SNKS"

// SessionStore saves an interrupted round so it can be resumed.
type SessionStore struct {
	Path string
}

// Exists reports whether a saved session is present.
func (s SessionStore) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && info.Mode().IsRegular()
}

// Save replaces the saved session with snap.
func (s SessionStore) Save(snap *round.Snapshot) error {
	data, err := encode(sessionMagic, snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := writeFile(s.Path, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the saved session. It returns ErrNoSession when there is
// none and ErrCorrupt when the file cannot be decoded. The file is left
// in place; Clear removes it once the round is finished.
func (s SessionStore) Load() (*round.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var snap round.Snapshot
	if err := decode(s.Path, sessionMagic, data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Clear removes the saved session. Clearing a missing session is not an
// error.
func (s SessionStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
