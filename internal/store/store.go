// Package store persists rounds and high scores to local files.
//
// Both files are a 4-byte magic, a format version byte and a msgpack
// body. A missing file is absent state, never an error; a file that
// cannot be decoded is reported as ErrCorrupt.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const formatVersion = 1

var (
	// ErrNoSession is returned when no saved session exists.
	ErrNoSession = errors.New("no saved session")
	// ErrCorrupt is returned for files that exist but cannot be decoded.
	ErrCorrupt = errors.New("corrupt save file")
)

func encode(magic string, v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(formatVersion)
	if err := msgpack.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode checks the header of data and decodes the body into v.
// Any failure is wrapped in ErrCorrupt.
func decode(path, magic string, data []byte, v any) error {
	header := len(magic) + 1
	if len(data) < header || string(data[:len(magic)]) != magic {
		return fmt.Errorf("%w: %s: bad header", ErrCorrupt, path)
	}
	if data[len(magic)] != formatVersion {
		return fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, path, data[len(magic)])
	}
	if err := msgpack.Unmarshal(data[header:], v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// writeFile replaces path atomically so a crash mid-save never leaves a
// truncated file behind.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
