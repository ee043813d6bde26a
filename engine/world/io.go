package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSerialization is returned for any failure reading or writing a map file.
var ErrSerialization = errors.New("world: serialization failed")

// Decode reads a world's persisted fields from JSON.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - *World: the decoded world with empty runtime arrays
//   - error: an error wrapping ErrSerialization on malformed input
func Decode(r io.Reader) (*World, error) {
	var w World
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSerialization, err)
	}
	return &w, nil
}

// Encode writes a world's persisted fields as indented JSON.
func Encode(wr io.Writer, w *World) error {
	enc := json.NewEncoder(wr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSerialization, err)
	}
	return nil
}

// Load reads a map file.
//
// Parameters:
//   - path: the map file path
//
// Returns:
//   - *World: the loaded world
//   - error: an error wrapping ErrSerialization if the file cannot be opened or decoded
func Load(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSerialization, path, err)
	}
	defer f.Close()

	w, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Save writes a map file, replacing any existing file at path.
func Save(path string, w *World) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrSerialization, path, err)
	}
	if err := Encode(f, w); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrSerialization, path, err)
	}
	return nil
}
