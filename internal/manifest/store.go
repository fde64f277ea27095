package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/randompixle/Flame/internal/logging"
)

// PersistenceError reports a manifest that could not be read or written.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("manifest %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store reads and writes the manifest file.
type Store struct {
	Fs   afero.Fs
	Path string
}

// NewStore returns a store for the manifest at path on the OS filesystem.
func NewStore(path string) *Store {
	return &Store{Fs: afero.NewOsFs(), Path: path}
}

// Load returns the persisted manifest. A missing file is created empty.
// Malformed content is treated as empty and replaced on the next Save.
func (s *Store) Load() (*Manifest, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		m := New()
		if err := s.Save(m); err != nil {
			return m, err
		}
		return m, nil
	}
	if err != nil {
		return New(), &PersistenceError{Op: "read", Path: s.Path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logging.Warn().Str("path", s.Path).Err(err).Msg("manifest is malformed, starting empty")
		return New(), nil
	}
	if m.Commands == nil {
		m.Commands = map[string]Record{}
	}
	return &m, nil
}

// Save writes m atomically: the document goes to a sibling temp file that is
// then renamed over the manifest.
func (s *Store) Save(m *Manifest) error {
	if m.Commands == nil {
		m.Commands = map[string]Record{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.Path, Err: err}
	}
	data = append(data, '\n')

	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return &PersistenceError{Op: "write", Path: s.Path, Err: err}
	}
	tmp := s.Path + ".tmp"
	if err := afero.WriteFile(s.Fs, tmp, data, 0644); err != nil {
		return &PersistenceError{Op: "write", Path: s.Path, Err: err}
	}
	if err := s.Fs.Rename(tmp, s.Path); err != nil {
		_ = s.Fs.Remove(tmp)
		return &PersistenceError{Op: "write", Path: s.Path, Err: err}
	}
	return nil
}
