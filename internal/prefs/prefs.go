// Package prefs persists the small record of user choices and resolved tool
// state that survives between runs.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jaa/ytf/internal/fileops"
)

// Record is the persisted preference state. Fields missing on disk keep the
// defaults they were initialised with.
type Record struct {
	LastChoice        string `yaml:"last_choice"`
	LastPlaylistIndex int    `yaml:"last_playlist_index"`
	LastPlaylistID    string `yaml:"last_playlist_id"`
	ToolVersion       string `yaml:"tool_version"`
	DownloadRoot      string `yaml:"download_root"`
	ErrorsAsWarnings  bool   `yaml:"errors_as_warnings"`
}

func Defaults(errorsAsWarnings bool) Record {
	return Record{
		LastChoice:       "1",
		ErrorsAsWarnings: errorsAsWarnings,
	}
}

// Store loads and saves a Record.
type Store interface {
	Load(defaults Record) (Record, error)
	Save(rec Record) error
}

// FileStore keeps the record as YAML at Path. Writes replace the file
// atomically; concurrent writers are not coordinated and the last one wins.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load decodes the file over defaults. A missing file is not an error. A
// field of the wrong type keeps its default while the other fields are still
// returned, together with the error. Unparseable YAML returns the defaults
// and the error. Either way the caller can announce it and carry on.
func (s *FileStore) Load(defaults Record) (Record, error) {
	payload, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read preferences %s: %w", s.Path, err)
	}
	if strings.TrimSpace(string(payload)) == "" {
		return defaults, nil
	}

	rec := defaults
	if err := yaml.Unmarshal(payload, &rec); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return rec, fmt.Errorf("parse preferences %s: %w", s.Path, err)
		}
		return defaults, fmt.Errorf("parse preferences %s: %w", s.Path, err)
	}
	return rec, nil
}

func (s *FileStore) Save(rec Record) error {
	payload, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := fileops.WriteFileAtomic(s.Path, payload, 0o644); err != nil {
		return fmt.Errorf("write preferences %s: %w", s.Path, err)
	}
	return nil
}

// MemoryStore is a Store that never touches disk. Until the first Save it
// hands back the defaults.
type MemoryStore struct {
	Record Record
	Saved  int
}

func (m *MemoryStore) Load(defaults Record) (Record, error) {
	if m.Saved == 0 {
		return defaults, nil
	}
	return m.Record, nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.Record = rec
	m.Saved++
	return nil
}
