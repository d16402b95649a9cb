// Package state persists the build history as a JSON file. Access is
// serialized with a mutex; every mutation is a full read-modify-write so
// concurrent appends never lose records.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

const stateFileName = "forge_builds.json"

// maxRecords bounds the history file; oldest entries are dropped first.
const maxRecords = 200

// Store is a file-backed build history.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore returns a store rooted at dir. When dir is empty the location is
// resolved from FORGE_STATE_DIR, then /var/lib/forge, then the working
// directory, then the temp dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) filePath() string {
	if s.dir != "" {
		return filepath.Join(s.dir, stateFileName)
	}
	if dir := os.Getenv("FORGE_STATE_DIR"); dir != "" {
		return filepath.Join(dir, stateFileName)
	}
	// Prefer a persistent location; fall back to the working dir rather than
	// an ephemeral temp directory that may be cleared on reboot.
	defaultDir := "/var/lib/forge"
	if err := os.MkdirAll(defaultDir, 0o755); err == nil {
		return filepath.Join(defaultDir, stateFileName)
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, stateFileName)
	}
	return filepath.Join(os.TempDir(), stateFileName)
}

// loadUnlocked reads the history file. Caller must hold the mutex.
func (s *Store) loadUnlocked() ([]domain.BuildRecord, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load build history: %w", err)
	}
	var out []domain.BuildRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal build history: %w", err)
	}
	return out, nil
}

// saveUnlocked writes the history file. Caller must hold the mutex.
func (s *Store) saveUnlocked(records []domain.BuildRecord) error {
	p := s.filePath()
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir state dir: %w", err)
	}
	if err := os.WriteFile(p, b, 0o640); err != nil {
		return fmt.Errorf("write build history: %w", err)
	}
	return nil
}

// Append adds a record, newest last, trimming history beyond maxRecords.
func (s *Store) Append(r domain.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	records = append(records, r)
	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}
	return s.saveUnlocked(records)
}

// List returns all persisted build records, oldest first.
func (s *Store) List() ([]domain.BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}
