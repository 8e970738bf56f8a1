package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status is what the monitor knows about the service
type Status struct {
	Healthy    bool      `json:"healthy"`
	LastCheck  time.Time `json:"last_check"`
	LastChange time.Time `json:"last_change"`
	Failures   int       `json:"failures"` // Consecutive failed probes
	LastError  string    `json:"last_error,omitempty"`

	LastSync     time.Time `json:"last_sync"`
	LastSnapshot string    `json:"last_snapshot,omitempty"`
}

// State holds the monitor status with thread-safe access and optional
// persistence to a JSON file
type State struct {
	mu       sync.RWMutex
	current  Status
	filePath string
}

// NewState creates a new State instance.
// If filePath is provided, attempts to restore state from disk.
func NewState(filePath string) (*State, error) {
	s := &State{filePath: filePath}

	if filePath != "" {
		if err := s.restore(); err != nil && !os.IsNotExist(err) {
			// Caller decides whether a corrupt file is fatal
			return s, err
		}
	}

	return s, nil
}

// RecordHealth stores a probe result and reports whether the healthy flag
// changed. The first probe always counts as a change.
func (s *State) RecordHealth(u Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.current.LastCheck.IsZero() || s.current.Healthy != u.Healthy

	s.current.Healthy = u.Healthy
	s.current.LastCheck = u.At
	if changed {
		s.current.LastChange = u.At
	}
	if u.Healthy {
		s.current.Failures = 0
		s.current.LastError = ""
	} else {
		s.current.Failures++
		if u.Err != nil {
			s.current.LastError = u.Err.Error()
		}
	}

	return changed, s.persist()
}

// RecordSync stores the id of the snapshot taken at the given time
func (s *State) RecordSync(snapshotID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.LastSync = at
	s.current.LastSnapshot = snapshotID
	return s.persist()
}

// Get returns a copy of the current status
func (s *State) Get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// persist saves the current status to disk.
// Must be called with lock held.
func (s *State) persist() error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	// Write atomically via temp file + rename
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}

func (s *State) restore() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
	return nil
}
