package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultStateDir is the directory under $HOME for state files
	DefaultStateDir = ".local/state/yabai-cli"
	// DefaultStateFile is the state file name
	DefaultStateFile = "state.json"
)

// GetStatePath returns the full path to the state file
func GetStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultStateDir, DefaultStateFile)
}

// LoadStateFrom loads state from a specific path
func LoadStateFrom(path string) (*RuntimeState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRuntimeState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state RuntimeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Version < StateVersion {
		return migrateState(&state), nil
	}
	return &state, nil
}

// SaveTo persists state to a specific path
func (rs *RuntimeState) SaveTo(path string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.LastUpdated = time.Now()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write atomically using temp file + rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	return nil
}

// Reset clears the profile record and saves to the given path
func (rs *RuntimeState) Reset(path string) error {
	rs.mu.Lock()
	rs.CurrentProfile = ""
	rs.ProfileAppliedAt = time.Time{}
	rs.History = nil
	rs.mu.Unlock()

	return rs.SaveTo(path)
}

// migrateState upgrades older files. Version 1 files carried per-space
// layout data that no longer applies, so only the timestamp survives.
func migrateState(old *RuntimeState) *RuntimeState {
	migrated := NewRuntimeState()
	migrated.LastUpdated = old.LastUpdated
	return migrated
}
