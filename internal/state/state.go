package state

import (
	"sync"
	"time"
)

const (
	// StateVersion is the current state file format version
	StateVersion = 2

	// maxHistory bounds the profile application history kept on disk
	maxHistory = 20
)

// RuntimeState is the root state structure persisted to disk
type RuntimeState struct {
	Version          int            `json:"version"`
	CurrentProfile   string         `json:"currentProfile,omitempty"`
	ProfileAppliedAt time.Time      `json:"profileAppliedAt,omitempty"`
	History          []ProfileEntry `json:"history,omitempty"` // newest last
	LastUpdated      time.Time      `json:"lastUpdated"`

	mu sync.RWMutex `json:"-"` // For thread-safe access (not serialized)
}

// ProfileEntry records one profile application attempt
type ProfileEntry struct {
	ID        string    `json:"id"`
	AppliedAt time.Time `json:"appliedAt"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// NewRuntimeState creates a new empty runtime state
func NewRuntimeState() *RuntimeState {
	return &RuntimeState{
		Version:     StateVersion,
		LastUpdated: time.Now(),
	}
}

// RecordProfile appends an application attempt. Only a successful run
// changes the current profile.
func (rs *RuntimeState) RecordProfile(id string, at time.Time, runErr error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	entry := ProfileEntry{ID: id, AppliedAt: at, Success: runErr == nil}
	if runErr != nil {
		entry.Error = runErr.Error()
	} else {
		rs.CurrentProfile = id
		rs.ProfileAppliedAt = at
	}

	rs.History = append(rs.History, entry)
	if len(rs.History) > maxHistory {
		rs.History = append([]ProfileEntry(nil), rs.History[len(rs.History)-maxHistory:]...)
	}
}

// Current returns the active profile ID and when it was applied.
// ok is false when no profile has been applied yet.
func (rs *RuntimeState) Current() (id string, at time.Time, ok bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return rs.CurrentProfile, rs.ProfileAppliedAt, rs.CurrentProfile != ""
}

// RecentHistory returns up to n entries, newest first
func (rs *RuntimeState) RecentHistory(n int) []ProfileEntry {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if n <= 0 || n > len(rs.History) {
		n = len(rs.History)
	}
	out := make([]ProfileEntry, 0, n)
	for i := len(rs.History) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, rs.History[i])
	}
	return out
}
