package main

import (
	"os"
	"path/filepath"
	"strings"
)

// SessionTracker tracks the last completed recording session
type SessionTracker struct {
	stateFile string
}

// NewSessionTracker creates a new tracker with the given state file path
func NewSessionTracker(stateFile string) *SessionTracker {
	return &SessionTracker{stateFile: stateFile}
}

// LastSessionDate reads the last completed session date from the state file
func (t *SessionTracker) LastSessionDate() string {
	data, err := os.ReadFile(t.stateFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetLastSessionDate writes the date to the state file
func (t *SessionTracker) SetLastSessionDate(date string) error {
	dir := filepath.Dir(t.stateFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	return os.WriteFile(t.stateFile, []byte(date+"\n"), 0600)
}

// AlreadyRecorded checks if the given date's session was already completed
func (t *SessionTracker) AlreadyRecorded(date string) bool {
	return t.LastSessionDate() == date
}
