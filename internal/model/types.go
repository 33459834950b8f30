// Package model defines shared data structures.
package model

import "time"

// Config defines tracker settings after merging file and flags.
type Config struct {
	Program  string
	Start    string
	User     string
	DBPath   string
	SlotPath string
	Addr     string
	LogLevel string
	Verbose  bool
}

// CycleRow is one cycle as stored per user.
type CycleRow struct {
	UserID      string
	CycleID     string
	ProgramKey  string
	StartISO    string
	Checks      map[string]bool
	IsCompleted bool
	UpdatedAt   time.Time
}

// CycleFilter narrows history listings.
type CycleFilter struct {
	UserID    string
	Completed *bool
	Last      int
}
