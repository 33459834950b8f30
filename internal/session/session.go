// Package session keeps one user's cycle state in step with whichever
// backend is authoritative for that user.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/model"
)

// Source names a persistence backend.
type Source int

const (
	SourceNone Source = iota
	SourceToken
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceToken:
		return "token"
	case SourceRemote:
		return "remote"
	default:
		return "none"
	}
}

// ResolveSource picks where a session loads from. A signed-in user with an
// incomplete remote row resumes it; everyone else reads the token slot, so
// anonymous progress is carried over on a first sign-in.
func ResolveSource(identityPresent, remoteRowExists bool) Source {
	if identityPresent && remoteRowExists {
		return SourceRemote
	}
	return SourceToken
}

// PushTarget is the backend that receives every mutation.
func PushTarget(identityPresent bool) Source {
	if identityPresent {
		return SourceRemote
	}
	return SourceToken
}

// ErrNoActiveCycle is returned by operations that need a running cycle.
var ErrNoActiveCycle = errors.New("no active cycle")

// PersistError reports a failed backend write or read. It is not fatal: the
// in-memory session already reflects the operation.
type PersistError struct {
	Backend Source
	Op      string
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsWarning reports whether err is made only of PersistErrors, possibly
// joined. Callers keep going after a warning; nil is not a warning.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !IsWarning(e) {
				return false
			}
		}
		return true
	}
	var pe *PersistError
	return errors.As(err, &pe)
}

// RemoteStore is the per-user row store.
type RemoteStore interface {
	LatestIncomplete(ctx context.Context, userID string) (*model.CycleRow, error)
	Upsert(ctx context.Context, r model.CycleRow) error
	MarkCompleted(ctx context.Context, userID, cycleID string) error
	Discard(ctx context.Context, userID, cycleID string) error
	CountCompleted(ctx context.Context, userID string) (int, error)
}

// Slot holds the anonymous state token (a URL query value or a local file).
type Slot interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// MedalCounter keeps the finished-cycle count of anonymous sessions.
type MedalCounter interface {
	LocalMedals(ctx context.Context) (int, error)
	IncrementLocalMedals(ctx context.Context) error
}

// Session is the per-user context every operation reads and mutates.
type Session struct {
	UserID          string
	Active          *cycle.State
	CompletedCycles int
	// Source is where Active was loaded from.
	Source Source
	// Pushes counts backend writes triggered by mutations.
	Pushes int
}

// Authenticated reports whether an identity is attached.
func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

// MemorySlot is a Slot held in memory.
type MemorySlot struct {
	token string
}

// NewMemorySlot returns a slot preloaded with token.
func NewMemorySlot(token string) *MemorySlot {
	return &MemorySlot{token: token}
}

func (m *MemorySlot) Read() (string, error) {
	return m.token, nil
}

func (m *MemorySlot) Write(token string) error {
	m.token = token
	return nil
}

func (m *MemorySlot) Clear() error {
	m.token = ""
	return nil
}

// Token returns the current value.
func (m *MemorySlot) Token() string {
	return m.token
}
