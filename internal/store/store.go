// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/cleanse369/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed width so updated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// anonymousOwner keys the medal counter of sessions without an identity;
// signed-in users are keyed by their user id.
const anonymousOwner = ""

// Store wraps SQLite access for per-user cycle rows.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; the HTTP server shares this handle.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			user_id TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			program_key TEXT NOT NULL,
			start_iso TEXT NOT NULL,
			checks TEXT NOT NULL,
			is_completed INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, cycle_id)
		);`,
		`CREATE TABLE IF NOT EXISTS medals (
			owner TEXT PRIMARY KEY,
			completed INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_user_updated ON cycles(user_id, is_completed, updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LatestIncomplete returns the most recently updated incomplete row for the
// user, or nil when there is none.
func (s *Store) LatestIncomplete(ctx context.Context, userID string) (*model.CycleRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, cycle_id, program_key, start_iso, checks, is_completed, updated_at
		 FROM cycles
		 WHERE user_id = ? AND is_completed = 0
		 ORDER BY updated_at DESC
		 LIMIT 1`, userID)
	r, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Upsert writes the row keyed by (user_id, cycle_id); the same key
// overwrites, including a finished row, which is reopened.
func (s *Store) Upsert(ctx context.Context, r model.CycleRow) error {
	checks, err := encodeChecks(r.Checks)
	if err != nil {
		return err
	}
	updatedAt := r.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cycles (user_id, cycle_id, program_key, start_iso, checks, is_completed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, cycle_id) DO UPDATE SET
			program_key = excluded.program_key,
			start_iso = excluded.start_iso,
			checks = excluded.checks,
			is_completed = excluded.is_completed,
			updated_at = excluded.updated_at`,
		r.UserID,
		r.CycleID,
		r.ProgramKey,
		r.StartISO,
		checks,
		boolToInt(r.IsCompleted),
		updatedAt.UTC().Format(timeLayout),
	)
	return err
}

// MarkCompleted flags the row as finished and adds a medal to the user's
// counter in the same transaction.
func (s *Store) MarkCompleted(ctx context.Context, userID, cycleID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE cycles SET is_completed = 1, updated_at = ? WHERE user_id = ? AND cycle_id = ?`,
		s.now().UTC().Format(timeLayout), userID, cycleID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("cycle %q not found for user %q", cycleID, userID)
	}
	if err := incrementMedals(ctx, tx, userID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Discard deletes an incomplete row. Completed rows are kept.
func (s *Store) Discard(ctx context.Context, userID, cycleID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cycles WHERE user_id = ? AND cycle_id = ? AND is_completed = 0`,
		userID, cycleID)
	return err
}

// CountCompleted returns the user's medal count. It survives rows being
// reopened or discarded.
func (s *Store) CountCompleted(ctx context.Context, userID string) (int, error) {
	return s.medals(ctx, userID)
}

// ListCycles returns the user's rows, newest first.
func (s *Store) ListCycles(ctx context.Context, f model.CycleFilter) ([]model.CycleRow, error) {
	clauses := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.Completed != nil {
		clauses = append(clauses, "is_completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}
	query := fmt.Sprintf(`SELECT user_id, cycle_id, program_key, start_iso, checks, is_completed, updated_at
		FROM cycles
		WHERE %s
		ORDER BY updated_at DESC`, strings.Join(clauses, " AND "))
	if f.Last > 0 {
		query += " LIMIT ?"
		args = append(args, f.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CycleRow
	for rows.Next() {
		r, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LocalMedals returns the medal count kept for anonymous use.
func (s *Store) LocalMedals(ctx context.Context) (int, error) {
	return s.medals(ctx, anonymousOwner)
}

// IncrementLocalMedals adds one anonymous medal.
func (s *Store) IncrementLocalMedals(ctx context.Context) error {
	return incrementMedals(ctx, s.db, anonymousOwner)
}

func (s *Store) medals(ctx context.Context, owner string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT completed FROM medals WHERE owner = ?`, owner).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func incrementMedals(ctx context.Context, db execer, owner string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO medals (owner, completed) VALUES (?, 1)
		 ON CONFLICT (owner) DO UPDATE SET completed = completed + 1`, owner)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(sc scanner) (model.CycleRow, error) {
	var r model.CycleRow
	var checks, updatedAt string
	var completed int
	if err := sc.Scan(&r.UserID, &r.CycleID, &r.ProgramKey, &r.StartISO, &checks, &completed, &updatedAt); err != nil {
		return model.CycleRow{}, err
	}
	parsed, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		return model.CycleRow{}, err
	}
	r.UpdatedAt = parsed
	r.IsCompleted = completed != 0
	if err := json.Unmarshal([]byte(checks), &r.Checks); err != nil {
		return model.CycleRow{}, fmt.Errorf("cycle %q: bad checks column: %w", r.CycleID, err)
	}
	return r, nil
}

func encodeChecks(checks map[string]bool) (string, error) {
	slim := make(map[string]bool, len(checks))
	for id, done := range checks {
		if done {
			slim[id] = true
		}
	}
	raw, err := json.Marshal(slim)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
