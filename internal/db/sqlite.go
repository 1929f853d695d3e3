package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gabssanto/ruyienv/internal/session"
)

// Store persists activations and removal history in SQLite
type Store struct {
	db *sql.DB
}

// Removal is one recorded environment removal
type Removal struct {
	Workspace string
	EnvPath   string
	Label     string
	RemovedAt time.Time
}

// PruneResult holds the result of a prune operation
type PruneResult struct {
	RemovedCount int
	Removed      []session.Activation
}

// Open opens (creating if needed) the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; SQLite locks the whole file anyway.
	database.SetMaxOpenConns(1)

	s := &Store{db: database}
	if err := s.createTables(); err != nil {
		_ = database.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// createTables creates the necessary database tables
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS active_envs (
		workspace TEXT PRIMARY KEY,
		env_path TEXT NOT NULL,
		session_id TEXT NOT NULL,
		activated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace TEXT NOT NULL,
		env_path TEXT NOT NULL,
		label TEXT NOT NULL,
		removed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_removals_workspace ON removals(workspace);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// ActiveEnvironment returns the activation recorded for workspace
func (s *Store) ActiveEnvironment(workspace string) (session.Activation, bool, error) {
	var (
		a           session.Activation
		activatedAt int64
	)
	err := s.db.QueryRow(
		"SELECT workspace, env_path, session_id, activated_at FROM active_envs WHERE workspace = ?",
		workspace,
	).Scan(&a.Workspace, &a.EnvPath, &a.SessionID, &activatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Activation{}, false, nil
	}
	if err != nil {
		return session.Activation{}, false, fmt.Errorf("failed to query active environment: %w", err)
	}
	a.ActivatedAt = time.Unix(activatedAt, 0)
	return a, true, nil
}

// SetActiveEnvironment records a as the activation of its workspace
func (s *Store) SetActiveEnvironment(a session.Activation) error {
	activatedAt := a.ActivatedAt
	if activatedAt.IsZero() {
		activatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO active_envs (workspace, env_path, session_id, activated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(workspace) DO UPDATE SET
			env_path = excluded.env_path,
			session_id = excluded.session_id,
			activated_at = excluded.activated_at
	`, a.Workspace, a.EnvPath, a.SessionID, activatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record active environment: %w", err)
	}
	return nil
}

// ClearActiveEnvironment forgets the activation of workspace, if any
func (s *Store) ClearActiveEnvironment(workspace string) error {
	if _, err := s.db.Exec("DELETE FROM active_envs WHERE workspace = ?", workspace); err != nil {
		return fmt.Errorf("failed to clear active environment: %w", err)
	}
	return nil
}

// ListActivations returns every recorded activation ordered by workspace
func (s *Store) ListActivations() ([]session.Activation, error) {
	rows, err := s.db.Query(
		"SELECT workspace, env_path, session_id, activated_at FROM active_envs ORDER BY workspace",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activations []session.Activation
	for rows.Next() {
		var (
			a           session.Activation
			activatedAt int64
		)
		if err := rows.Scan(&a.Workspace, &a.EnvPath, &a.SessionID, &activatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activation: %w", err)
		}
		a.ActivatedAt = time.Unix(activatedAt, 0)
		activations = append(activations, a)
	}
	return activations, rows.Err()
}

// RecordRemoval appends r to the removal history
func (s *Store) RecordRemoval(r Removal) error {
	removedAt := r.RemovedAt
	if removedAt.IsZero() {
		removedAt = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO removals (workspace, env_path, label, removed_at) VALUES (?, ?, ?, ?)",
		r.Workspace, r.EnvPath, r.Label, removedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record removal: %w", err)
	}
	return nil
}

// ListRemovals returns the removal history of workspace, newest first.
// An empty workspace lists every workspace.
func (s *Store) ListRemovals(workspace string) ([]Removal, error) {
	query := "SELECT workspace, env_path, label, removed_at FROM removals"
	var args []any
	if workspace != "" {
		query += " WHERE workspace = ?"
		args = append(args, workspace)
	}
	query += " ORDER BY removed_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list removals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var removals []Removal
	for rows.Next() {
		var (
			r         Removal
			removedAt int64
		)
		if err := rows.Scan(&r.Workspace, &r.EnvPath, &r.Label, &removedAt); err != nil {
			return nil, fmt.Errorf("failed to scan removal: %w", err)
		}
		r.RemovedAt = time.Unix(removedAt, 0)
		removals = append(removals, r)
	}
	return removals, rows.Err()
}

// Prune removes activations whose environment directory no longer
// exists according to exists. With dryRun nothing is deleted.
func (s *Store) Prune(dryRun bool, exists func(dir string) bool) (*PruneResult, error) {
	activations, err := s.ListActivations()
	if err != nil {
		return nil, err
	}

	var stale []session.Activation
	for _, a := range activations {
		dir := filepath.Join(a.Workspace, filepath.FromSlash(session.Strip(a.EnvPath)))
		if !exists(dir) {
			stale = append(stale, a)
		}
	}

	result := &PruneResult{
		RemovedCount: len(stale),
		Removed:      stale,
	}
	if dryRun || len(stale) == 0 {
		return result, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range stale {
		if _, err := tx.Exec("DELETE FROM active_envs WHERE workspace = ?", a.Workspace); err != nil {
			return nil, fmt.Errorf("failed to prune activation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit prune: %w", err)
	}
	return result, nil
}
