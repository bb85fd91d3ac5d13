// Package store persists per-diagram view state in SQLite so zoom, fit mode
// and the compression toggle survive between runs.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"lanes2svg/internal/logging"
	"lanes2svg/internal/session"
)

// ErrNotFound is returned by Load when no state was saved for a diagram.
var ErrNotFound = errors.New("view state not found")

// Store is a SQLite view-state store.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. ":memory:" opens an
// in-memory database that lives until Close.
func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logging.Debug("view state store opened", "path", path)
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS view_states (
		diagram TEXT PRIMARY KEY,
		compression_enabled INTEGER NOT NULL DEFAULT 1,
		scale REAL NOT NULL,
		fit_mode INTEGER NOT NULL DEFAULT 0,
		prior_scale REAL NOT NULL,
		prior_scroll REAL NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save stores the view state of a diagram, replacing any earlier one.
func (s *Store) Save(diagram string, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO view_states (diagram, compression_enabled, scale, fit_mode, prior_scale, prior_scroll, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(diagram) DO UPDATE SET
			compression_enabled = excluded.compression_enabled,
			scale = excluded.scale,
			fit_mode = excluded.fit_mode,
			prior_scale = excluded.prior_scale,
			prior_scroll = excluded.prior_scroll,
			updated_at = excluded.updated_at
	`,
		diagram,
		boolToInt(st.CompressionEnabled),
		st.View.Scale,
		boolToInt(st.View.FitMode),
		st.View.PriorScale,
		st.View.PriorScroll,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save view state %q: %w", diagram, err)
	}
	return nil
}

// Load returns the saved view state of a diagram, or ErrNotFound.
func (s *Store) Load(diagram string) (session.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		st          session.State
		compression int
		fitMode     int
	)
	err := s.db.QueryRow(`
		SELECT compression_enabled, scale, fit_mode, prior_scale, prior_scroll
		FROM view_states WHERE diagram = ?
	`, diagram).Scan(&compression, &st.View.Scale, &fitMode, &st.View.PriorScale, &st.View.PriorScroll)
	if errors.Is(err, sql.ErrNoRows) {
		return session.State{}, ErrNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("load view state %q: %w", diagram, err)
	}

	st.CompressionEnabled = compression != 0
	st.View.FitMode = fitMode != 0
	return st, nil
}

// Delete removes the saved state of a diagram. Deleting a missing entry is
// not an error.
func (s *Store) Delete(diagram string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM view_states WHERE diagram = ?`, diagram); err != nil {
		return fmt.Errorf("delete view state %q: %w", diagram, err)
	}
	return nil
}

// Diagrams lists the names with saved state, most recently saved first.
func (s *Store) Diagrams() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT diagram FROM view_states ORDER BY updated_at DESC, diagram`)
	if err != nil {
		return nil, fmt.Errorf("list view states: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan view state: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
