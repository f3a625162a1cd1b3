// Package sqlite provides SQLite database operations for ubertimetracker.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreConfig holds database configuration.
type StoreConfig struct {
	Path     string // Path to SQLite database file
	MaxConns int    // Maximum number of open connections (default: 4)
	WALMode  bool   // Enable WAL journal mode
}

// Store represents the SQLite database connection with a prepared-statement
// cache shared by the per-entity stores.
type Store struct {
	db *sql.DB

	stmtMu sync.RWMutex
	stmts  map[string]*sql.Stmt
}

// NewStore opens the database, runs migrations, and applies the WAL/busy
// pragmas. Conflicting writes to the same session row are serialized through
// BeginImmediate plus the busy timeout.
func NewStore(cfg StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(0) // SQLite connections are cheap, never expire

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if cfg.WALMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set synchronous mode: %w", err)
		}
	}
	// Retry instead of failing immediately when a concurrent write holds
	// the database lock.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	store := newStoreFromDB(db)
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// newStoreFromDB wraps an already-open connection. Used by tests.
func newStoreFromDB(db *sql.DB) *Store {
	return &Store{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
}

// Close closes all cached statements and the database connection.
func (s *Store) Close() error {
	s.stmtMu.Lock()
	for _, stmt := range s.stmts {
		_ = stmt.Close()
	}
	s.stmts = make(map[string]*sql.Stmt)
	s.stmtMu.Unlock()
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// DB returns the underlying connection for operations the wrappers don't
// cover (tests, migrations).
func (s *Store) DB() *sql.DB {
	return s.db
}

// GetStmt returns a cached prepared statement for the query, preparing it on
// first use.
func (s *Store) GetStmt(query string) (*sql.Stmt, error) {
	s.stmtMu.RLock()
	stmt, ok := s.stmts[query]
	s.stmtMu.RUnlock()
	if ok {
		return stmt, nil
	}

	s.stmtMu.Lock()
	defer s.stmtMu.Unlock()
	if stmt, ok := s.stmts[query]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	s.stmts[query] = stmt
	return stmt, nil
}

// ExecContext executes a query through the statement cache.
func (s *Store) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	stmt, err := s.GetStmt(query)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// QueryRowContext runs a single-row query through the statement cache.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	stmt, err := s.GetStmt(query)
	if err != nil {
		// Fall back to the uncached path so callers still get the scan error.
		return s.db.QueryRowContext(ctx, query, args...)
	}
	return stmt.QueryRowContext(ctx, args...)
}

// QueryContext runs a multi-row query through the statement cache.
func (s *Store) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	stmt, err := s.GetStmt(query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// BeginTx opens a transaction giving transitions a read-compute-write
// critical section. Combined with the busy timeout this serializes
// conflicting writes to the same session row.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}
