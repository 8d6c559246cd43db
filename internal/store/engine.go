// Package store implements the embedded relational persistence engine for
// legal cases. The engine runs on an in-memory SQLite database that is the
// source of truth for a session; durability comes from whole-database
// snapshots written to the profile's data directory after mutations.
//
// One Store instance serves the whole process. Repositories obtained from
// it (Cases, Stages, Comments, ...) all share the same engine; individual
// statements execute to completion without interleaving, but multi-step
// operations outside WithTx are not atomic across callers.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Store is the embedded relational engine plus its durability adapter.
type Store struct {
	mu   sync.RWMutex
	open bool
	cfg  types.Config
	db   *sql.DB
	log  *zap.Logger
}

// New creates a Store. The store is not open; call Open with a Config to
// bootstrap the schema and restore any prior snapshot. A nil logger
// disables logging.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{log: logger}
}

// Open initializes the engine: creates the data directory, opens the
// in-memory database, bootstraps the schema, and restores the durable
// snapshot when one exists. Returns ErrAlreadyOpen if called twice.
//
// There is no degraded mode: any failure here leaves the store closed.
func (s *Store) Open(cfg types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return types.ErrAlreadyOpen
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	// A pooled second connection would see its own empty :memory:
	// database, so the engine runs on exactly one connection. This also
	// gives the single-writer execution model.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	s.db = db
	s.cfg = cfg
	s.open = true

	if err := s.restoreLocked(); err != nil {
		s.open = false
		s.db = nil
		db.Close()
		return fmt.Errorf("restore snapshot: %w", err)
	}

	if err := s.stampSchemaVersionLocked(); err != nil {
		s.open = false
		s.db = nil
		db.Close()
		return err
	}

	return nil
}

// Close releases the engine. Pending state is persisted first so a clean
// shutdown never loses mutations. Close is idempotent; after it, all
// operations return ErrEngineClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil // idempotent
	}

	if err := s.persistLocked(); err != nil {
		s.log.Warn("final snapshot persist failed", zap.Error(err))
		if s.cfg.Durable() {
			return fmt.Errorf("persist on close: %w", err)
		}
	}

	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	s.open = false
	return nil
}

// Config returns the configuration the store was opened with.
func (s *Store) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// handle returns the database handle, or ErrEngineClosed before Open /
// after Close. Every repository operation goes through this guard.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrEngineClosed
	}
	return s.db, nil
}

// WithTx runs fn inside a single transaction. A non-nil error from fn
// rolls everything back. Multi-step mutations (subscription upgrades,
// migration, cascade bookkeeping) go through here so partial application
// is impossible.
func (s *Store) WithTx(fn func(tx *sql.Tx) error) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// mutate runs fn in a transaction and then persists a snapshot according
// to the configured durability mode. All repository mutations funnel
// through it.
func (s *Store) mutate(fn func(tx *sql.Tx) error) error {
	if err := s.WithTx(fn); err != nil {
		return err
	}
	return s.persistAfterWrite()
}

// generateID generates a UUID v7 for entity IDs, falling back to v4 if v7
// generation fails.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
