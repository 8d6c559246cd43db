// Snapshot export/import for the in-memory engine. A snapshot is the whole
// database serialized as a SQLite file image; callers treat it as an
// opaque unit. Durable persistence writes the image to snapshot.db in the
// data directory using the temp-file, fsync, rename pattern so a crash
// never leaves a torn snapshot behind.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// snapshotFileName is the durable snapshot inside the data directory.
const snapshotFileName = "snapshot.db"

func (s *Store) snapshotPath() string {
	return filepath.Join(s.cfg.DataDir, snapshotFileName)
}

// tempSnapshotPath returns a fresh path for VACUUM INTO, which refuses to
// write to an existing file.
func (s *Store) tempSnapshotPath() string {
	name := fmt.Sprintf(".snapshot-%d.tmp", time.Now().UnixNano())
	return filepath.Join(s.cfg.DataDir, name)
}

// quoteLiteral escapes a string for embedding in a SQL literal. VACUUM
// INTO and ATTACH do not accept bound parameters for the file name.
func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// ExportSnapshot serializes the entire engine to a byte buffer.
func (s *Store) ExportSnapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrEngineClosed
	}
	return s.exportLocked()
}

// exportLocked writes the database image to a temp file via VACUUM INTO
// and reads it back. The caller must hold s.mu.
func (s *Store) exportLocked() ([]byte, error) {
	tmp := s.tempSnapshotPath()
	defer os.Remove(tmp)

	if _, err := s.db.Exec("VACUUM INTO " + quoteLiteral(tmp)); err != nil {
		return nil, fmt.Errorf("serializing engine: %w", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot image: %w", err)
	}
	return data, nil
}

// ImportSnapshot replaces the entire engine contents with the given
// snapshot image and persists it. Partial import is not possible: the
// replacement runs in one transaction.
func (s *Store) ImportSnapshot(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrEngineClosed
	}

	tmp := s.tempSnapshotPath()
	defer os.Remove(tmp)

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("staging snapshot image: %w", err)
	}

	if err := s.loadSnapshotFileLocked(tmp); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := s.persistLocked(); err != nil {
		if s.cfg.Durable() {
			return fmt.Errorf("persist imported snapshot: %w", err)
		}
		s.log.Warn("best-effort snapshot persist failed", zap.Error(err))
	}
	return nil
}

// Persist writes the current engine state to the durable snapshot file.
// In volatile mode failures are logged and swallowed; in durable mode
// they surface to the caller.
func (s *Store) Persist() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrEngineClosed
	}
	if err := s.persistLocked(); err != nil {
		if s.cfg.Durable() {
			return fmt.Errorf("persist snapshot: %w", err)
		}
		s.log.Warn("best-effort snapshot persist failed", zap.Error(err))
	}
	return nil
}

// persistAfterWrite is the hook every repository mutation runs after its
// transaction commits.
func (s *Store) persistAfterWrite() error {
	return s.Persist()
}

// persistLocked snapshots the engine into the data directory atomically.
// The caller must hold s.mu.
func (s *Store) persistLocked() error {
	tmp := s.tempSnapshotPath()

	if _, err := s.db.Exec("VACUUM INTO " + quoteLiteral(tmp)); err != nil {
		return fmt.Errorf("serializing engine: %w", err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("opening snapshot image: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing snapshot image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing snapshot image: %w", err)
	}

	if err := os.Rename(tmp, s.snapshotPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// restoreLocked loads the durable snapshot into the fresh engine at Open.
// A missing snapshot file means a fresh profile and is not an error. The
// caller must hold s.mu.
func (s *Store) restoreLocked() error {
	path := s.snapshotPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat snapshot: %w", err)
	}
	return s.loadSnapshotFileLocked(path)
}

// loadSnapshotFileLocked replaces all table contents from a snapshot file.
// The file is attached read-only next to the in-memory database and each
// table is copied in one transaction. Tables absent from the snapshot
// (older profiles) are left empty. The caller must hold s.mu.
func (s *Store) loadSnapshotFileLocked(path string) error {
	if _, err := s.db.Exec("ATTACH " + quoteLiteral(path) + " AS snap"); err != nil {
		return fmt.Errorf("attaching snapshot: %w", err)
	}
	defer s.db.Exec("DETACH snap")

	// Foreign keys are a connection-level pragma and cannot change inside
	// a transaction, so toggle them around the copy.
	if _, err := s.db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disabling foreign keys for load: %w", err)
	}
	defer s.db.Exec("PRAGMA foreign_keys = ON")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	// Delete children before parents.
	for i := len(snapshotTables) - 1; i >= 0; i-- {
		if _, err := tx.Exec("DELETE FROM main." + snapshotTables[i]); err != nil {
			return fmt.Errorf("clearing %s: %w", snapshotTables[i], err)
		}
	}

	for _, table := range snapshotTables {
		ok, err := snapshotHasTable(tx, table)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		stmt := fmt.Sprintf("INSERT INTO main.%s SELECT * FROM snap.%s", table, table)
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("loading %s: %w", table, err)
		}
	}

	// A snapshot stamped by a newer build rolls the whole load back,
	// leaving the prior contents intact.
	if err := checkSchemaVersionTx(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// snapshotHasTable reports whether the attached snapshot contains a table.
func snapshotHasTable(tx *sql.Tx, name string) (bool, error) {
	var n int
	err := tx.QueryRow(
		"SELECT COUNT(*) FROM snap.sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspecting snapshot schema: %w", err)
	}
	return n > 0, nil
}

// Compact runs a reclaim pass over the engine and re-persists the
// snapshot. Compaction honors the configured durability mode.
func (s *Store) Compact() error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("compacting engine: %w", err)
	}
	return s.Persist()
}
