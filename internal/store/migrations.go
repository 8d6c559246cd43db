// Migration audit repository. A row in legacy_migrations records one
// completed legacy import and doubles as the migrate-once guard: the
// bridge skips its run when any row exists.
package store

import (
	"database/sql"
	"fmt"
	"time"
)

// MigrationRecord summarizes one completed legacy import.
type MigrationRecord struct {
	MigrationID    string
	MigratedCases  int
	MigratedStages int
	CompletedAt    time.Time
}

// Migrations is the typed repository for the migration audit trail.
type Migrations struct {
	s *Store
}

// Migrations returns the migration audit repository.
func (s *Store) Migrations() *Migrations { return &Migrations{s: s} }

// Completed reports whether a legacy migration has already run against
// this store.
func (r *Migrations) Completed() (bool, error) {
	db, err := r.s.handle()
	if err != nil {
		return false, err
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM legacy_migrations").Scan(&n); err != nil {
		return false, fmt.Errorf("counting migration runs: %w", err)
	}
	return n > 0, nil
}

// RecordTx appends the audit row for a completed run inside the bridge's
// import transaction, so the guard and the imported data commit together.
func (r *Migrations) RecordTx(tx *sql.Tx, migratedCases, migratedStages int) error {
	_, err := tx.Exec(
		`INSERT INTO legacy_migrations (migration_id, migrated_cases, migrated_stages, completed_at)
		 VALUES (?, ?, ?, ?)`,
		generateID(), migratedCases, migratedStages, formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("recording migration run: %w", err)
	}
	return nil
}

// History returns all recorded migration runs, oldest first.
func (r *Migrations) History() ([]*MigrationRecord, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT migration_id, migrated_cases, migrated_stages, completed_at FROM legacy_migrations ORDER BY completed_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing migration runs: %w", err)
	}
	defer rows.Close()

	var records []*MigrationRecord
	for rows.Next() {
		var rec MigrationRecord
		var completedAt string
		if err := rows.Scan(&rec.MigrationID, &rec.MigratedCases, &rec.MigratedStages, &completedAt); err != nil {
			return nil, fmt.Errorf("hydrating migration row: %w", err)
		}
		if rec.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
