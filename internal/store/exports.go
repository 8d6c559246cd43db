// Export repository. Exports are an append-only audit of generated
// artifacts; they are never updated and disappear only with their case.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Exports is the typed repository for export audit records.
type Exports struct {
	s *Store
}

// Exports returns the export repository.
func (s *Store) Exports() *Exports { return &Exports{s: s} }

// Record appends an export audit row.
func (r *Exports) Record(e *types.Export) (string, error) {
	if e.CaseID == "" {
		return "", types.ErrInvalidID
	}
	if e.Filename == "" {
		return "", types.ErrInvalidName
	}

	e.ExportID = generateID()
	e.CreatedAt = time.Now().UTC()

	prefs, err := marshalBlob(e.Preferences)
	if err != nil {
		return "", err
	}

	err = r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO exports (export_id, case_id, export_type, filename, file_size, preferences, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ExportID, e.CaseID, e.Type, e.Filename, e.FileSize, prefs, formatTime(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("persisting export: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return e.ExportID, nil
}

// ForCase returns a case's export history, newest first.
func (r *Exports) ForCase(caseID string) ([]*types.Export, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT export_id, case_id, export_type, filename, file_size, preferences, created_at
		 FROM exports WHERE case_id = ? ORDER BY created_at DESC, rowid DESC`, caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing exports for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var exports []*types.Export
	for rows.Next() {
		var e types.Export
		var prefs sql.NullString
		var createdAt string
		err := rows.Scan(&e.ExportID, &e.CaseID, &e.Type, &e.Filename,
			&e.FileSize, &prefs, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("hydrating export row: %w", err)
		}
		if e.Preferences, err = unmarshalBlob(prefs); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		exports = append(exports, &e)
	}
	return exports, rows.Err()
}
