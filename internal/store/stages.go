// Stage repository. Stages belong to exactly one case and order by
// stage_index within it; the index is not unique and ties break by
// insertion order (rowid).
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Stages is the typed repository for case stages.
type Stages struct {
	s *Store
}

// Stages returns the stage repository.
func (s *Store) Stages() *Stages { return &Stages{s: s} }

// Create inserts a new stage under its case and indexes the stage text.
// The owning case must exist; the foreign key rejects orphans.
func (r *Stages) Create(st *types.Stage) (string, error) {
	if st.CaseID == "" {
		return "", types.ErrInvalidID
	}
	if st.StageName == "" {
		return "", types.ErrInvalidName
	}

	st.StageID = generateID()
	if st.Status == "" {
		st.Status = types.StageStatusPending
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}

	err := r.s.mutate(func(tx *sql.Tx) error {
		return r.CreateTx(tx, st)
	})
	if err != nil {
		return "", err
	}
	return st.StageID, nil
}

// CreateTx inserts a stage inside an existing transaction. Used by Create
// and by the migration bridge.
func (r *Stages) CreateTx(tx *sql.Tx, st *types.Stage) error {
	meta, err := marshalBlob(st.Metadata)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO stages (stage_id, case_id, stage_name, stage_index, input, output, status, created_at, completed_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.StageID, st.CaseID, st.StageName, st.StageIndex, st.Input, st.Output,
		st.Status, formatTime(st.CreatedAt), formatNullTime(st.CompletedAt), meta,
	)
	if err != nil {
		return fmt.Errorf("persisting stage: %w", err)
	}
	return upsertStageEntriesTx(tx, st)
}

// Get retrieves a stage by ID.
func (r *Stages) Get(id string) (*types.Stage, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT stage_id, case_id, stage_name, stage_index, input, output, status, created_at, completed_at, metadata
		 FROM stages WHERE stage_id = ?`, id,
	)
	st, err := hydrateStage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting stage %s: %w", id, err)
	}
	return st, nil
}

// Update rewrites a stage's mutable fields (name, input, output, status,
// completion, metadata) and refreshes its search entries. The status value
// is stored as given; callers validate transitions with Stage.AdvanceTo.
func (r *Stages) Update(st *types.Stage) error {
	if st.StageID == "" {
		return types.ErrInvalidID
	}
	meta, err := marshalBlob(st.Metadata)
	if err != nil {
		return err
	}

	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE stages SET stage_name = ?, stage_index = ?, input = ?, output = ?, status = ?, completed_at = ?, metadata = ?
			 WHERE stage_id = ?`,
			st.StageName, st.StageIndex, st.Input, st.Output, st.Status,
			formatNullTime(st.CompletedAt), meta, st.StageID,
		)
		if err != nil {
			return fmt.Errorf("updating stage %s: %w", st.StageID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return upsertStageEntriesTx(tx, st)
	})
}

// Delete removes a stage. Comments and tasks scoped to it fall back to
// case scope (stage_id set null); its search entries are removed.
func (r *Stages) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM stages WHERE stage_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting stage %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// ForCase returns all stages of a case ordered by stage_index ascending,
// insertion order breaking ties.
func (r *Stages) ForCase(caseID string) ([]*types.Stage, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT stage_id, case_id, stage_name, stage_index, input, output, status, created_at, completed_at, metadata
		 FROM stages WHERE case_id = ? ORDER BY stage_index ASC, rowid ASC`, caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stages for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var stages []*types.Stage
	for rows.Next() {
		st, err := hydrateStage(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating stage row: %w", err)
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func hydrateStage(row scanner) (*types.Stage, error) {
	var st types.Stage
	var createdAt string
	var completedAt, metadata sql.NullString
	err := row.Scan(&st.StageID, &st.CaseID, &st.StageName, &st.StageIndex,
		&st.Input, &st.Output, &st.Status, &createdAt, &completedAt, &metadata)
	if err != nil {
		return nil, err
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	if st.Metadata, err = unmarshalBlob(metadata); err != nil {
		return nil, err
	}
	return &st, nil
}
