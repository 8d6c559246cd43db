// Case repository. Cases are the root entity: deletion cascades to
// stages, comments, tasks, exports, and search index entries through the
// schema's foreign keys, while analytics events survive as audit history.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Cases is the typed repository for case records.
type Cases struct {
	s *Store
}

// Cases returns the case repository.
func (s *Store) Cases() *Cases { return &Cases{s: s} }

// CaseFilters narrows and pages List results. Zero values mean "no
// filter"; a zero limit applies the default cap.
type CaseFilters struct {
	CaseType string
	Status   string
	Limit    int
	Offset   int
}

// defaultListLimit caps unbounded list and search queries.
const defaultListLimit = 100

// Create inserts a new case and indexes its searchable text. Missing
// classification fields default to a general, basic, active case.
func (r *Cases) Create(c *types.Case) (string, error) {
	if c.Name == "" {
		return "", types.ErrInvalidName
	}

	now := time.Now().UTC()
	c.CaseID = generateID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.CaseType == "" {
		c.CaseType = types.CaseTypeGeneral
	}
	if c.Complexity == "" {
		c.Complexity = types.ComplexityBasic
	}
	if c.Status == "" {
		c.Status = types.CaseStatusActive
	}

	err := r.s.mutate(func(tx *sql.Tx) error {
		return r.CreateTx(tx, c)
	})
	if err != nil {
		return "", err
	}
	return c.CaseID, nil
}

// CreateTx inserts a case inside an existing transaction. Used by Create
// and by the migration bridge, which imports many cases atomically.
func (r *Cases) CreateTx(tx *sql.Tx, c *types.Case) error {
	_, err := tx.Exec(
		`INSERT INTO cases (case_id, name, case_type, party_role, complexity, status, tags, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CaseID, c.Name, c.CaseType, c.PartyRole, c.Complexity, c.Status,
		joinTags(c.Tags), c.Description, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("persisting case: %w", err)
	}
	return upsertCaseEntryTx(tx, c)
}

// Get retrieves a case by ID.
func (r *Cases) Get(id string) (*types.Case, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT case_id, name, case_type, party_role, complexity, status, tags, description, created_at, updated_at
		 FROM cases WHERE case_id = ?`, id,
	)
	c, err := hydrateCase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting case %s: %w", id, err)
	}
	return c, nil
}

// caseColumns whitelists the columns Update accepts, keyed by the field
// names callers use.
var caseColumns = map[string]string{
	"name":        "name",
	"caseType":    "case_type",
	"partyRole":   "party_role",
	"complexity":  "complexity",
	"status":      "status",
	"tags":        "tags",
	"description": "description",
}

// Update applies a partial field map to a case and always refreshes
// updated_at. Unknown field names are rejected. When searchable text
// changes the search index entry is refreshed in the same transaction.
func (r *Cases) Update(id string, fields map[string]any) error {
	if id == "" {
		return types.ErrInvalidID
	}

	set := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	textChanged := false
	for field, value := range fields {
		col, ok := caseColumns[field]
		if !ok {
			return fmt.Errorf("unknown case field %q", field)
		}
		if field == "name" {
			if s, ok := value.(string); !ok || s == "" {
				return types.ErrInvalidName
			}
		}
		if field == "name" || field == "description" || field == "tags" {
			textChanged = true
		}
		if tags, ok := value.([]string); ok {
			value = joinTags(tags)
		}
		set = append(set, col+" = ?")
		args = append(args, value)
	}
	set = append(set, "updated_at = ?")
	args = append(args, formatTime(time.Now().UTC()))
	args = append(args, id)

	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE cases SET "+strings.Join(set, ", ")+" WHERE case_id = ?", args...)
		if err != nil {
			return fmt.Errorf("updating case %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		if !textChanged {
			return nil
		}
		c, err := hydrateCase(tx.QueryRow(
			`SELECT case_id, name, case_type, party_role, complexity, status, tags, description, created_at, updated_at
			 FROM cases WHERE case_id = ?`, id,
		))
		if err != nil {
			return fmt.Errorf("re-reading case %s: %w", id, err)
		}
		return upsertCaseEntryTx(tx, c)
	})
}

// Delete removes a case. The schema cascades the deletion to stages,
// comments, tasks, exports, and search index entries; analytics events
// are left untouched.
func (r *Cases) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM cases WHERE case_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting case %s: %w", id, err)
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

// List returns cases matching the filters, most recently updated first.
func (r *Cases) List(f CaseFilters) ([]*types.Case, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	query := `SELECT case_id, name, case_type, party_role, complexity, status, tags, description, created_at, updated_at
	          FROM cases`
	var where []string
	var args []any
	if f.CaseType != "" {
		where = append(where, "case_type = ?")
		args = append(args, f.CaseType)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, case_id LIMIT ? OFFSET ?"
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, f.Offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var cases []*types.Case
	for rows.Next() {
		c, err := hydrateCase(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating case row: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Count returns the total number of cases.
func (r *Cases) Count() (int64, error) {
	db, err := r.s.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM cases").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cases: %w", err)
	}
	return n, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the hydrate helpers.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateCase(row scanner) (*types.Case, error) {
	var c types.Case
	var partyRole, tags, description sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&c.CaseID, &c.Name, &c.CaseType, &partyRole, &c.Complexity,
		&c.Status, &tags, &description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.PartyRole = partyRole.String
	c.Tags = splitTags(tags)
	c.Description = description.String
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
