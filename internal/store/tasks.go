// Task repository. Tasks attach to a case, optionally to a stage, and
// list in due-date order with creation time standing in for undated
// tasks.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Tasks is the typed repository for tasks.
type Tasks struct {
	s *Store
}

// Tasks returns the task repository.
func (s *Store) Tasks() *Tasks { return &Tasks{s: s} }

// Create inserts a task under its case.
func (r *Tasks) Create(t *types.Task) (string, error) {
	if t.CaseID == "" {
		return "", types.ErrInvalidID
	}
	if t.Title == "" {
		return "", types.ErrInvalidName
	}

	now := time.Now().UTC()
	t.TaskID = generateID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = types.TaskStatusOpen
	}
	if t.Priority == "" {
		t.Priority = types.TaskPriorityMedium
	}

	err := r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO tasks (task_id, case_id, stage_id, title, description, assignee, due_date, status, priority, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TaskID, t.CaseID, nullString(t.StageID), t.Title, t.Description,
			t.Assignee, formatNullTime(t.DueDate), t.Status, t.Priority,
			formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("persisting task: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return t.TaskID, nil
}

// Get retrieves a task by ID.
func (r *Tasks) Get(id string) (*types.Task, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT task_id, case_id, stage_id, title, description, assignee, due_date, status, priority, created_at, updated_at
		 FROM tasks WHERE task_id = ?`, id,
	)
	t, err := hydrateTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return t, nil
}

// taskColumns whitelists the columns Update accepts.
var taskColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"assignee":    "assignee",
	"dueDate":     "due_date",
	"status":      "status",
	"priority":    "priority",
}

// Update applies a partial field map to a task and refreshes updated_at.
func (r *Tasks) Update(id string, fields map[string]any) error {
	if id == "" {
		return types.ErrInvalidID
	}

	set := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for field, value := range fields {
		col, ok := taskColumns[field]
		if !ok {
			return fmt.Errorf("unknown task field %q", field)
		}
		if t, ok := value.(*time.Time); ok {
			value = formatNullTime(t)
		}
		if t, ok := value.(time.Time); ok {
			value = formatTime(t)
		}
		set = append(set, col+" = ?")
		args = append(args, value)
	}
	set = append(set, "updated_at = ?")
	args = append(args, formatTime(time.Now().UTC()))
	args = append(args, id)

	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE tasks SET "+strings.Join(set, ", ")+" WHERE task_id = ?", args...)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", id, err)
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

// Delete removes a task.
func (r *Tasks) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM tasks WHERE task_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
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

// ForCase returns a case's tasks ordered by COALESCE(due_date,
// created_at) ascending, so dated work sorts by deadline and undated work
// by age. A non-nil stageID narrows to that stage.
func (r *Tasks) ForCase(caseID string, stageID *string) ([]*types.Task, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	query := `SELECT task_id, case_id, stage_id, title, description, assignee, due_date, status, priority, created_at, updated_at
	          FROM tasks WHERE case_id = ?`
	args := []any{caseID}
	if stageID != nil {
		query += " AND stage_id = ?"
		args = append(args, *stageID)
	}
	query += " ORDER BY COALESCE(due_date, created_at) ASC, rowid ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		t, err := hydrateTask(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func hydrateTask(row scanner) (*types.Task, error) {
	var t types.Task
	var stageID, description, assignee, dueDate sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&t.TaskID, &t.CaseID, &stageID, &t.Title, &description,
		&assignee, &dueDate, &t.Status, &t.Priority, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.StageID = stringPtr(stageID)
	t.Description = description.String
	t.Assignee = assignee.String
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
