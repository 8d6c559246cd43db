// Comment repository. Comments hang off a case, optionally off a stage,
// and may reply to a parent comment; deleting the parent orphans replies
// to top level (parent set null) rather than cascading.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Comments is the typed repository for comments.
type Comments struct {
	s *Store
}

// Comments returns the comment repository.
func (s *Store) Comments() *Comments { return &Comments{s: s} }

// Create inserts a comment under its case.
func (r *Comments) Create(c *types.Comment) (string, error) {
	if c.CaseID == "" {
		return "", types.ErrInvalidID
	}
	if c.Content == "" {
		return "", fmt.Errorf("comment content must not be empty")
	}

	now := time.Now().UTC()
	c.CommentID = generateID()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO comments (comment_id, case_id, stage_id, author, content, parent_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.CommentID, c.CaseID, nullString(c.StageID), c.Author, c.Content,
			nullString(c.ParentID), formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("persisting comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return c.CommentID, nil
}

// Get retrieves a comment by ID.
func (r *Comments) Get(id string) (*types.Comment, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT comment_id, case_id, stage_id, author, content, parent_id, created_at, updated_at
		 FROM comments WHERE comment_id = ?`, id,
	)
	c, err := hydrateComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting comment %s: %w", id, err)
	}
	return c, nil
}

// UpdateContent rewrites a comment's body and refreshes updated_at.
func (r *Comments) UpdateContent(id, content string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE comments SET content = ?, updated_at = ? WHERE comment_id = ?",
			content, formatTime(time.Now().UTC()), id,
		)
		if err != nil {
			return fmt.Errorf("updating comment %s: %w", id, err)
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

// Delete removes a comment. Replies survive with their parent cleared.
func (r *Comments) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM comments WHERE comment_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting comment %s: %w", id, err)
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

// ForCase returns a case's comments oldest first. A non-nil stageID
// narrows to that stage's comments.
func (r *Comments) ForCase(caseID string, stageID *string) ([]*types.Comment, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	query := `SELECT comment_id, case_id, stage_id, author, content, parent_id, created_at, updated_at
	          FROM comments WHERE case_id = ?`
	args := []any{caseID}
	if stageID != nil {
		query += " AND stage_id = ?"
		args = append(args, *stageID)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing comments for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var comments []*types.Comment
	for rows.Next() {
		c, err := hydrateComment(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func hydrateComment(row scanner) (*types.Comment, error) {
	var c types.Comment
	var stageID, parentID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&c.CommentID, &c.CaseID, &stageID, &c.Author, &c.Content,
		&parentID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.StageID = stringPtr(stageID)
	c.ParentID = stringPtr(parentID)
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
