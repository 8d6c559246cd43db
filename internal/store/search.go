// Search index repository. The search_index table is a denormalized
// shadow of case and stage text: every mutation that changes searchable
// text upserts the matching entries, so substring search never scans the
// primary tables. Search is a linear LIKE filter with no relevance
// ranking.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Search is the typed repository for the search shadow table.
type Search struct {
	s *Store
}

// Search returns the search repository.
func (s *Store) Search() *Search { return &Search{s: s} }

// upsertCaseEntryTx refreshes the case-level search entry (name plus
// description) inside the caller's transaction.
func upsertCaseEntryTx(tx *sql.Tx, c *types.Case) error {
	content := strings.TrimSpace(c.Name + " " + c.Description)
	return upsertEntryTx(tx, c.CaseID, nil, types.SearchEntryCase, content, joinTags(c.Tags))
}

// upsertStageEntriesTx refreshes the three stage-level entries (stage
// name, input, output) inside the caller's transaction. Tags are copied
// from the owning case.
func upsertStageEntriesTx(tx *sql.Tx, st *types.Stage) error {
	var tags sql.NullString
	err := tx.QueryRow("SELECT tags FROM cases WHERE case_id = ?", st.CaseID).Scan(&tags)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("reading case tags: %w", err)
	}

	entries := []struct {
		entryType string
		content   string
	}{
		{types.SearchEntryStage, st.StageName},
		{types.SearchEntryInput, st.Input},
		{types.SearchEntryOutput, st.Output},
	}
	for _, e := range entries {
		if strings.TrimSpace(e.content) == "" {
			// Cleared text must stop matching, so drop the entry.
			if err := deleteEntryTx(tx, st.CaseID, st.StageID, e.entryType); err != nil {
				return err
			}
			continue
		}
		if err := upsertEntryTx(tx, st.CaseID, &st.StageID, e.entryType, e.content, tags.String); err != nil {
			return err
		}
	}
	return nil
}

// deleteEntryTx removes the entry for (case, stage, type), if one exists.
func deleteEntryTx(tx *sql.Tx, caseID, stageID, entryType string) error {
	_, err := tx.Exec(
		"DELETE FROM search_index WHERE case_id = ? AND entry_type = ? AND stage_id = ?",
		caseID, entryType, stageID,
	)
	if err != nil {
		return fmt.Errorf("deleting search entry: %w", err)
	}
	return nil
}

// upsertEntryTx updates the entry for (case, stage, type) or inserts one
// when none exists.
func upsertEntryTx(tx *sql.Tx, caseID string, stageID *string, entryType, content, tags string) error {
	now := formatTime(time.Now().UTC())

	var res sql.Result
	var err error
	if stageID == nil {
		res, err = tx.Exec(
			`UPDATE search_index SET content = ?, tags = ?, created_at = ?
			 WHERE case_id = ? AND entry_type = ? AND stage_id IS NULL`,
			content, tags, now, caseID, entryType,
		)
	} else {
		res, err = tx.Exec(
			`UPDATE search_index SET content = ?, tags = ?, created_at = ?
			 WHERE case_id = ? AND entry_type = ? AND stage_id = ?`,
			content, tags, now, caseID, entryType, *stageID,
		)
	}
	if err != nil {
		return fmt.Errorf("updating search entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = tx.Exec(
		`INSERT INTO search_index (entry_id, case_id, stage_id, content, entry_type, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		generateID(), caseID, nullString(stageID), content, entryType, tags, now,
	)
	if err != nil {
		return fmt.Errorf("inserting search entry: %w", err)
	}
	return nil
}

// ForCase returns the raw index entries shadowing a case, case-level entry
// first, then stage entries in upsert order.
func (r *Search) ForCase(caseID string) ([]*types.SearchEntry, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT entry_id, case_id, stage_id, content, entry_type, tags, created_at
		 FROM search_index WHERE case_id = ? ORDER BY stage_id IS NOT NULL, rowid`, caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing search entries for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var entries []*types.SearchEntry
	for rows.Next() {
		var e types.SearchEntry
		var stageID, tags sql.NullString
		var createdAt string
		err := rows.Scan(&e.EntryID, &e.CaseID, &stageID, &e.Content, &e.Type, &tags, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("hydrating search entry row: %w", err)
		}
		e.StageID = stringPtr(stageID)
		e.Tags = splitTags(tags)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// escapeLike escapes LIKE wildcards in a user query so they match
// literally.
func escapeLike(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, "%", `\%`)
	q = strings.ReplaceAll(q, "_", `\_`)
	return q
}

// Find performs a substring match over the shadow table joined to cases,
// optionally filtered by case type and status, most recently updated
// cases first. The cap defaults to the standard list limit.
func (r *Search) Find(query string, f types.SearchFilters) ([]*types.SearchResult, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	sqlQuery := `SELECT si.case_id, si.stage_id, si.entry_type, si.content,
	                    c.name, c.case_type, c.status, c.updated_at
	             FROM search_index si
	             JOIN cases c ON c.case_id = si.case_id
	             WHERE si.content LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(query) + "%"}
	if f.CaseType != "" {
		sqlQuery += " AND c.case_type = ?"
		args = append(args, f.CaseType)
	}
	if f.Status != "" {
		sqlQuery += " AND c.status = ?"
		args = append(args, f.Status)
	}
	sqlQuery += " ORDER BY c.updated_at DESC, si.entry_id LIMIT ?"
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	rows, err := db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer rows.Close()

	var results []*types.SearchResult
	for rows.Next() {
		var res types.SearchResult
		var stageID sql.NullString
		var content, updatedAt string
		err := rows.Scan(&res.CaseID, &stageID, &res.Type, &content,
			&res.CaseName, &res.CaseType, &res.Status, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("hydrating search row: %w", err)
		}
		res.StageID = stringPtr(stageID)
		res.Snippet = snippet(content, query)
		if res.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

// snippetRunes is the window of indexed text returned around a match.
const snippetRunes = 160

// snippet returns a short window of content centered on the first match
// of query, or the leading window when the match position is unknown.
func snippet(content, query string) string {
	runes := []rune(content)
	start := 0
	if idx := strings.Index(content, query); idx > 0 {
		start = len([]rune(content[:idx]))
		if start > snippetRunes/4 {
			start -= snippetRunes / 4
		} else {
			start = 0
		}
	}
	end := start + snippetRunes
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
