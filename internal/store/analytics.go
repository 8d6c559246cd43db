// Analytics repository. Events append only; they have no foreign key so
// deleting a case keeps its history. All summary figures come from
// aggregate queries, never application-level loops over events.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Analytics is the typed repository for analytics events.
type Analytics struct {
	s *Store
}

// Analytics returns the analytics repository.
func (s *Store) Analytics() *Analytics { return &Analytics{s: s} }

// Track appends an event for an action performed on a case. Metadata and
// duration are optional.
func (r *Analytics) Track(caseID, action string, metadata map[string]any, duration *int64) (string, error) {
	if action == "" {
		return "", fmt.Errorf("action must not be empty")
	}

	eventID := generateID()
	meta, err := marshalBlob(metadata)
	if err != nil {
		return "", err
	}

	err = r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO analytics_events (event_id, case_id, action, timestamp, metadata, duration)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			eventID, caseID, action, formatTime(time.Now().UTC()), meta, nullInt(duration),
		)
		if err != nil {
			return fmt.Errorf("persisting event: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return eventID, nil
}

// ForCase returns the events recorded against a case, oldest first. The
// case itself need not exist anymore.
func (r *Analytics) ForCase(caseID string) ([]*types.AnalyticsEvent, error) {
	if caseID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT event_id, case_id, action, timestamp, metadata, duration
		 FROM analytics_events WHERE case_id = ? ORDER BY timestamp ASC, rowid ASC`, caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var events []*types.AnalyticsEvent
	for rows.Next() {
		e, err := hydrateEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Purge bulk-deletes all events older than the cutoff. This is the only
// way events ever leave the store.
func (r *Analytics) Purge(before time.Time) (int64, error) {
	var n int64
	err := r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM analytics_events WHERE timestamp < ?", formatTime(before))
		if err != nil {
			return fmt.Errorf("purging events: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Summary aggregates store-wide usage: total cases, group-by counts for
// case type and status, average stage count per case, and the ten most
// frequent actions. A non-nil from/to bounds the action ranking's time
// range; the case figures always reflect current state.
func (r *Analytics) Summary(from, to *time.Time) (*types.AnalyticsSummary, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	sum := &types.AnalyticsSummary{
		CasesByType:   make(map[string]int64),
		CasesByStatus: make(map[string]int64),
		From:          from,
		To:            to,
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM cases").Scan(&sum.TotalCases); err != nil {
		return nil, fmt.Errorf("counting cases: %w", err)
	}

	if err := groupCount(db, "case_type", sum.CasesByType); err != nil {
		return nil, err
	}
	if err := groupCount(db, "status", sum.CasesByStatus); err != nil {
		return nil, err
	}

	err = db.QueryRow(
		`SELECT COALESCE(CAST((SELECT COUNT(*) FROM stages) AS REAL) / NULLIF((SELECT COUNT(*) FROM cases), 0), 0)`,
	).Scan(&sum.AvgStagesPer)
	if err != nil {
		return nil, fmt.Errorf("averaging stages per case: %w", err)
	}

	query := "SELECT action, COUNT(*) AS n FROM analytics_events"
	var where []string
	var args []any
	if from != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(*from))
	}
	if to != nil {
		where = append(where, "timestamp < ?")
		args = append(args, formatTime(*to))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY action ORDER BY n DESC, action ASC LIMIT 10"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ac types.ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return nil, fmt.Errorf("hydrating action count: %w", err)
		}
		sum.TopActions = append(sum.TopActions, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sum, nil
}

// groupCount fills dest with COUNT(*) grouped by the given cases column.
func groupCount(db *sql.DB, column string, dest map[string]int64) error {
	rows, err := db.Query(fmt.Sprintf("SELECT %s, COUNT(*) FROM cases GROUP BY %s", column, column))
	if err != nil {
		return fmt.Errorf("grouping cases by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("hydrating group count: %w", err)
		}
		dest[key] = n
	}
	return rows.Err()
}

func hydrateEvent(row scanner) (*types.AnalyticsEvent, error) {
	var e types.AnalyticsEvent
	var timestamp string
	var metadata sql.NullString
	var duration sql.NullInt64
	err := row.Scan(&e.EventID, &e.CaseID, &e.Action, &timestamp, &metadata, &duration)
	if err != nil {
		return nil, err
	}
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}
	if e.Metadata, err = unmarshalBlob(metadata); err != nil {
		return nil, err
	}
	if duration.Valid {
		d := duration.Int64
		e.Duration = &d
	}
	return &e, nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
