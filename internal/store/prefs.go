// Preference repository: store-global key/value settings.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Prefs is the typed repository for preferences.
type Prefs struct {
	s *Store
}

// Prefs returns the preference repository.
func (s *Store) Prefs() *Prefs { return &Prefs{s: s} }

// Set writes a preference, replacing any prior value.
func (r *Prefs) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, formatTime(time.Now().UTC()),
		)
		if err != nil {
			return fmt.Errorf("setting preference %s: %w", key, err)
		}
		return nil
	})
}

// Get reads a preference. Returns ErrNotFound for unknown keys.
func (r *Prefs) Get(key string) (*types.Preference, error) {
	if key == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	var p types.Preference
	var updatedAt string
	err = db.QueryRow("SELECT key, value, updated_at FROM preferences WHERE key = ?", key).
		Scan(&p.Key, &p.Value, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting preference %s: %w", key, err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a preference. Unknown keys are a no-op.
func (r *Prefs) Delete(key string) error {
	if key == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
			return fmt.Errorf("deleting preference %s: %w", key, err)
		}
		return nil
	})
}

// All returns every preference keyed by name.
func (r *Prefs) All() (map[string]string, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT key, value FROM preferences ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("hydrating preference row: %w", err)
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}
