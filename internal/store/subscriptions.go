// Subscription repository. The invariant is at most one active row per
// user; Upgrade enforces it by cancelling old rows and inserting the new
// one inside a single transaction, so a half-applied upgrade cannot be
// observed.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Subscriptions is the typed repository for subscription rows.
type Subscriptions struct {
	s *Store
}

// Subscriptions returns the subscription repository.
func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s: s} }

// planDuration computes the end date for a paid plan.
func planDuration(plan string, start time.Time) *time.Time {
	var end time.Time
	switch plan {
	case types.PlanMonthly:
		end = start.AddDate(0, 1, 0)
	case types.PlanYearly:
		end = start.AddDate(1, 0, 0)
	default:
		return nil // free never expires
	}
	return &end
}

// Upgrade moves a user to a new plan: cancels every currently-active row,
// inserts the new active row with its computed end date, and mirrors the
// plan onto the user record. All four steps commit or roll back together.
func (r *Subscriptions) Upgrade(userID, plan string) (*types.Subscription, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	if !types.ValidPlan(plan) {
		return nil, types.ErrInvalidPlan
	}

	now := time.Now().UTC()
	sub := &types.Subscription{
		SubscriptionID: generateID(),
		UserID:         userID,
		PlanType:       plan,
		StartDate:      now,
		EndDate:        planDuration(plan, now),
		Status:         types.SubscriptionActive,
	}

	err := r.s.mutate(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow("SELECT COUNT(*) FROM users WHERE user_id = ?", userID).Scan(&exists); err != nil {
			return fmt.Errorf("checking user %s: %w", userID, err)
		}
		if exists == 0 {
			return types.ErrNotFound
		}

		_, err := tx.Exec(
			"UPDATE subscriptions SET status = ? WHERE user_id = ? AND status = ?",
			types.SubscriptionCancelled, userID, types.SubscriptionActive,
		)
		if err != nil {
			return fmt.Errorf("cancelling prior subscriptions: %w", err)
		}

		_, err = tx.Exec(
			`INSERT INTO subscriptions (subscription_id, user_id, plan_type, start_date, end_date, status)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sub.SubscriptionID, sub.UserID, sub.PlanType,
			formatTime(sub.StartDate), formatNullTime(sub.EndDate), sub.Status,
		)
		if err != nil {
			return fmt.Errorf("inserting subscription: %w", err)
		}

		_, err = tx.Exec(
			"UPDATE users SET subscription_type = ?, subscription_expiry = ? WHERE user_id = ?",
			plan, formatNullTime(sub.EndDate), userID,
		)
		if err != nil {
			return fmt.Errorf("mirroring plan onto user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ActiveForUser returns the user's active subscription, expiring it first
// when its end date has passed. Returns nil with no error when the user
// has no active row, which callers treat as the free plan.
func (r *Subscriptions) ActiveForUser(userID string) (*types.Subscription, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT subscription_id, user_id, plan_type, start_date, end_date, status
		 FROM subscriptions WHERE user_id = ? AND status = ?
		 ORDER BY start_date DESC LIMIT 1`,
		userID, types.SubscriptionActive,
	)
	sub, err := hydrateSubscription(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("getting active subscription for %s: %w", userID, err)
	}

	if sub.Expired(time.Now().UTC()) {
		if err := r.expire(sub); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return sub, nil
}

// expire marks a lapsed subscription expired and resets the user mirror
// to free.
func (r *Subscriptions) expire(sub *types.Subscription) error {
	return r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"UPDATE subscriptions SET status = ? WHERE subscription_id = ?",
			types.SubscriptionExpired, sub.SubscriptionID,
		)
		if err != nil {
			return fmt.Errorf("expiring subscription %s: %w", sub.SubscriptionID, err)
		}
		_, err = tx.Exec(
			"UPDATE users SET subscription_type = ?, subscription_expiry = NULL WHERE user_id = ?",
			types.PlanFree, sub.UserID,
		)
		if err != nil {
			return fmt.Errorf("resetting user plan: %w", err)
		}
		return nil
	})
}

// History returns all subscription rows for a user, newest first.
func (r *Subscriptions) History(userID string) ([]*types.Subscription, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT subscription_id, user_id, plan_type, start_date, end_date, status
		 FROM subscriptions WHERE user_id = ? ORDER BY start_date DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions for %s: %w", userID, err)
	}
	defer rows.Close()

	var subs []*types.Subscription
	for rows.Next() {
		sub, err := hydrateSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func hydrateSubscription(row scanner) (*types.Subscription, error) {
	var sub types.Subscription
	var startDate string
	var endDate sql.NullString
	err := row.Scan(&sub.SubscriptionID, &sub.UserID, &sub.PlanType, &startDate, &endDate, &sub.Status)
	if err != nil {
		return nil, err
	}
	if sub.StartDate, err = parseTime(startDate); err != nil {
		return nil, err
	}
	if sub.EndDate, err = parseNullTime(endDate); err != nil {
		return nil, err
	}
	return &sub, nil
}
