// User repository. Password material stays hashed; the auth layer owns
// hashing and verification, this repository only stores and retrieves
// account rows.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// Users is the typed repository for user accounts.
type Users struct {
	s *Store
}

// Users returns the user repository.
func (s *Store) Users() *Users { return &Users{s: s} }

// Create inserts a new account. A duplicate email surfaces as
// ErrUserExists so callers can give an actionable message.
func (r *Users) Create(u *types.User) (string, error) {
	if u.Email == "" {
		return "", types.ErrInvalidName
	}

	u.UserID = generateID()
	u.CreatedAt = time.Now().UTC()
	if u.SubscriptionType == "" {
		u.SubscriptionType = types.PlanFree
	}

	err := r.s.mutate(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO users (user_id, email, password_hash, full_name, subscription_type, subscription_expiry, created_at, last_login, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.UserID, u.Email, u.PasswordHash, u.FullName, u.SubscriptionType,
			formatNullTime(u.SubscriptionExpiry), formatTime(u.CreatedAt),
			formatNullTime(u.LastLogin), boolToInt(u.IsActive),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrUserExists
			}
			return fmt.Errorf("persisting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return u.UserID, nil
}

// Get retrieves an account by ID.
func (r *Users) Get(id string) (*types.User, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}
	return r.getWhere(db, "user_id = ?", id)
}

// GetByEmail retrieves an active account by email. Inactive and unknown
// accounts both return ErrNotFound; the auth layer folds that into
// ErrInvalidCredentials.
func (r *Users) GetByEmail(email string) (*types.User, error) {
	if email == "" {
		return nil, types.ErrInvalidID
	}
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}
	return r.getWhere(db, "email = ? AND is_active = 1", email)
}

func (r *Users) getWhere(db *sql.DB, where string, args ...any) (*types.User, error) {
	row := db.QueryRow(
		`SELECT user_id, email, password_hash, full_name, subscription_type, subscription_expiry, created_at, last_login, is_active
		 FROM users WHERE `+where, args...,
	)
	u, err := hydrateUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// UpdateProfile rewrites the account's display name and email.
func (r *Users) UpdateProfile(id, fullName, email string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE users SET full_name = ?, email = ? WHERE user_id = ?",
			fullName, email, id,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return types.ErrUserExists
			}
			return fmt.Errorf("updating profile for %s: %w", id, err)
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

// SetPasswordHash replaces the stored password hash.
func (r *Users) SetPasswordHash(id, hash string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE users SET password_hash = ? WHERE user_id = ?", hash, id)
		if err != nil {
			return fmt.Errorf("updating password for %s: %w", id, err)
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

// TouchLastLogin stamps a successful login.
func (r *Users) TouchLastLogin(id string, at time.Time) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		if _, err := tx.Exec("UPDATE users SET last_login = ? WHERE user_id = ?", formatTime(at), id); err != nil {
			return fmt.Errorf("stamping last login for %s: %w", id, err)
		}
		return nil
	})
}

// SetActive enables or disables an account.
func (r *Users) SetActive(id string, active bool) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return r.s.mutate(func(tx *sql.Tx) error {
		res, err := tx.Exec("UPDATE users SET is_active = ? WHERE user_id = ?", boolToInt(active), id)
		if err != nil {
			return fmt.Errorf("toggling account %s: %w", id, err)
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

func hydrateUser(row scanner) (*types.User, error) {
	var u types.User
	var expiry, lastLogin sql.NullString
	var createdAt string
	var isActive int
	err := row.Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.SubscriptionType, &expiry, &createdAt, &lastLogin, &isActive)
	if err != nil {
		return nil, err
	}
	if u.SubscriptionExpiry, err = parseNullTime(expiry); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.LastLogin, err = parseNullTime(lastLogin); err != nil {
		return nil, err
	}
	u.IsActive = isActive != 0
	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The driver does not export a typed error for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
