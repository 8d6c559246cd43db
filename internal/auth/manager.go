// Package auth implements account management and the subscription
// lifecycle on top of the store's user and subscription repositories.
//
// There is no process-wide current user: Login returns a Session value
// that the calling layer holds, so independent callers (and tests) can
// run concurrent sessions against one store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/qanoon-app/lawstore/internal/store"
	"github.com/qanoon-app/lawstore/pkg/types"
)

// bcryptCost is the work factor for new password hashes.
const bcryptCost = 12

// Manager exposes the auth and subscription API surface.
type Manager struct {
	store *store.Store
	log   *zap.Logger
}

// NewManager creates a Manager over the given store. A nil logger
// disables logging.
func NewManager(s *store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: s, log: logger}
}

// Register creates an account with a bcrypt-hashed password and returns
// the new user ID. A taken email returns ErrUserExists.
func (m *Manager) Register(email, password, fullName string) (string, error) {
	if email == "" || password == "" {
		return "", types.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	u := &types.User{
		Email:            email,
		PasswordHash:     string(hash),
		FullName:         fullName,
		SubscriptionType: types.PlanFree,
		IsActive:         true,
	}
	id, err := m.store.Users().Create(u)
	if err != nil {
		return "", err
	}

	if _, err := m.store.Analytics().Track("", "user_registered", nil, nil); err != nil {
		m.log.Warn("tracking registration failed", zap.Error(err))
	}
	return id, nil
}

// Login verifies credentials against the stored hash, stamps last_login,
// and returns a new Session. Unknown email, inactive account, and wrong
// password all map to ErrInvalidCredentials so login failures cannot
// enumerate accounts.
func (m *Manager) Login(email, password string) (*Session, error) {
	u, err := m.store.Users().GetByEmail(email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := m.store.Users().TouchLastLogin(u.UserID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now

	return &Session{user: u, loginAt: now}, nil
}

// Logout invalidates a session. Safe on a nil or already-closed session.
func (m *Manager) Logout(s *Session) {
	if s != nil {
		s.user = nil
	}
}

// UpdateProfile rewrites the display name and email of an account.
// Changing email to one already taken returns ErrUserExists.
func (m *Manager) UpdateProfile(userID, fullName, email string) error {
	return m.store.Users().UpdateProfile(userID, fullName, email)
}

// ChangePassword verifies the current password and replaces the hash.
// A wrong current password returns ErrInvalidCredentials.
func (m *Manager) ChangePassword(userID, current, next string) error {
	u, err := m.store.Users().Get(userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrInvalidCredentials
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return types.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return m.store.Users().SetPasswordHash(userID, string(hash))
}

// CheckSubscriptionStatus returns the user's active subscription, or nil
// when the user is on the free plan (no active row, or the last one
// lapsed).
func (m *Manager) CheckSubscriptionStatus(userID string) (*types.Subscription, error) {
	return m.store.Subscriptions().ActiveForUser(userID)
}

// UpgradeSubscription moves the user to a monthly or yearly plan. The
// cancel-old/insert-new/mirror sequence commits atomically in the store.
func (m *Manager) UpgradeSubscription(userID, plan string) (*types.Subscription, error) {
	sub, err := m.store.Subscriptions().Upgrade(userID, plan)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{"plan": plan}
	if _, err := m.store.Analytics().Track("", "subscription_upgraded", meta, nil); err != nil {
		m.log.Warn("tracking upgrade failed", zap.Error(err))
	}
	return sub, nil
}

// ValidateSession refreshes the session's subscription state. A session
// with no active subscription row degrades to the free plan rather than
// failing. Returns ErrNoSession for nil or logged-out sessions.
func (m *Manager) ValidateSession(s *Session) error {
	if s == nil || s.user == nil {
		return types.ErrNoSession
	}

	sub, err := m.CheckSubscriptionStatus(s.user.UserID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.user.SubscriptionType = types.PlanFree
		s.user.SubscriptionExpiry = nil
		return nil
	}
	s.user.SubscriptionType = sub.PlanType
	s.user.SubscriptionExpiry = sub.EndDate
	return nil
}
