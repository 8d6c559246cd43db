package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qanoon-app/lawstore/pkg/types"
)

func mustCreateUser(t *testing.T, s *Store, email string) *types.User {
	t.Helper()
	u := &types.User{Email: email, PasswordHash: "$2a$12$fakehashfortesting", FullName: "Test User", IsActive: true}
	_, err := s.Users().Create(u)
	require.NoError(t, err)
	return u
}

func TestUserCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "a@example.com")

	got, err := s.Users().Get(u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, types.PlanFree, got.SubscriptionType)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastLogin)
}

func TestUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, "dup@example.com")

	_, err := s.Users().Create(&types.User{Email: "dup@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, types.ErrUserExists)
}

func TestUserGetByEmailSkipsInactive(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "gone@example.com")

	require.NoError(t, s.Users().SetActive(u.UserID, false))
	_, err := s.Users().GetByEmail("gone@example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUserUpdateProfileAndLogin(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "old@example.com")

	require.NoError(t, s.Users().UpdateProfile(u.UserID, "New Name", "new@example.com"))
	now := time.Now().UTC()
	require.NoError(t, s.Users().TouchLastLogin(u.UserID, now))

	got, err := s.Users().Get(u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "new@example.com", got.Email)
	require.NotNil(t, got.LastLogin)
}

func TestSubscriptionUpgrade(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "payer@example.com")

	sub, err := s.Subscriptions().Upgrade(u.UserID, types.PlanYearly)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.EndDate)
	assert.WithinDuration(t, time.Now().UTC().AddDate(1, 0, 0), *sub.EndDate, time.Minute)

	// The plan is mirrored onto the user record.
	got, err := s.Users().Get(u.UserID)
	require.NoError(t, err)
	assert.Equal(t, types.PlanYearly, got.SubscriptionType)
	require.NotNil(t, got.SubscriptionExpiry)
}

func TestSubscriptionUpgradeCancelsPrior(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "switcher@example.com")

	first, err := s.Subscriptions().Upgrade(u.UserID, types.PlanMonthly)
	require.NoError(t, err)
	second, err := s.Subscriptions().Upgrade(u.UserID, types.PlanYearly)
	require.NoError(t, err)

	active, err := s.Subscriptions().ActiveForUser(u.UserID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.SubscriptionID, active.SubscriptionID)

	history, err := s.Subscriptions().History(u.UserID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	var cancelled int
	for _, h := range history {
		if h.Status == types.SubscriptionCancelled {
			cancelled++
			assert.Equal(t, first.SubscriptionID, h.SubscriptionID)
		}
	}
	assert.Equal(t, 1, cancelled, "exactly one prior row cancelled")
}

func TestSubscriptionUpgradeValidation(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "u@example.com")

	_, err := s.Subscriptions().Upgrade(u.UserID, "lifetime")
	assert.ErrorIs(t, err, types.ErrInvalidPlan)

	_, err = s.Subscriptions().Upgrade("no-such-user", types.PlanMonthly)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSubscriptionActiveForUserNone(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "free@example.com")

	sub, err := s.Subscriptions().ActiveForUser(u.UserID)
	require.NoError(t, err)
	assert.Nil(t, sub, "no active row means free plan")
}
