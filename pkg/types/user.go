package types

import "time"

// Subscription plans. Free has no expiry; monthly and yearly expire one
// month and one year after their start respectively.
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// validPlans is the set of recognized plan values.
var validPlans = map[string]bool{
	PlanFree:    true,
	PlanMonthly: true,
	PlanYearly:  true,
}

// ValidPlan reports whether the plan name is recognized.
func ValidPlan(plan string) bool {
	return validPlans[plan]
}

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// User is an application account. PasswordHash is a bcrypt hash; the plain
// password never touches the store.
type User struct {
	UserID             string     // UUID v7, generated on registration.
	Email              string     // Unique.
	PasswordHash       string     // bcrypt hash.
	FullName           string     // Display name.
	SubscriptionType   string     // Mirror of the active subscription's plan.
	SubscriptionExpiry *time.Time // Mirror of the active subscription's end date; nil for free.
	CreatedAt          time.Time  // Timestamp of registration.
	LastLogin          *time.Time // Updated on every successful login.
	IsActive           bool       // Inactive accounts cannot log in.
}

// Subscription is one row of a user's subscription history. At most one
// row per user is active at a time; UpgradeSubscription cancels the old
// row and inserts the new one in a single transaction.
type Subscription struct {
	SubscriptionID string     // UUID v7, generated on upgrade.
	UserID         string     // Owning user.
	PlanType       string     // One of the Plan constants.
	StartDate      time.Time  // When the plan took effect.
	EndDate        *time.Time // When the plan lapses; nil for free.
	Status         string     // One of the Subscription status constants.
}

// Expired reports whether the subscription's end date has passed.
func (s *Subscription) Expired(now time.Time) bool {
	return s.EndDate != nil && s.EndDate.Before(now)
}
