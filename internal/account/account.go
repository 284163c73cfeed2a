// Package account manages subscription plans and user subscriptions.
// Plans are records only; payment processing happens elsewhere.
package account

import (
	"errors"
	"time"
)

var (
	// ErrNoActiveSubscription is returned when a user has nothing to cancel.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrAlreadySubscribed is returned when subscribing over an active plan.
	ErrAlreadySubscribed = errors.New("subscription already active")
	// ErrUnknownPlan is returned for a plan ID not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan")
)

// Plan is a purchasable subscription tier.
type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceCents   int    `json:"price_cents"`
	DurationDays int    `json:"duration_days"`
}

// Subscription ties a user to a plan for a period.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Cancelled bool      `json:"cancelled"`
}

// Active reports whether the subscription grants access at time now.
func (s Subscription) Active(now time.Time) bool {
	return !s.Cancelled && now.Before(s.ExpiresAt)
}

// Store persists plans and subscriptions.
type Store interface {
	Plans() ([]Plan, error)
	GetPlan(id string) (Plan, error)
	Subscribe(userID, planID string) (Subscription, error)
	Cancel(userID string) error
	ActiveSubscription(userID string) (Subscription, bool, error)
}

// DefaultPlans are seeded when the store has no plans yet.
var DefaultPlans = []Plan{
	{ID: "free", Name: "Free", PriceCents: 0, DurationDays: 36500},
	{ID: "monthly", Name: "Monthly", PriceCents: 49900, DurationDays: 30},
	{ID: "yearly", Name: "Yearly", PriceCents: 399900, DurationDays: 365},
}
