package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is the paid tier an access key unlocks.
type Plan string

const (
	PlanTrial   Plan = "trial"
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// Duration returns how long a freshly issued key of this plan stays active.
func (p Plan) Duration() (time.Duration, bool) {
	switch p {
	case PlanTrial:
		return 7 * 24 * time.Hour, true
	case PlanMonthly:
		return 30 * 24 * time.Hour, true
	case PlanYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// AccessKey is an anonymous, opaque key unlocking paid features. No account
// is attached: whoever holds the string holds the plan.
type AccessKey struct {
	ID        uuid.UUID `db:"id"`
	KeyString string    `db:"key_string"`
	PlanType  Plan      `db:"plan_type"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the key is past its lifetime at the given time.
func (k *AccessKey) Expired(now time.Time) bool {
	return now.After(k.ExpiresAt)
}
