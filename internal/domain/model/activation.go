package model

import (
	"time"

	"github.com/google/uuid"
)

// Activation records which code entitled which user. ExpiresAt is computed
// once, at redemption time, from the code's tier; it is not recomputed on
// later logins, so the entitlement clock starts at the moment of redemption.
type Activation struct {
	ID          string
	UserID      string
	CodeID      string
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil for forever entitlements
}

func NewActivation(userID, codeID string, tier Tier, now time.Time) *Activation {
	return &Activation{
		ID:          uuid.NewString(),
		UserID:      userID,
		CodeID:      codeID,
		ActivatedAt: now,
		ExpiresAt:   ExpiryFor(tier, now),
	}
}

// Active reports whether the entitlement window still covers now.
func (a *Activation) Active(now time.Time) bool {
	return a.ExpiresAt == nil || !now.After(*a.ExpiresAt)
}
