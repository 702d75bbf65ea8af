package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"activation-service/internal/domain"
)

// Tier determines the entitlement window granted by an activation code.
type Tier string

const (
	TierForever Tier = "forever"
	TierMonth   Tier = "month"
	TierWeek    Tier = "week"
	TierDay     Tier = "day"
)

// Tiers lists all recognized tiers in descending duration order.
var Tiers = []Tier{TierForever, TierMonth, TierWeek, TierDay}

// ParseTier validates a raw tier string coming from the API boundary.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierForever, TierMonth, TierWeek, TierDay:
		return Tier(s), nil
	}
	return "", domain.ErrInvalidTier
}

// ExpiryFor computes the expiry timestamp for a tier relative to now.
// Forever codes never expire and return nil.
//
// An unrecognized tier falls back to the Month window. This mirrors the
// historical behavior of stored data; new codes never reach this branch
// because ParseTier rejects unknown tiers at the boundary.
func ExpiryFor(tier Tier, now time.Time) *time.Time {
	var d time.Duration
	switch tier {
	case TierForever:
		return nil
	case TierMonth:
		d = 30 * 24 * time.Hour
	case TierWeek:
		d = 7 * 24 * time.Hour
	case TierDay:
		d = 24 * time.Hour
	default:
		d = 30 * 24 * time.Hour
	}
	t := now.Add(d)
	return &t
}

// MinCodeLength is the shortest acceptable code value, counted in runes.
const MinCodeLength = 5

// ActivationCode is a single-use code redeemable for an entitlement window.
// Consumed is monotonic: it flips false->true exactly once and is never reset.
type ActivationCode struct {
	ID        string
	Value     string
	Tier      Tier
	Consumed  bool
	CreatedAt time.Time
	ExpiresAt *time.Time // nil only for TierForever
}

// NewActivationCode builds an unconsumed code with its expiry derived from
// the tier at issue time.
func NewActivationCode(value string, tier Tier, now time.Time) (*ActivationCode, error) {
	if utf8.RuneCountInString(value) < MinCodeLength {
		return nil, domain.ErrCodeTooShort
	}
	if _, err := ParseTier(string(tier)); err != nil {
		return nil, err
	}
	return &ActivationCode{
		ID:        uuid.NewString(),
		Value:     value,
		Tier:      tier,
		Consumed:  false,
		CreatedAt: now,
		ExpiresAt: ExpiryFor(tier, now),
	}, nil
}

// Expired reports whether the code's own validity window has passed.
func (c *ActivationCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
