package model

import (
	"time"

	"github.com/google/uuid"

	"activation-service/internal/domain"
)

// User is an account created by redeeming an activation code.
// PasswordDigest holds salt||derived-key bytes produced by the hasher;
// the plaintext secret is never stored.
type User struct {
	ID             string
	Username       string
	PasswordDigest []byte
	CreatedAt      time.Time
	LastLoginAt    *time.Time
}

func NewUser(username string, digest []byte, now time.Time) (*User, error) {
	if username == "" || len(digest) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordDigest: digest,
		CreatedAt:      now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
