package repository

import (
	"context"
	"time"

	"activation-service/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Insert creates a new user. Returns domain.ErrUsernameTaken on a
	// username collision.
	Insert(ctx context.Context, tx Tx, u *model.User) error
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	ExistsByUsername(ctx context.Context, tx Tx, username string) (bool, error)
	// TouchLastLogin records a successful login timestamp.
	TouchLastLogin(ctx context.Context, tx Tx, id string, at time.Time) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
