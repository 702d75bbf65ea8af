package repository

import (
	"context"

	"activation-service/internal/domain/model"
)

// ActivationRepository stores the join rows linking users to the codes that
// entitled them. The registration flow is the sole writer.
type ActivationRepository interface {
	Insert(ctx context.Context, tx Tx, a *model.Activation) error
	// FindLatestByUser returns the most recently activated row for the user,
	// or domain.ErrNotFound when the user has none.
	FindLatestByUser(ctx context.Context, tx Tx, userID string) (*model.Activation, error)
}
