package repository

import (
	"context"

	"activation-service/internal/domain/model"
)

// ActivationCodeRepository is the port for the code ledger's storage.
type ActivationCodeRepository interface {
	// Insert creates a new code. Returns domain.ErrCodeAlreadyExists when the
	// value collides with an existing row; check-and-insert is atomic.
	Insert(ctx context.Context, tx Tx, code *model.ActivationCode) error
	// FindByValue fetches a code by exact value, consumed or not.
	// Returns domain.ErrNotFound when no row matches.
	FindByValue(ctx context.Context, tx Tx, value string) (*model.ActivationCode, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.ActivationCode, error)
	// Consume atomically flips consumed false->true for the given value.
	// Returns true when this call won the flip, false when the row was
	// already consumed (or raced and lost).
	Consume(ctx context.Context, tx Tx, value string) (bool, error)
	// List returns all codes, newest first.
	List(ctx context.Context, tx Tx) ([]*model.ActivationCode, error)
}
