package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/domain/ports/repository"
)

var _ repository.ActivationRepository = (*activationRepo)(nil)

type activationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) repository.ActivationRepository {
	return &activationRepo{pool: pool}
}

func (r *activationRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	const q = `
INSERT INTO activations (id, user_id, code_id, activated_at, expires_at)
VALUES ($1, $2, $3, $4, $5);
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, a.ID, a.UserID, a.CodeID, a.ActivatedAt, a.ExpiresAt)
	return err
}

func (r *activationRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Activation, error) {
	const q = `
SELECT id, user_id, code_id, activated_at, expires_at
  FROM activations
 WHERE user_id = $1
 ORDER BY activated_at DESC
 LIMIT 1;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.Activation
	err = ex.QueryRow(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.CodeID, &a.ActivatedAt, &a.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
