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

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

// Insert creates a new code. ON CONFLICT DO NOTHING keeps the
// check-and-insert atomic under concurrent issuance of the same value.
func (r *activationCodeRepo) Insert(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	const q = `
INSERT INTO activation_codes (id, value, tier, consumed, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (value) DO NOTHING;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, code.ID, code.Value, string(code.Tier), code.Consumed, code.CreatedAt, code.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeAlreadyExists
	}
	return nil
}

func (r *activationCodeRepo) FindByValue(ctx context.Context, tx repository.Tx, value string) (*model.ActivationCode, error) {
	const q = `
SELECT id, value, tier, consumed, created_at, expires_at
  FROM activation_codes
 WHERE value = $1;
`
	return r.scanOne(ctx, tx, q, value)
}

func (r *activationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	const q = `
SELECT id, value, tier, consumed, created_at, expires_at
  FROM activation_codes
 WHERE id = $1;
`
	return r.scanOne(ctx, tx, q, id)
}

func (r *activationCodeRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.ActivationCode, error) {
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var (
		c    model.ActivationCode
		tier string
	)
	err = ex.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Value, &tier, &c.Consumed, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Tier = model.Tier(tier)
	return &c, nil
}

// Consume is the compare-and-set at the heart of single redemption: the
// WHERE clause only matches an unconsumed row, so of any number of
// concurrent callers exactly one sees RowsAffected()==1.
func (r *activationCodeRepo) Consume(ctx context.Context, tx repository.Tx, value string) (bool, error) {
	const q = `
UPDATE activation_codes
   SET consumed = TRUE
 WHERE value = $1 AND consumed = FALSE;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, q, value)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *activationCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ActivationCode, error) {
	const q = `
SELECT id, value, tier, consumed, created_at, expires_at
  FROM activation_codes
 ORDER BY created_at DESC;
`
	ex, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		var (
			c    model.ActivationCode
			tier string
		)
		if err := rows.Scan(&c.ID, &c.Value, &tier, &c.Consumed, &c.CreatedAt, &c.ExpiresAt); err != nil {
			return nil, err
		}
		c.Tier = model.Tier(tier)
		out = append(out, &c)
	}
	return out, rows.Err()
}
