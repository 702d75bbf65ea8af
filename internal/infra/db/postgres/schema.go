package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Timestamps are timestamptz end-to-end; there is deliberately no string
// parsing of time values anywhere at this boundary.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS activation_codes (
  id          UUID PRIMARY KEY,
  value       TEXT NOT NULL UNIQUE,
  tier        TEXT NOT NULL,
  consumed    BOOLEAN NOT NULL DEFAULT FALSE,
  created_at  TIMESTAMPTZ NOT NULL,
  expires_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS users (
  id              UUID PRIMARY KEY,
  username        TEXT NOT NULL UNIQUE,
  password_digest BYTEA NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL,
  last_login_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS activations (
  id           UUID PRIMARY KEY,
  user_id      UUID NOT NULL REFERENCES users(id),
  code_id      UUID NOT NULL REFERENCES activation_codes(id),
  activated_at TIMESTAMPTZ NOT NULL,
  expires_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_activations_user_activated
  ON activations (user_id, activated_at DESC);
`

// EnsureSchema creates the tables on startup if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
