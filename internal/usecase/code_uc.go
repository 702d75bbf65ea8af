package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/domain/ports/repository"
	"activation-service/internal/infra/logging"
	"activation-service/internal/infra/metrics"
)

// Compile-time check
var _ CodeUseCase = (*codeUC)(nil)

// RedemptionResult is the snapshot returned to a successful redeemer:
// the tier and the code's own expiry as they were before consumption.
type RedemptionResult struct {
	Tier      model.Tier
	ExpiresAt *time.Time
}

// CodeUseCase owns the activation code lifecycle: issuance, lookup,
// listing and one-time consumption.
type CodeUseCase interface {
	// Issue creates a new code. An empty value means "generate one for me".
	Issue(ctx context.Context, value, tier string, now time.Time) (*model.ActivationCode, error)
	Lookup(ctx context.Context, value string) (*model.ActivationCode, error)
	LookupByID(ctx context.Context, id string) (*model.ActivationCode, error)
	List(ctx context.Context) ([]*model.ActivationCode, error)
	// Redeem consumes a code standalone, in its own transaction.
	Redeem(ctx context.Context, value string, now time.Time) (*RedemptionResult, error)
	// TryConsume consumes a code within the caller's transaction and returns
	// the pre-consumption snapshot. Errors: domain.ErrCodeNotFound,
	// domain.ErrCodeAlreadyUsed, domain.ErrCodeExpired.
	TryConsume(ctx context.Context, tx repository.Tx, value string, now time.Time) (*model.ActivationCode, error)
}

type codeUC struct {
	codes repository.ActivationCodeRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewCodeUseCase(codes repository.ActivationCodeRepository, tm repository.TransactionManager, logger *zerolog.Logger) *codeUC {
	return &codeUC{codes: codes, tm: tm, log: logger}
}

func (u *codeUC) Issue(ctx context.Context, value, tier string, now time.Time) (*model.ActivationCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Issue")()

	t, err := model.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	if value == "" {
		value, err = generateCodeValue()
		if err != nil {
			return nil, err
		}
	}
	code, err := model.NewActivationCode(value, t, now)
	if err != nil {
		return nil, err
	}
	// Insert is atomic with respect to concurrent issuance of the same value.
	if err := u.codes.Insert(ctx, repository.NoTX, code); err != nil {
		return nil, err
	}
	metrics.IncCodeIssued(string(t))
	u.log.Info().Str("code_id", code.ID).Str("tier", string(t)).Msg("activation code issued")
	return code, nil
}

func (u *codeUC) Lookup(ctx context.Context, value string) (*model.ActivationCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Lookup")()
	return u.codes.FindByValue(ctx, repository.NoTX, value)
}

func (u *codeUC) LookupByID(ctx context.Context, id string) (*model.ActivationCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.LookupByID")()
	return u.codes.FindByID(ctx, repository.NoTX, id)
}

func (u *codeUC) List(ctx context.Context) ([]*model.ActivationCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.List")()
	return u.codes.List(ctx, repository.NoTX)
}

// TryConsume evaluates, against the row as seen inside the caller's
// transaction: not-found, already-used, expired, in that order. The final
// flip is a conditional UPDATE on consumed=FALSE, so of N concurrent
// consumers of the same value exactly one wins; every loser surfaces as
// ErrCodeAlreadyUsed.
func (u *codeUC) TryConsume(ctx context.Context, tx repository.Tx, value string, now time.Time) (*model.ActivationCode, error) {
	code, err := u.codes.FindByValue(ctx, tx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	if code.Consumed {
		return nil, domain.ErrCodeAlreadyUsed
	}
	if code.Expired(now) {
		return nil, domain.ErrCodeExpired
	}
	won, err := u.codes.Consume(ctx, tx, value)
	if err != nil {
		return nil, err
	}
	if !won {
		// Another transaction consumed the code between our read and write.
		return nil, domain.ErrCodeAlreadyUsed
	}
	return code, nil
}

func (u *codeUC) Redeem(ctx context.Context, value string, now time.Time) (*RedemptionResult, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Redeem")()

	var result *RedemptionResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		code, err := u.TryConsume(ctx, tx, value, now)
		if err != nil {
			return err
		}
		result = &RedemptionResult{Tier: code.Tier, ExpiresAt: code.ExpiresAt}
		return nil
	})
	metrics.IncRedemption(redemptionOutcome(err))
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("tier", string(result.Tier)).Msg("activation code redeemed")
	return result, nil
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	default:
		return "error"
	}
}
