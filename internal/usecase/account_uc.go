package usecase

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/domain/ports/repository"
	"activation-service/internal/infra/logging"
	"activation-service/internal/infra/metrics"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

const (
	minUsernameRunes = 3
	minPasswordRunes = 6
)

// PasswordHasher derives and verifies salted credential digests.
type PasswordHasher interface {
	Derive(secret []byte) ([]byte, error)
	Verify(digest, candidate []byte) bool
}

// RegistrationResult is returned by a successful registration.
type RegistrationResult struct {
	UserID    string
	Tier      model.Tier
	ExpiresAt *time.Time
}

// LoginResult describes a verified user's entitlement at login time.
type LoginResult struct {
	UserID    string
	IsActive  bool
	Tier      model.Tier
	ExpiresAt *time.Time
}

// AccountUseCase orchestrates registration (code redemption + user creation
// as one atomic unit) and login (credential verification + entitlement read).
type AccountUseCase interface {
	Register(ctx context.Context, username, password, codeValue string, now time.Time) (*RegistrationResult, error)
	Login(ctx context.Context, username, password string, now time.Time) (*LoginResult, error)
	CheckUsernameExists(ctx context.Context, username string) (bool, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type accountUC struct {
	users  repository.UserRepository
	acts   repository.ActivationRepository
	codes  CodeUseCase
	hasher PasswordHasher
	tm     repository.TransactionManager
	log    *zerolog.Logger
}

func NewAccountUseCase(
	users repository.UserRepository,
	acts repository.ActivationRepository,
	codes CodeUseCase,
	hasher PasswordHasher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accountUC {
	return &accountUC{users: users, acts: acts, codes: codes, hasher: hasher, tm: tm, log: logger}
}

// Register validates input shape, then runs redemption and account creation
// as a single transaction. Any failure rolls the whole unit back, including
// the code's consumed flag: a failed registration never burns the code.
func (u *accountUC) Register(ctx context.Context, username, password, codeValue string, now time.Time) (*RegistrationResult, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Register")()

	// Rune counts, not bytes: multi-byte usernames must not be miscounted.
	if utf8.RuneCountInString(username) < minUsernameRunes {
		metrics.IncRegistration("validation")
		return nil, domain.ErrUsernameTooShort
	}
	if utf8.RuneCountInString(password) < minPasswordRunes {
		metrics.IncRegistration("validation")
		return nil, domain.ErrPasswordTooShort
	}

	var result *RegistrationResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		code, err := u.codes.TryConsume(ctx, tx, codeValue, now)
		if err != nil {
			return err
		}

		taken, err := u.users.ExistsByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrUsernameTaken
		}

		digest, err := u.hasher.Derive([]byte(password))
		if err != nil {
			return err
		}
		user, err := model.NewUser(username, digest, now)
		if err != nil {
			return err
		}
		if err := u.users.Insert(ctx, tx, user); err != nil {
			// A concurrent registration may have claimed the username after
			// our existence check; the unique constraint is authoritative.
			return err
		}

		activation := model.NewActivation(user.ID, code.ID, code.Tier, now)
		if err := u.acts.Insert(ctx, tx, activation); err != nil {
			return err
		}

		result = &RegistrationResult{UserID: user.ID, Tier: code.Tier, ExpiresAt: activation.ExpiresAt}
		return nil
	})
	metrics.IncRegistration(registrationOutcome(err))
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", result.UserID).Str("tier", string(result.Tier)).Msg("user registered")
	return result, nil
}

// Login verifies credentials and reads the user's newest entitlement.
// "No such user" and "wrong password" collapse into the same error to keep
// usernames unenumerable.
func (u *accountUC) Login(ctx context.Context, username, password string, now time.Time) (*LoginResult, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Login")()

	user, err := u.users.FindByUsername(ctx, repository.NoTX, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncLogin("invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		metrics.IncLogin("error")
		return nil, err
	}
	if !u.hasher.Verify(user.PasswordDigest, []byte(password)) {
		metrics.IncLogin("invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	// Best effort: a failed timestamp write must not fail the login.
	if err := u.users.TouchLastLogin(ctx, repository.NoTX, user.ID, now); err != nil {
		u.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	result := &LoginResult{UserID: user.ID, IsActive: true, Tier: model.TierForever}
	activation, err := u.acts.FindLatestByUser(ctx, repository.NoTX, user.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Users without an activation (pre-ledger accounts) stay active forever.
	case err != nil:
		metrics.IncLogin("error")
		return nil, err
	default:
		// The expiry snapshot on the activation row is authoritative; the
		// code row is only consulted to name the tier.
		code, err := u.codes.LookupByID(ctx, activation.CodeID)
		if err != nil {
			metrics.IncLogin("error")
			return nil, err
		}
		result.Tier = code.Tier
		result.ExpiresAt = activation.ExpiresAt
		result.IsActive = activation.Active(now)
	}
	metrics.IncLogin("success")
	return result, nil
}

func (u *accountUC) CheckUsernameExists(ctx context.Context, username string) (bool, error) {
	defer logging.TraceDuration(u.log, "AccountUC.CheckUsernameExists")()
	return u.users.ExistsByUsername(ctx, repository.NoTX, username)
}

func (u *accountUC) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	defer logging.TraceDuration(u.log, "AccountUC.ListUsers")()
	return u.users.List(ctx, repository.NoTX, offset, limit)
}

func (u *accountUC) CountUsers(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "AccountUC.CountUsers")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrCodeNotFound),
		errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrCodeExpired):
		return "invalid_code"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	default:
		return "error"
	}
}
