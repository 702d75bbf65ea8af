//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock ActivationCodeRepository ----

// MockActivationCodeRepo keeps codes in memory, keyed by value. Individual
// methods can be overridden per test via the *Func fields.
type MockActivationCodeRepo struct {
	mu      sync.Mutex
	byValue map[string]*model.ActivationCode
	saved   map[string]*model.ActivationCode

	InsertFunc      func(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error
	FindByValueFunc func(ctx context.Context, tx repository.Tx, value string) (*model.ActivationCode, error)
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error)
	ConsumeFunc     func(ctx context.Context, tx repository.Tx, value string) (bool, error)
	ListFunc        func(ctx context.Context, tx repository.Tx) ([]*model.ActivationCode, error)
}

var _ repository.ActivationCodeRepository = (*MockActivationCodeRepo)(nil)

func NewMockActivationCodeRepo() *MockActivationCodeRepo {
	return &MockActivationCodeRepo{byValue: make(map[string]*model.ActivationCode)}
}

func (m *MockActivationCodeRepo) Insert(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byValue[code.Value]; ok {
		return domain.ErrCodeAlreadyExists
	}
	cp := *code
	m.byValue[code.Value] = &cp
	return nil
}

func (m *MockActivationCodeRepo) FindByValue(ctx context.Context, tx repository.Tx, value string) (*model.ActivationCode, error) {
	if m.FindByValueFunc != nil {
		return m.FindByValueFunc(ctx, tx, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byValue[value]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockActivationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationCode, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byValue {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockActivationCodeRepo) Consume(ctx context.Context, tx repository.Tx, value string) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, tx, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byValue[value]
	if !ok || c.Consumed {
		return false, nil
	}
	c.Consumed = true
	return true, nil
}

func (m *MockActivationCodeRepo) snapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = make(map[string]*model.ActivationCode, len(m.byValue))
	for k, v := range m.byValue {
		cp := *v
		m.saved[k] = &cp
	}
}

func (m *MockActivationCodeRepo) restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byValue = m.saved
}

func (m *MockActivationCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.ActivationCode, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ActivationCode, 0, len(m.byValue))
	for _, c := range m.byValue {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu         sync.Mutex
	byUsername map[string]*model.User
	saved      map[string]*model.User

	InsertFunc           func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByUsernameFunc   func(ctx context.Context, tx repository.Tx, username string) (*model.User, error)
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	ExistsByUsernameFunc func(ctx context.Context, tx repository.Tx, username string) (bool, error)
	TouchLastLoginFunc   func(ctx context.Context, tx repository.Tx, id string, at time.Time) error
	ListFunc             func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error)
	CountUsersFunc       func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byUsername: make(map[string]*model.User)}
}

func (m *MockUserRepo) Insert(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[u.Username]; ok {
		return domain.ErrUsernameTaken
	}
	cp := *u
	m.byUsername[u.Username] = &cp
	return nil
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUsername {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) ExistsByUsername(ctx context.Context, tx repository.Tx, username string) (bool, error) {
	if m.ExistsByUsernameFunc != nil {
		return m.ExistsByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *MockUserRepo) TouchLastLogin(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byUsername {
		if u.ID == id {
			t := at
			u.LastLoginAt = &t
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx, offset, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.byUsername))
	for _, u := range m.byUsername {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserRepo) snapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = make(map[string]*model.User, len(m.byUsername))
	for k, v := range m.byUsername {
		cp := *v
		m.saved[k] = &cp
	}
}

func (m *MockUserRepo) restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUsername = m.saved
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUsername), nil
}

// ---- Mock ActivationRepository ----

type MockActivationRepo struct {
	mu    sync.Mutex
	rows  []*model.Activation
	saved []*model.Activation

	InsertFunc           func(ctx context.Context, tx repository.Tx, a *model.Activation) error
	FindLatestByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Activation, error)
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func NewMockActivationRepo() *MockActivationRepo {
	return &MockActivationRepo{}
}

func (m *MockActivationRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *MockActivationRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Activation, error) {
	if m.FindLatestByUserFunc != nil {
		return m.FindLatestByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Activation
	for _, a := range m.rows {
		if a.UserID != userID {
			continue
		}
		if latest == nil || a.ActivatedAt.After(latest.ActivatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockActivationRepo) snapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = make([]*model.Activation, len(m.rows))
	for i, a := range m.rows {
		cp := *a
		m.saved[i] = &cp
	}
}

func (m *MockActivationRepo) restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = m.saved
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx provides a way to control transaction behavior during tests.
// By default, it runs the function immediately without a real transaction.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// snapshotter is implemented by the mock repos above.
type snapshotter interface {
	snapshot()
	restore()
}

// NewSnapshotTxManager builds a MockTxManager with rollback semantics: the
// repos' state is saved before the closure runs and restored when it errors,
// so tests can observe what a failed transaction leaves behind.
func NewSnapshotTxManager(repos ...snapshotter) *MockTxManager {
	return &MockTxManager{
		WithTxFunc: func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
			for _, r := range repos {
				r.snapshot()
			}
			if err := fn(ctx, repository.NoTX); err != nil {
				for _, r := range repos {
					r.restore()
				}
				return err
			}
			return nil
		},
	}
}

// ---- Mock PasswordHasher ----

// MockHasher records inputs and uses a trivially reversible scheme so tests
// can assert on digests without paying the real KDF cost.
type MockHasher struct {
	DeriveFunc func(secret []byte) ([]byte, error)
	VerifyFunc func(digest, candidate []byte) bool
}

func (m *MockHasher) Derive(secret []byte) ([]byte, error) {
	if m.DeriveFunc != nil {
		return m.DeriveFunc(secret)
	}
	return append([]byte("digest:"), secret...), nil
}

func (m *MockHasher) Verify(digest, candidate []byte) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(digest, candidate)
	}
	return string(digest) == "digest:"+string(candidate)
}
