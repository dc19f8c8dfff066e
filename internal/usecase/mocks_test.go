package usecase_test

import (
	"context"
	"time"

	"catalog/internal/domain/model"
	repo "catalog/internal/repository"
	"catalog/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) MaxPrice(ctx context.Context) (decimal.NullDecimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.NullDecimal), args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProductRepoMock) FindByIDsWithDeleted(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, entry model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// Txは張らずにそのままfnを呼ぶ
type TxManagerMock struct {
	Repos *TxReposStub
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxReposStub struct {
	ProductRepo repo.ProductRepository
	AuditRepo   repo.AuditLogRepository
	UserRepo    repo.UserRepository
}

func (s *TxReposStub) Orders() repo.OrderRepository         { panic("not used") }
func (s *TxReposStub) OrderItems() repo.OrderItemRepository { panic("not used") }
func (s *TxReposStub) Products() repo.ProductRepository     { return s.ProductRepo }
func (s *TxReposStub) Users() repo.UserRepository           { return s.UserRepo }
func (s *TxReposStub) AuditLogs() repo.AuditLogRepository   { return s.AuditRepo }

type ProductCacheMock struct{ mock.Mock }

func (m *ProductCacheMock) GetProductList(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	if fill, ok := args.Get(0).(func(dest interface{})); ok {
		fill(dest)
		return true, args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *ProductCacheMock) SetProductList(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *ProductCacheMock) InvalidateProductLists(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MailerMock struct{ mock.Mock }

func (m *MailerMock) Send(ctx context.Context, to []string, subject string, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type HasherStub struct{}

func (HasherStub) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (HasherStub) Verify(hash string, plain string) bool {
	return hash == "hashed:"+plain
}

type TokenIssuerMock struct{ mock.Mock }

func (m *TokenIssuerMock) Issue(user model.User, kind string, now time.Time) (string, time.Time, error) {
	args := m.Called(user, kind, now)
	return args.String(0), now.Add(15 * time.Minute), args.Error(1)
}

func (m *TokenIssuerMock) Parse(raw string) (usecase.TokenClaims, error) {
	args := m.Called(raw)
	c, _ := args.Get(0).(usecase.TokenClaims)
	return c, args.Error(1)
}

var (
	_ repo.ProductRepository   = (*ProductRepoMock)(nil)
	_ repo.AuditLogRepository  = (*AuditRepoMock)(nil)
	_ repo.UserRepository      = (*UserRepoMock)(nil)
	_ repo.TransactionManager  = (*TxManagerMock)(nil)
	_ usecase.ProductListCache = (*ProductCacheMock)(nil)
	_ usecase.Mailer           = (*MailerMock)(nil)
	_ usecase.PasswordHasher   = HasherStub{}
	_ usecase.TokenIssuer      = (*TokenIssuerMock)(nil)
)
