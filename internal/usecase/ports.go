package usecase

import (
	"context"
	"time"

	"catalog/internal/domain/model"
)

// 商品一覧のキャッシュ。未接続なら常にミス扱いでよい
type ProductListCache interface {
	GetProductList(ctx context.Context, key string, dest interface{}) (bool, error)
	SetProductList(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateProductLists(ctx context.Context) error
}

type Mailer interface {
	Send(ctx context.Context, to []string, subject string, body string) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash string, plain string) bool
}

// JWTのclaims
type TokenClaims struct {
	UserID       int64
	IsStaff      bool
	TokenVersion int
	Kind         string // access / refresh
	ExpiresAt    time.Time
}

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type TokenIssuer interface {
	Issue(user model.User, kind string, now time.Time) (string, time.Time, error)
	Parse(raw string) (TokenClaims, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// 呼び出し元（認証済みユーザー）
type Caller struct {
	UserID  int64
	IsStaff bool
}
