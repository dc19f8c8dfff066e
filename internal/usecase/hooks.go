package usecase

import (
	"context"

	"catalog/internal/domain/model"
	"catalog/internal/logger"
)

// コミット成功後にだけ呼ぶコールバック。
// 失敗してもコミット済みの書き込みは戻さない（ログに残すだけ）
type Hooks struct {
	ProductChanged []func(ctx context.Context, productID int64) error
	UserCreated    []func(ctx context.Context, user model.User) error
}

func (h *Hooks) OnProductChanged(fn func(ctx context.Context, productID int64) error) {
	h.ProductChanged = append(h.ProductChanged, fn)
}

func (h *Hooks) OnUserCreated(fn func(ctx context.Context, user model.User) error) {
	h.UserCreated = append(h.UserCreated, fn)
}

func (h *Hooks) productChanged(ctx context.Context, log *logger.Logger, productID int64) {
	if h == nil {
		return
	}
	for _, fn := range h.ProductChanged {
		if err := fn(ctx, productID); err != nil {
			log.Warn("product hook failed", "product_id", productID, "error", err)
		}
	}
}

func (h *Hooks) userCreated(ctx context.Context, log *logger.Logger, user model.User) {
	if h == nil {
		return
	}
	for _, fn := range h.UserCreated {
		if err := fn(ctx, user); err != nil {
			log.Warn("user hook failed", "user_id", user.ID, "error", err)
		}
	}
}

// 商品の作成・更新・削除で一覧キャッシュを捨てる
func InvalidateProductListHook(cache ProductListCache) func(ctx context.Context, productID int64) error {
	return func(ctx context.Context, productID int64) error {
		return cache.InvalidateProductLists(ctx)
	}
}

// 登録時のウェルカムメール
func WelcomeMailHook(mailer Mailer) func(ctx context.Context, user model.User) error {
	return func(ctx context.Context, user model.User) error {
		return mailer.Send(ctx, []string{user.Email}, "Welcome!", "Thanks for signing up!")
	}
}
