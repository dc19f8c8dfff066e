package repository

import (
	"context"
	"time"

	"catalog/internal/domain/model"

	"github.com/google/uuid"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64 // nilなら全ユーザー（スタッフ用）

	CreatedOn     *time.Time // created_at の日付一致
	CreatedBefore *time.Time // created_at__lt
	CreatedAfter  *time.Time // created_at__gt
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error

	// 明細もまとめて削除する
	Delete(ctx context.Context, orderID uuid.UUID) error
}
