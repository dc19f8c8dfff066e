package repository

import (
	"context"

	"catalog/internal/domain/model"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) ([]model.OrderItem, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error)

	// 削除した件数を返す
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
}
