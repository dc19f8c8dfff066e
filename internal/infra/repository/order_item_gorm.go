package repository

import (
	"context"

	"catalog/internal/domain/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) ([]model.OrderItem, error) {
	if len(items) == 0 {
		return []model.OrderItem{}, nil
	}

	created := make([]model.OrderItem, len(items))
	copy(created, items)
	for i := range created {
		created[i].OrderID = orderID
	}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, translateError(err)
	}
	return items, nil
}

// 一覧表示でN+1にならないようにまとめて取る
func (r *OrderItemGormRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	out := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}

func (r *OrderItemGormRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{})
	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}
