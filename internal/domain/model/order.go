package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// 許可された遷移（ORDER_STRICT_TRANSITIONS=true のときだけ使う）
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo は遷移表に next があるかを返す。同じステータスは常に true。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type Order struct {
	OrderID   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"order_id"`
	UserID    int64       `gorm:"not null;index" json:"user"`
	Status    OrderStatus `gorm:"type:varchar(10);not null;default:'Pending';index" json:"status"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"-"`
}
