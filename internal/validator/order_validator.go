package validator

import (
	"fmt"

	"catalog/internal/domain/model"
)

// 注文明細の入力（商品と数量）
type OrderItemInput struct {
	ProductID int64 `json:"product"`
	Quantity  int64 `json:"quantity"`
}

// 全件を先に検証する。1件でもダメなら何も書かない
func ValidateOrderItems(items []OrderItemInput) error {
	for i, it := range items {
		if it.ProductID <= 0 {
			return newError(fmt.Sprintf("items[%d].product", i), "Invalid product id")
		}
		if it.Quantity <= 0 {
			return newError(fmt.Sprintf("items[%d].quantity", i), "Quantity must be greater than 0")
		}
	}
	return nil
}

func ValidateOrderStatus(s model.OrderStatus) error {
	if !s.Valid() {
		return newError("status", fmt.Sprintf("%q is not a valid choice", string(s)))
	}
	return nil
}

// strictのときだけ遷移表を見る
func ValidateOrderTransition(from, to model.OrderStatus, strict bool) error {
	if err := ValidateOrderStatus(to); err != nil {
		return err
	}
	if strict && !from.CanTransitionTo(to) {
		return newError("status", fmt.Sprintf("cannot change status from %s to %s", from, to))
	}
	return nil
}
