package validator

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxNameLen = 255

// 商品の作成・更新の入力を検証
func ValidateProduct(name string, price decimal.Decimal, stock int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return newError("name", "This field is required")
	}
	if len(name) > maxNameLen {
		return newError("name", "Ensure this field has no more than 255 characters")
	}
	if err := ValidatePrice(price); err != nil {
		return err
	}
	if stock < 0 {
		return newError("stock", "Stock must be greater than or equal to 0")
	}
	return nil
}

func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return newError("price", "Price must be greater than 0")
	}
	// numeric(10,2) に収まるか
	if !price.Equal(price.Round(2)) {
		return newError("price", "Ensure that there are no more than 2 decimal places")
	}
	if price.GreaterThanOrEqual(decimal.New(1, 8)) {
		return newError("price", "Ensure that there are no more than 10 digits in total")
	}
	return nil
}
