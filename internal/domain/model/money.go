package model

import "github.com/shopspring/decimal"

// 金額。JSONでは常に小数2桁の文字列（"10.00"）で出す
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
