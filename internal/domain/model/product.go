package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 削除は論理削除。過去の注文明細から参照され続ける
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"-"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// priceだけ小数2桁に揃えて出す
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price Money `json:"price"`
	}{plain: plain(p), Price: NewMoney(p.Price)})
}
