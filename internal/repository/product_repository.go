package repository

import (
	"context"
	"errors"

	"catalog/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")

	// 外部キー・一意制約などDB側の制約違反
	ErrConstraint = errors.New("constraint violation")
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int

	NameExact    string // name（大文字小文字を無視した完全一致）
	NameContains string // name__icontains

	Price    *decimal.Decimal // price（完全一致）
	PriceLT  *decimal.Decimal
	PriceGT  *decimal.Decimal
	PriceMin *decimal.Decimal // price__range
	PriceMax *decimal.Decimal

	InStock bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	MaxPrice(ctx context.Context) (decimal.NullDecimal, error)

	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 削除済みは含まない。見つからないIDはmapに入らない
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	// 注文明細の表示用。論理削除済みも含める
	FindByIDsWithDeleted(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
