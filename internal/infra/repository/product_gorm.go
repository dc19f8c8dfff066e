package repository

import (
	"context"
	"strings"

	"catalog/internal/domain/model"
	repo "catalog/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 名前/価格の絞り込みとページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if s := strings.TrimSpace(q.NameExact); s != "" {
		tx = tx.Where("LOWER(name) = ?", strings.ToLower(s))
	}
	if s := strings.TrimSpace(q.NameContains); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	//価格
	if q.Price != nil {
		tx = tx.Where("price = ?", *q.Price)
	}
	if q.PriceLT != nil {
		tx = tx.Where("price < ?", *q.PriceLT)
	}
	if q.PriceGT != nil {
		tx = tx.Where("price > ?", *q.PriceGT)
	}
	if q.PriceMin != nil && q.PriceMax != nil {
		tx = tx.Where("price BETWEEN ? AND ?", *q.PriceMin, *q.PriceMax)
	}

	if q.InStock {
		tx = tx.Where("stock > 0")
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, translateError(err)
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id asc").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, translateError(err)
	}

	return products, total, nil
}

func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, translateError(err)
	}
	return products, nil
}

// 商品がなければValid=false
func (r *ProductGormRepository) MaxPrice(ctx context.Context) (decimal.NullDecimal, error) {
	var max decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&model.Product{}).Select("MAX(price)").Row()
	if err := row.Scan(&max); err != nil {
		return decimal.NullDecimal{}, translateError(err)
	}
	return max, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	return r.findByIDs(r.db.WithContext(ctx), ids)
}

func (r *ProductGormRepository) FindByIDsWithDeleted(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	return r.findByIDs(r.db.WithContext(ctx).Unscoped(), ids)
}

func (r *ProductGormRepository) findByIDs(tx *gorm.DB, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []model.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translateError(err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"stock":       p.Stock,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（論理削除）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
