package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog/internal/domain/model"
	"catalog/internal/logger"
	"catalog/internal/metrics"
	repo "catalog/internal/repository"
	"catalog/internal/validator"

	"github.com/shopspring/decimal"
)

// 一覧キャッシュのキーの接頭辞。無効化はこれを含むキーを全部消す
const ProductListCachePrefix = "product_list"

type ProductUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	cache    ProductListCache
	cacheTTL time.Duration
	hooks    *Hooks
	log      *logger.Logger
	metrics  *metrics.Metrics
	clock    Clock
}

type ProductUsecaseDeps struct {
	Tx       repo.TransactionManager
	Products repo.ProductRepository
	Cache    ProductListCache // nilならキャッシュしない
	CacheTTL time.Duration
	Hooks    *Hooks
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Clock    Clock // nilなら現在時刻
}

// DI
func NewProductUsecase(d ProductUsecaseDeps) *ProductUsecase {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	if d.Clock == nil {
		d.Clock = realClock{}
	}
	return &ProductUsecase{
		tx:       d.Tx,
		products: d.Products,
		cache:    d.Cache,
		cacheTTL: d.CacheTTL,
		hooks:    d.Hooks,
		log:      d.Logger,
		metrics:  d.Metrics,
		clock:    d.Clock,
	}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Page  int
	Limit int

	Name         string
	NameContains string

	Price      *decimal.Decimal
	PriceLT    *decimal.Decimal
	PriceGT    *decimal.Decimal
	PriceRange *[2]decimal.Decimal

	InStock bool
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ProductInfoOutput struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
	MaxPrice *model.Money    `json:"max_price"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
}

// PATCH用。nilのフィールドは変更しない
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, &validator.ValidationError{Field: "page", Reason: "Invalid page"}
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, &validator.ValidationError{Field: "limit", Reason: "Invalid limit"}
	}
	if in.PriceRange != nil && in.PriceRange[0].GreaterThan(in.PriceRange[1]) {
		return ProductListOutput{}, &validator.ValidationError{Field: "price__range", Reason: "Range start must be <= end"}
	}

	key := productListCacheKey(in)
	if u.cache != nil {
		var cached ProductListOutput
		hit, err := u.cache.GetProductList(ctx, key, &cached)
		if err != nil {
			u.log.Warn("product cache get failed", "key", key, "error", err)
		}
		if hit {
			u.countCache("hit")
			return cached, nil
		}
		u.countCache("miss")
	}

	q := repo.ProductListQuery{
		Page:         in.Page,
		Limit:        in.Limit,
		NameExact:    strings.TrimSpace(in.Name),
		NameContains: strings.TrimSpace(in.NameContains),
		Price:        in.Price,
		PriceLT:      in.PriceLT,
		PriceGT:      in.PriceGT,
		InStock:      in.InStock,
	}
	if in.PriceRange != nil {
		q.PriceMin = &in.PriceRange[0]
		q.PriceMax = &in.PriceRange[1]
	}

	items, total, err := u.products.List(ctx, q)
	if err != nil {
		return ProductListOutput{}, classify("list products", err)
	}

	out := ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
	if u.cache != nil {
		if err := u.cache.SetProductList(ctx, key, out, u.cacheTTL); err != nil {
			u.log.Warn("product cache set failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, newNotFound("product", productID)
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, newNotFound("product", productID)
	}
	if err != nil {
		return model.Product{}, classify("get product", err)
	}
	return p, nil
}

// 全商品、件数、最高価格
func (u *ProductUsecase) Info(ctx context.Context) (ProductInfoOutput, error) {
	var out ProductInfoOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := r.Products().ListAll(ctx)
		if err != nil {
			return err
		}
		max, err := r.Products().MaxPrice(ctx)
		if err != nil {
			return err
		}

		out = ProductInfoOutput{Products: products, Count: len(products)}
		if max.Valid {
			m := model.NewMoney(max.Decimal)
			out.MaxPrice = &m
		}
		return nil
	})
	if err != nil {
		return ProductInfoOutput{}, classify("product info", err)
	}
	return out, nil
}

func (u *ProductUsecase) Create(ctx context.Context, actorUserID int64, in ProductInput) (model.Product, error) {
	if err := validator.ValidateProduct(in.Name, in.Price, in.Stock); err != nil {
		return model.Product{}, err
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Price:       in.Price,
			Stock:       in.Stock,
		})
		if err != nil {
			return err
		}
		created = p

		return u.writeAudit(ctx, r, actorUserID, model.AuditActionCreateProduct, p.ID, nil, &p)
	})
	if err != nil {
		return model.Product{}, classify("create product", err)
	}

	u.hooks.productChanged(ctx, u.log, created.ID)
	return created, nil
}

// PUT。全フィールドを置き換える
func (u *ProductUsecase) Update(ctx context.Context, actorUserID int64, productID int64, in ProductInput) (model.Product, error) {
	if err := validator.ValidateProduct(in.Name, in.Price, in.Stock); err != nil {
		return model.Product{}, err
	}
	return u.apply(ctx, actorUserID, productID, func(p *model.Product) {
		p.Name = strings.TrimSpace(in.Name)
		p.Description = in.Description
		p.Price = in.Price
		p.Stock = in.Stock
	})
}

// PATCH。指定されたフィールドだけ変える
func (u *ProductUsecase) Patch(ctx context.Context, actorUserID int64, productID int64, in ProductPatch) (model.Product, error) {
	return u.apply(ctx, actorUserID, productID, func(p *model.Product) {
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
	})
}

func (u *ProductUsecase) apply(ctx context.Context, actorUserID int64, productID int64, mutate func(p *model.Product)) (model.Product, error) {
	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return newNotFound("product", productID)
		}
		if err != nil {
			return err
		}

		after := before
		mutate(&after)
		//マージ後の値で検証する
		if err := validator.ValidateProduct(after.Name, after.Price, after.Stock); err != nil {
			return err
		}

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newNotFound("product", productID)
			}
			return err
		}
		updated = after

		return u.writeAudit(ctx, r, actorUserID, model.AuditActionUpdateProduct, productID, &before, &after)
	})
	if err != nil {
		return model.Product{}, classify("update product", err)
	}

	u.hooks.productChanged(ctx, u.log, productID)
	return updated, nil
}

// 論理削除。注文明細はそのまま残る
func (u *ProductUsecase) Delete(ctx context.Context, actorUserID int64, productID int64) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return newNotFound("product", productID)
		}
		if err != nil {
			return err
		}

		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newNotFound("product", productID)
			}
			return err
		}

		return u.writeAudit(ctx, r, actorUserID, model.AuditActionDeleteProduct, productID, &before, nil)
	})
	if err != nil {
		return classify("delete product", err)
	}

	u.hooks.productChanged(ctx, u.log, productID)
	return nil
}

func (u *ProductUsecase) countCache(result string) {
	if u.metrics != nil {
		u.metrics.ProductCache.WithLabelValues(result).Inc()
	}
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func (u *ProductUsecase) writeAudit(ctx context.Context, r repo.TxRepos, actorUserID int64, action model.AuditAction, productID int64, before, after *model.Product) error {
	beforeJSON, err := marshalOrEmpty(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOrEmpty(after)
	if err != nil {
		return err
	}

	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   strconv.FormatInt(productID, 10),
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    u.clock.Now(),
	})
}

func marshalOrEmpty(p *model.Product) (string, error) {
	if p == nil {
		return "", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// 同じ条件なら同じキーになるようにクエリ文字列へ正規化する
func productListCacheKey(in ListProductsInput) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(in.Page))
	v.Set("limit", strconv.Itoa(in.Limit))
	if s := strings.ToLower(strings.TrimSpace(in.Name)); s != "" {
		v.Set("name", s)
	}
	if s := strings.ToLower(strings.TrimSpace(in.NameContains)); s != "" {
		v.Set("name__icontains", s)
	}
	if in.Price != nil {
		v.Set("price", in.Price.String())
	}
	if in.PriceLT != nil {
		v.Set("price__lt", in.PriceLT.String())
	}
	if in.PriceGT != nil {
		v.Set("price__gt", in.PriceGT.String())
	}
	if in.PriceRange != nil {
		v.Set("price__range", in.PriceRange[0].String()+","+in.PriceRange[1].String())
	}
	if in.InStock {
		v.Set("in_stock", "true")
	}
	return ProductListCachePrefix + ":" + v.Encode()
}
