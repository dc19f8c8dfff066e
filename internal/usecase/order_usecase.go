package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"catalog/internal/config"
	"catalog/internal/domain/model"
	repo "catalog/internal/repository"
	"catalog/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	writer  *OrderWriter
	pricing string
}

func NewOrderUsecase(tx repo.TransactionManager, writer *OrderWriter, pricingMode string) *OrderUsecase {
	if pricingMode == "" {
		pricingMode = config.PricingCurrent
	}
	return &OrderUsecase{tx: tx, writer: writer, pricing: pricingMode}
}

type OrderItemOutput struct {
	ProductID    int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductPrice model.Money `json:"product_price"`
	Quantity     int64       `json:"quantity"`
	ItemSubtotal model.Money `json:"item_subtotal"`
}

type OrderOutput struct {
	OrderID    uuid.UUID         `json:"order_id"`
	UserID     int64             `json:"user"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
	TotalPrice model.Money       `json:"total_price"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CreateOrderInput struct {
	Status string
	Items  []validator.OrderItemInput
}

type UpdateOrderInput struct {
	Status *string
	Items  []validator.OrderItemInput // nilなら明細はそのまま
}

type ListOrdersInput struct {
	Page          int
	Limit         int
	Status        string
	CreatedOn     *time.Time
	CreatedBefore *time.Time
	CreatedAfter  *time.Time
}

func (u *OrderUsecase) Create(ctx context.Context, caller Caller, in CreateOrderInput) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	agg, err := u.writer.Create(ctx, caller.UserID, model.OrderStatus(in.Status), in.Items)
	if err != nil {
		return OrderOutput{}, err
	}
	return u.render(ctx, agg)
}

// スタッフ以外は自分の注文だけ
func (u *OrderUsecase) List(ctx context.Context, caller Caller, in ListOrdersInput) (OrderListOutput, error) {
	if caller.UserID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return OrderListOutput{}, &validator.ValidationError{Field: "page", Reason: "Invalid page"}
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, &validator.ValidationError{Field: "limit", Reason: "Invalid limit"}
	}
	if in.Status != "" {
		if err := validator.ValidateOrderStatus(model.OrderStatus(in.Status)); err != nil {
			return OrderListOutput{}, err
		}
	}

	f := repo.OrderListFilter{
		Page:          in.Page,
		Limit:         in.Limit,
		Status:        in.Status,
		CreatedOn:     in.CreatedOn,
		CreatedBefore: in.CreatedBefore,
		CreatedAfter:  in.CreatedAfter,
	}
	if !caller.IsStaff {
		uid := caller.UserID
		f.UserID = &uid
	}

	out := OrderListOutput{Items: []OrderOutput{}, Page: in.Page, Limit: in.Limit}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, f)
		if err != nil {
			return err
		}
		out.Total = total

		ids := make([]uuid.UUID, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.OrderID)
		}
		itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return err
		}

		aggs := make([]OrderAggregate, 0, len(orders))
		for _, o := range orders {
			aggs = append(aggs, OrderAggregate{Order: o, Items: itemsByOrder[o.OrderID]})
		}
		rendered, err := u.renderAll(ctx, r, aggs)
		if err != nil {
			return err
		}
		out.Items = rendered
		return nil
	})
	if err != nil {
		return OrderListOutput{}, classify("list orders", err)
	}
	return out, nil
}

func (u *OrderUsecase) Get(ctx context.Context, caller Caller, orderID uuid.UUID) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.findVisible(ctx, r, caller, orderID)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		rendered, err := u.renderAll(ctx, r, []OrderAggregate{{Order: o, Items: items}})
		if err != nil {
			return err
		}
		out = rendered[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, classify("get order", err)
	}
	return out, nil
}

// PUT/PATCH。本人かスタッフだけ
func (u *OrderUsecase) Update(ctx context.Context, caller Caller, orderID uuid.UUID, in UpdateOrderInput) (OrderOutput, error) {
	if err := u.checkVisible(ctx, caller, orderID); err != nil {
		return OrderOutput{}, err
	}

	var upd OrderUpdate
	if in.Status != nil {
		s := model.OrderStatus(*in.Status)
		upd.Status = &s
	}
	upd.Items = in.Items

	agg, err := u.writer.Update(ctx, caller.UserID, orderID, upd)
	if err != nil {
		return OrderOutput{}, err
	}
	return u.render(ctx, agg)
}

func (u *OrderUsecase) Delete(ctx context.Context, caller Caller, orderID uuid.UUID) error {
	if err := u.checkVisible(ctx, caller, orderID); err != nil {
		return err
	}
	return u.writer.Delete(ctx, orderID)
}

func (u *OrderUsecase) checkVisible(ctx context.Context, caller Caller, orderID uuid.UUID) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := u.findVisible(ctx, r, caller, orderID)
		return err
	})
	return classify("find order", err)
}

// 他人の注文は「存在しない扱い」にする
func (u *OrderUsecase) findVisible(ctx context.Context, r repo.TxRepos, caller Caller, orderID uuid.UUID) (model.Order, error) {
	if caller.UserID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, newNotFound("order", orderID)
	}
	if err != nil {
		return model.Order{}, err
	}
	if !caller.IsStaff && o.UserID != caller.UserID {
		return model.Order{}, newNotFound("order", orderID)
	}
	return o, nil
}

func (u *OrderUsecase) render(ctx context.Context, agg OrderAggregate) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rendered, err := u.renderAll(ctx, r, []OrderAggregate{agg})
		if err != nil {
			return err
		}
		out = rendered[0]
		return nil
	})
	if err != nil {
		return OrderOutput{}, classify("render order", err)
	}
	return out, nil
}

// 小計・合計を計算して出力にする。
// currentなら今の商品価格、snapshotなら明細作成時の価格を使う
func (u *OrderUsecase) renderAll(ctx context.Context, r repo.TxRepos, aggs []OrderAggregate) ([]OrderOutput, error) {
	var products map[int64]model.Product
	if u.pricing == config.PricingCurrent {
		var ids []int64
		for _, a := range aggs {
			for _, it := range a.Items {
				ids = append(ids, it.ProductID)
			}
		}
		var err error
		products, err = r.Products().FindByIDsWithDeleted(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	outs := make([]OrderOutput, 0, len(aggs))
	for _, a := range aggs {
		outs = append(outs, toOrderOutput(a, products))
	}
	return outs, nil
}

func toOrderOutput(a OrderAggregate, products map[int64]model.Product) OrderOutput {
	total := decimal.Zero
	outItems := make([]OrderItemOutput, 0, len(a.Items))
	for _, it := range a.Items {
		name, price := it.ProductNameSnapshot, it.UnitPriceSnapshot
		if p, ok := products[it.ProductID]; ok {
			name, price = p.Name, p.Price
		}

		subtotal := ItemSubtotal(price, it.Quantity)
		total = total.Add(subtotal)
		outItems = append(outItems, OrderItemOutput{
			ProductID:    it.ProductID,
			ProductName:  name,
			ProductPrice: model.NewMoney(price),
			Quantity:     it.Quantity,
			ItemSubtotal: model.NewMoney(subtotal),
		})
	}

	return OrderOutput{
		OrderID:    a.Order.OrderID,
		UserID:     a.Order.UserID,
		Status:     string(a.Order.Status),
		CreatedAt:  a.Order.CreatedAt,
		Items:      outItems,
		TotalPrice: model.NewMoney(total),
	}
}

// 単価 × 数量
func ItemSubtotal(price decimal.Decimal, quantity int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity))
}
