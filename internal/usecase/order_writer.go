package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/domain/model"
	"catalog/internal/logger"
	"catalog/internal/metrics"
	repo "catalog/internal/repository"
	"catalog/internal/validator"

	"github.com/google/uuid"
)

// 注文と明細をひとまとまりで扱う
type OrderAggregate struct {
	Order model.Order
	Items []model.OrderItem
}

// 注文ヘッダの更新。Itemsがnilなら明細はそのまま、空スライスなら全削除
type OrderUpdate struct {
	Status *model.OrderStatus
	Items  []validator.OrderItemInput
}

// OrderWriterは注文集約の書き込みだけを担当する。
// 作成も明細の総入れ替えも1トランザクションで、途中の状態は他から見えない。
type OrderWriter struct {
	tx      repo.TransactionManager
	log     *logger.Logger
	metrics *metrics.Metrics
	clock   Clock
	newID   func() uuid.UUID

	strictTransitions bool
}

type OrderWriterOption func(*OrderWriter)

func WithStrictTransitions(strict bool) OrderWriterOption {
	return func(w *OrderWriter) { w.strictTransitions = strict }
}

func WithOrderLogger(l *logger.Logger) OrderWriterOption {
	return func(w *OrderWriter) { w.log = l }
}

func WithOrderMetrics(m *metrics.Metrics) OrderWriterOption {
	return func(w *OrderWriter) { w.metrics = m }
}

func WithOrderClock(c Clock) OrderWriterOption {
	return func(w *OrderWriter) { w.clock = c }
}

func WithOrderIDGenerator(fn func() uuid.UUID) OrderWriterOption {
	return func(w *OrderWriter) { w.newID = fn }
}

// DI
func NewOrderWriter(tx repo.TransactionManager, opts ...OrderWriterOption) *OrderWriter {
	w := &OrderWriter{
		tx:    tx,
		log:   logger.Nop(),
		clock: realClock{},
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Createは注文と初期明細を作る。statusが空ならPending
func (w *OrderWriter) Create(ctx context.Context, userID int64, status model.OrderStatus, items []validator.OrderItemInput) (OrderAggregate, error) {
	if status == "" {
		status = model.OrderStatusPending
	}

	//書き込み前に全部検証する
	if err := w.validateCreate(userID, status, items); err != nil {
		w.record("create", err)
		return OrderAggregate{}, err
	}

	var out OrderAggregate
	err := w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := loadProducts(ctx, r, items)
		if err != nil {
			return err
		}

		now := w.clock.Now()
		order, err := r.Orders().Create(ctx, model.Order{
			OrderID:   w.newID(),
			UserID:    userID,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		created, err := r.OrderItems().CreateBulk(ctx, order.OrderID, buildItems(items, products, now))
		if err != nil {
			return err
		}

		out = OrderAggregate{Order: order, Items: created}
		return nil
	})

	err = classify("create order", err)
	w.record("create", err)
	if err != nil {
		w.log.Warn("order create rolled back", "user_id", userID, "error", err)
		return OrderAggregate{}, err
	}

	w.log.Info("order created", "order_id", out.Order.OrderID, "user_id", userID, "items", len(out.Items))
	return out, nil
}

// ReplaceItemsは明細を総入れ替えする。
// 検証は削除の前に済ませるので、失敗しても既存の明細は残る。
func (w *OrderWriter) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []validator.OrderItemInput) (OrderAggregate, error) {
	if err := validator.ValidateOrderItems(items); err != nil {
		w.record("replace_items", err)
		return OrderAggregate{}, err
	}

	var out OrderAggregate
	err := w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		replaced, err := replaceItems(ctx, r, orderID, items, w.clock.Now())
		if err != nil {
			return err
		}

		out = OrderAggregate{Order: order, Items: replaced}
		return nil
	})

	err = classify("replace order items", err)
	w.record("replace_items", err)
	if err != nil {
		w.log.Warn("order items replace rolled back", "order_id", orderID, "error", err)
		return OrderAggregate{}, err
	}

	w.log.Info("order items replaced", "order_id", orderID, "items", len(out.Items))
	return out, nil
}

// Updateはステータス変更と明細の入れ替えを1トランザクションで行う。
// ステータスが変わったときは監査ログを残す。
func (w *OrderWriter) Update(ctx context.Context, actorUserID int64, orderID uuid.UUID, in OrderUpdate) (OrderAggregate, error) {
	if in.Status != nil {
		if err := validator.ValidateOrderStatus(*in.Status); err != nil {
			w.record("update", err)
			return OrderAggregate{}, err
		}
	}
	if in.Items != nil {
		if err := validator.ValidateOrderItems(in.Items); err != nil {
			w.record("update", err)
			return OrderAggregate{}, err
		}
	}

	var out OrderAggregate
	err := w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := findOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		// ステータス更新（同じなら何もしない）
		if in.Status != nil && *in.Status != order.Status {
			if err := validator.ValidateOrderTransition(order.Status, *in.Status, w.strictTransitions); err != nil {
				return err
			}
			if err := r.Orders().UpdateStatus(ctx, orderID, *in.Status); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return newNotFound("order", orderID)
				}
				return err
			}

			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID.String(),
				BeforeJSON:   fmt.Sprintf(`{"status":%q}`, order.Status),
				AfterJSON:    fmt.Sprintf(`{"status":%q}`, *in.Status),
				CreatedAt:    w.clock.Now(),
			}); err != nil {
				return err
			}
			order.Status = *in.Status
		}

		var items []model.OrderItem
		if in.Items != nil {
			items, err = replaceItems(ctx, r, orderID, in.Items, w.clock.Now())
		} else {
			items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		}
		if err != nil {
			return err
		}

		out = OrderAggregate{Order: order, Items: items}
		return nil
	})

	err = classify("update order", err)
	w.record("update", err)
	if err != nil {
		w.log.Warn("order update rolled back", "order_id", orderID, "error", err)
		return OrderAggregate{}, err
	}

	w.log.Info("order updated", "order_id", orderID, "status", out.Order.Status, "items", len(out.Items))
	return out, nil
}

// Deleteは注文を明細ごと消す
func (w *OrderWriter) Delete(ctx context.Context, orderID uuid.UUID) error {
	err := w.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newNotFound("order", orderID)
			}
			return err
		}
		return nil
	})

	err = classify("delete order", err)
	w.record("delete", err)
	if err != nil {
		return err
	}

	w.log.Info("order deleted", "order_id", orderID)
	return nil
}

func (w *OrderWriter) validateCreate(userID int64, status model.OrderStatus, items []validator.OrderItemInput) error {
	if userID <= 0 {
		return &validator.ValidationError{Field: "user", Reason: "Invalid user"}
	}
	if err := validator.ValidateOrderStatus(status); err != nil {
		return err
	}
	return validator.ValidateOrderItems(items)
}

func (w *OrderWriter) record(op string, err error) {
	if w.metrics == nil {
		return
	}
	w.metrics.OrderWrites.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := validator.AsValidationError(err); ok {
		return "validation"
	}
	if _, ok := AsNotFoundError(err); ok {
		return "not_found"
	}
	return "tx_error"
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID uuid.UUID) (model.Order, error) {
	order, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, newNotFound("order", orderID)
	}
	return order, err
}

// 削除前に参照先の商品がそろっているか確認してから入れ替える
func replaceItems(ctx context.Context, r repo.TxRepos, orderID uuid.UUID, items []validator.OrderItemInput, now time.Time) ([]model.OrderItem, error) {
	products, err := loadProducts(ctx, r, items)
	if err != nil {
		return nil, err
	}

	if _, err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
		return nil, err
	}

	return r.OrderItems().CreateBulk(ctx, orderID, buildItems(items, products, now))
}

// 明細が参照する商品をまとめて取る。1件でも無ければNotFound
func loadProducts(ctx context.Context, r repo.TxRepos, items []validator.OrderItemInput) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, newNotFound("product", id)
		}
	}
	return products, nil
}

// スナップショット（商品名・単価）付きの明細を作る
func buildItems(items []validator.OrderItemInput, products map[int64]model.Product, now time.Time) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		p := products[it.ProductID]
		out = append(out, model.OrderItem{
			ProductID:           it.ProductID,
			ProductNameSnapshot: p.Name,
			UnitPriceSnapshot:   p.Price,
			Quantity:            it.Quantity,
			CreatedAt:           now,
		})
	}
	return out
}
