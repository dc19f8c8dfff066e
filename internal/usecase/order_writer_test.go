package usecase_test

import (
	"testing"
	"time"

	"catalog/internal/domain/model"
	infraRepo "catalog/internal/infra/repository"
	"catalog/internal/metrics"
	"catalog/internal/usecase"
	"catalog/internal/validator"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type writerFixture struct {
	db         *gorm.DB
	user       model.User
	p1, p2, p3 model.Product
	failItems  *bool
}

func newWriter(t *testing.T, opts ...usecase.OrderWriterOption) (*usecase.OrderWriter, writerFixture) {
	t.Helper()

	gdb := newTestDB(t)
	f := writerFixture{
		db:        gdb,
		user:      seedUser(t, gdb, "buyer@example.com", model.RoleUser),
		p1:        seedProduct(t, gdb, "Widget", "10.00", 5),
		p2:        seedProduct(t, gdb, "Gadget", "5.00", 5),
		p3:        seedProduct(t, gdb, "Gizmo", "2.50", 0),
		failItems: failItemInserts(t, gdb),
	}
	return usecase.NewOrderWriter(infraRepo.NewTxManagerGorm(gdb), opts...), f
}

// =====================
// Create
// =====================

func TestOrderWriter_Create_PersistsOrderAndItems(t *testing.T) {
	w, f := newWriter(t)

	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, agg.Order.OrderID)
	assert.Equal(t, f.user.ID, agg.Order.UserID)
	assert.Equal(t, model.OrderStatusPending, agg.Order.Status)
	require.Len(t, agg.Items, 2)

	var stored []model.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", agg.Order.OrderID).Order("id asc").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, f.p1.ID, stored[0].ProductID)
	assert.Equal(t, int64(2), stored[0].Quantity)
	assert.Equal(t, "Widget", stored[0].ProductNameSnapshot)
	assert.True(t, stored[0].UnitPriceSnapshot.Equal(f.p1.Price))
	assert.Equal(t, f.p2.ID, stored[1].ProductID)
	assert.Equal(t, int64(1), stored[1].Quantity)
}

func TestOrderWriter_Create_DefaultsToPending(t *testing.T) {
	w, f := newWriter(t)

	agg, err := w.Create(bg, f.user.ID, "", items(f.p1.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, agg.Order.Status)
}

func TestOrderWriter_Create_EmptyItemsIsAllowed(t *testing.T) {
	w, f := newWriter(t)

	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, nil)
	require.NoError(t, err)
	assert.Empty(t, agg.Items)
	assert.Equal(t, int64(1), countOrders(t, f.db))
}

func TestOrderWriter_Create_UsesClockAndIDGenerator(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	id := uuid.MustParse("7b0b7c36-4a4f-4c52-9d3c-0f6f8e3b2a11")
	w, f := newWriter(t,
		usecase.WithOrderClock(fixedClock{t: at}),
		usecase.WithOrderIDGenerator(func() uuid.UUID { return id }),
	)

	agg, err := w.Create(bg, f.user.ID, model.OrderStatusConfirmed, items(f.p1.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, id, agg.Order.OrderID)
	assert.True(t, agg.Order.CreatedAt.Equal(at))
}

func TestOrderWriter_Create_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		w, f := newWriter(t)

		_, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, qty))

		ve, ok := validator.AsValidationError(err)
		require.True(t, ok, "want ValidationError, got %v", err)
		assert.Equal(t, "items[1].quantity", ve.Field)
		assert.Equal(t, int64(0), countOrders(t, f.db), "nothing may be persisted")
	}
}

func TestOrderWriter_Create_RejectsUnknownStatus(t *testing.T) {
	w, f := newWriter(t)

	_, err := w.Create(bg, f.user.ID, "Shipped", items(f.p1.ID, 1))

	ve, ok := validator.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "status", ve.Field)
}

func TestOrderWriter_Create_UnknownProductRollsBack(t *testing.T) {
	w, f := newWriter(t)

	_, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 1, 9999, 1))

	nf, ok := usecase.AsNotFoundError(err)
	require.True(t, ok, "want NotFoundError, got %v", err)
	assert.Equal(t, "product", nf.Resource)
	assert.Equal(t, "9999", nf.ID)
	assert.Equal(t, int64(0), countOrders(t, f.db))
}

func TestOrderWriter_Create_DeletedProductIsNotFound(t *testing.T) {
	w, f := newWriter(t)
	require.NoError(t, f.db.Delete(&model.Product{}, f.p2.ID).Error)

	_, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p2.ID, 1))

	_, ok := usecase.AsNotFoundError(err)
	assert.True(t, ok)
}

func TestOrderWriter_Create_StoreFailureRollsBackHeader(t *testing.T) {
	w, f := newWriter(t)
	*f.failItems = true

	_, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 1))

	te, ok := usecase.AsTransactionError(err)
	require.True(t, ok, "want TransactionError, got %v", err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, te.IsConstraint())
	assert.Equal(t, int64(0), countOrders(t, f.db), "order header must be rolled back with the items")
}

// =====================
// ReplaceItems
// =====================

func TestOrderWriter_ReplaceItems_WithEmptySetClearsItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	out, err := w.ReplaceItems(bg, agg.Order.OrderID, []validator.OrderItemInput{})
	require.NoError(t, err)

	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), countItems(t, f.db, agg.Order.OrderID))
}

func TestOrderWriter_ReplaceItems_ReplacesWholeSet(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	out, err := w.ReplaceItems(bg, agg.Order.OrderID, items(f.p3.ID, 5))
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	var stored []model.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", agg.Order.OrderID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, f.p3.ID, stored[0].ProductID)
	assert.Equal(t, int64(5), stored[0].Quantity)
}

func TestOrderWriter_ReplaceItems_InvalidQuantityKeepsExistingItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	_, err = w.ReplaceItems(bg, agg.Order.OrderID, items(f.p3.ID, 1, f.p1.ID, 0))

	ve, ok := validator.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "items[1].quantity", ve.Field)
	assert.Equal(t, int64(2), countItems(t, f.db, agg.Order.OrderID))
}

func TestOrderWriter_ReplaceItems_UnknownProductKeepsExistingItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	_, err = w.ReplaceItems(bg, agg.Order.OrderID, items(f.p3.ID, 1, 4242, 1))

	_, ok := usecase.AsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, int64(2), countItems(t, f.db, agg.Order.OrderID))
}

func TestOrderWriter_ReplaceItems_StoreFailureRestoresPreviousItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	//削除は済んだ後にINSERTが失敗する
	*f.failItems = true
	_, err = w.ReplaceItems(bg, agg.Order.OrderID, items(f.p3.ID, 5))

	_, ok := usecase.AsTransactionError(err)
	require.True(t, ok, "want TransactionError, got %v", err)

	var stored []model.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", agg.Order.OrderID).Order("id asc").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, f.p1.ID, stored[0].ProductID)
	assert.Equal(t, int64(2), stored[0].Quantity)
}

func TestOrderWriter_ReplaceItems_UnknownOrder(t *testing.T) {
	w, f := newWriter(t)

	_, err := w.ReplaceItems(bg, uuid.New(), items(f.p1.ID, 1))

	nf, ok := usecase.AsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "order", nf.Resource)
}

// =====================
// Update（ステータス + 明細）
// =====================

func TestOrderWriter_Update_NilItemsKeepsItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2))
	require.NoError(t, err)

	s := model.OrderStatusConfirmed
	out, err := w.Update(bg, f.user.ID, agg.Order.OrderID, usecase.OrderUpdate{Status: &s})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusConfirmed, out.Order.Status)
	require.Len(t, out.Items, 1)

	var logs []model.AuditLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, logs[0].Action)
	assert.Equal(t, agg.Order.OrderID.String(), logs[0].ResourceID)
	assert.JSONEq(t, `{"status":"Pending"}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"status":"Confirmed"}`, logs[0].AfterJSON)
}

func TestOrderWriter_Update_FreeTransitionsByDefault(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusDelivered, items(f.p1.ID, 1))
	require.NoError(t, err)

	s := model.OrderStatusPending
	out, err := w.Update(bg, f.user.ID, agg.Order.OrderID, usecase.OrderUpdate{Status: &s})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, out.Order.Status)
}

func TestOrderWriter_Update_StrictTransitionsRejectsBackwards(t *testing.T) {
	w, f := newWriter(t, usecase.WithStrictTransitions(true))
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusDelivered, items(f.p1.ID, 1))
	require.NoError(t, err)

	s := model.OrderStatusPending
	_, err = w.Update(bg, f.user.ID, agg.Order.OrderID, usecase.OrderUpdate{Status: &s, Items: items(f.p2.ID, 3)})

	ve, ok := validator.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "status", ve.Field)

	//明細も変わっていない
	var stored []model.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", agg.Order.OrderID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, f.p1.ID, stored[0].ProductID)
}

func TestOrderWriter_Update_StrictTransitionsAllowsForward(t *testing.T) {
	w, f := newWriter(t, usecase.WithStrictTransitions(true))
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 1))
	require.NoError(t, err)

	for _, next := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusDelivered} {
		s := next
		out, err := w.Update(bg, f.user.ID, agg.Order.OrderID, usecase.OrderUpdate{Status: &s})
		require.NoError(t, err)
		assert.Equal(t, next, out.Order.Status)
	}
}

func TestOrderWriter_Update_ReplacesItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	out, err := w.Update(bg, f.user.ID, agg.Order.OrderID, usecase.OrderUpdate{Items: []validator.OrderItemInput{}})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), countItems(t, f.db, agg.Order.OrderID))
}

// =====================
// Delete
// =====================

func TestOrderWriter_Delete_RemovesItems(t *testing.T) {
	w, f := newWriter(t)
	agg, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 2, f.p2.ID, 1))
	require.NoError(t, err)

	require.NoError(t, w.Delete(bg, agg.Order.OrderID))
	assert.Equal(t, int64(0), countOrders(t, f.db))
	assert.Equal(t, int64(0), countItems(t, f.db, agg.Order.OrderID))

	_, ok := usecase.AsNotFoundError(w.Delete(bg, agg.Order.OrderID))
	assert.True(t, ok)
}

// =====================
// Metrics
// =====================

func TestOrderWriter_RecordsWriteResults(t *testing.T) {
	m := metrics.New()
	w, f := newWriter(t, usecase.WithOrderMetrics(m))

	_, err := w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 1))
	require.NoError(t, err)
	_, err = w.Create(bg, f.user.ID, model.OrderStatusPending, items(f.p1.ID, 0))
	require.Error(t, err)
	_, err = w.ReplaceItems(bg, uuid.New(), items(f.p1.ID, 1))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderWrites.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderWrites.WithLabelValues("create", "validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderWrites.WithLabelValues("replace_items", "not_found")))
}
