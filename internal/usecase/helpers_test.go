package usecase_test

import (
	"context"
	"testing"

	"catalog/internal/domain/model"
	"catalog/internal/infra/db"
	"catalog/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// SQLite（インメモリ）のテスト用DB
// =====================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLiteMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email string, role model.Role) model.User {
	t.Helper()

	u := model.User{Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price string, stock int64) model.Product {
	t.Helper()

	p := model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func countItems(t *testing.T, gdb *gorm.DB, orderID uuid.UUID) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gdb.Model(&model.OrderItem{}).Where("order_id = ?", orderID).Count(&n).Error)
	return n
}

func countOrders(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&n).Error)
	return n
}

func items(pairs ...int64) []validator.OrderItemInput {
	out := make([]validator.OrderItemInput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, validator.OrderItemInput{ProductID: pairs[i], Quantity: pairs[i+1]})
	}
	return out
}

// order_itemsへのINSERTだけ失敗させる（ストア障害の再現）
func failItemInserts(t *testing.T, gdb *gorm.DB) *bool {
	t.Helper()

	enabled := new(bool)
	err := gdb.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if *enabled && tx.Statement.Table == "order_items" {
			_ = tx.AddError(errDiskFull)
		}
	})
	require.NoError(t, err)
	return enabled
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errDiskFull = testErr("disk full")

var bg = context.Background()
