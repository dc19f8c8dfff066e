package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/internal/middleware"
	repo "catalog/internal/repository"
	"catalog/internal/usecase"
	"catalog/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   ErrorResponse
	}{
		{"validation", &validator.ValidationError{Field: "items[0].quantity", Reason: "Quantity must be greater than 0"}, 400,
			ErrorResponse{Error: "Quantity must be greater than 0", Field: "items[0].quantity"}},
		{"not found", &usecase.NotFoundError{Resource: "product", ID: "9"}, 404, ErrorResponse{Error: "product 9 not found"}},
		{"http", usecase.NewHTTPError(http.StatusForbidden, "forbidden"), 403, ErrorResponse{Error: "forbidden"}},
		{"constraint", &usecase.TransactionError{Op: "create order", Err: fmt.Errorf("%w: fk", repo.ErrConstraint)}, 409, ErrorResponse{Error: "conflict"}},
		{"tx", &usecase.TransactionError{Op: "create order", Err: errors.New("disk full")}, 500, ErrorResponse{Error: "internal error"}},
		{"unknown", errors.New("boom"), 500, ErrorResponse{Error: "internal error"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext("/")
			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var got ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.body, got)

			//500だけ原因をアクセスログ用に残す
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, tc.err, c.Get(middleware.CtxErrorKey))
			} else {
				assert.Nil(t, c.Get(middleware.CtxErrorKey))
			}
		})
	}
}

func TestPagination(t *testing.T) {
	c, _ := newContext("/?page=3&limit=5")
	page, limit, _, ok := pagination(c)
	require.True(t, ok)
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, limit)

	c, _ = newContext("/")
	page, limit, _, ok = pagination(c)
	require.True(t, ok)
	assert.Equal(t, defaultPage, page)
	assert.Equal(t, defaultLimit, limit)

	c, _ = newContext("/?limit=ten")
	_, _, field, ok := pagination(c)
	assert.False(t, ok)
	assert.Equal(t, "limit", field)
}

func TestQueryTime(t *testing.T) {
	c, _ := newContext("/?a=2026-03-01&b=2026-03-01T10:00:00Z&c=yesterday")

	a, err := queryTime(c, "a")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T00:00:00Z", a.Format("2006-01-02T15:04:05Z07:00"))

	b, err := queryTime(c, "b")
	require.NoError(t, err)
	assert.Equal(t, 10, b.Hour())

	_, err = queryTime(c, "c")
	assert.Error(t, err)

	missing, err := queryTime(c, "d")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQueryDecimalAndBool(t *testing.T) {
	c, _ := newContext("/?price=19.99&bad=abc&in_stock=true")

	d, err := queryDecimal(c, "price")
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.String())

	_, err = queryDecimal(c, "bad")
	assert.Error(t, err)

	b, err := queryBool(c, "in_stock")
	require.NoError(t, err)
	assert.True(t, b)
}
