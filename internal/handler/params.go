package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// page/limitを読む。未指定ならデフォルト
func pagination(c echo.Context) (page int, limit int, field string, ok bool) {
	page, limit = defaultPage, defaultLimit
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, "page", false
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, "limit", false
		}
		limit = l
	}
	return page, limit, "", true
}

func queryDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RFC3339か日付（YYYY-MM-DD）を受け付ける
func queryTime(c echo.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func pathInt64(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
