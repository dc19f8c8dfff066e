package handler

import (
	"net/http"
	"strings"

	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products", h.list)
	api.GET("/products/info", h.info)
	api.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, limit, field, ok := pagination(c)
	if !ok {
		return badRequest(c, field, "A valid integer is required.")
	}

	in := usecase.ListProductsInput{
		Page:         page,
		Limit:        limit,
		Name:         c.QueryParam("name"),
		NameContains: c.QueryParam("name__icontains"),
	}

	var err error
	for name, dst := range map[string]**decimal.Decimal{
		"price":     &in.Price,
		"price__lt": &in.PriceLT,
		"price__gt": &in.PriceGT,
	} {
		if *dst, err = queryDecimal(c, name); err != nil {
			return badRequest(c, name, "Enter a number.")
		}
	}

	if v := c.QueryParam("price__range"); v != "" {
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return badRequest(c, "price__range", "Enter two numbers separated by a comma.")
		}
		lo, err1 := decimal.NewFromString(strings.TrimSpace(parts[0]))
		hi, err2 := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return badRequest(c, "price__range", "Enter two numbers separated by a comma.")
		}
		in.PriceRange = &[2]decimal.Decimal{lo, hi}
	}

	if in.InStock, err = queryBool(c, "in_stock"); err != nil {
		return badRequest(c, "in_stock", "Must be a valid boolean.")
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) info(c echo.Context) error {
	out, err := h.uc.Info(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := pathInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
