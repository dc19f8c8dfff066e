package handler

import (
	"net/http"

	"catalog/internal/middleware"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PUT/POSTの入力
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
}

// PATCHの入力。送られたフィールドだけ変える
type ProductPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
}

// 商品の作成・更新・削除（スタッフのみ）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// staffにはAuthJWT/TokenVersionGuard/StaffGuardを順に渡す
func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, staff ...echo.MiddlewareFunc) {
	api.POST("/products", h.create, staff...)
	api.PUT("/products/:id", h.update, staff...)
	api.PATCH("/products/:id", h.patch, staff...)
	api.DELETE("/products/:id", h.delete, staff...)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	caller := middleware.CallerFrom(c)
	p, err := h.uc.Create(c.Request().Context(), caller.UserID, usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	id, ok := pathInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	caller := middleware.CallerFrom(c)
	p, err := h.uc.Update(c.Request().Context(), caller.UserID, id, usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) patch(c echo.Context) error {
	id, ok := pathInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	var req ProductPatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	caller := middleware.CallerFrom(c)
	p, err := h.uc.Patch(c.Request().Context(), caller.UserID, id, usecase.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	id, ok := pathInt64(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	caller := middleware.CallerFrom(c)
	if err := h.uc.Delete(c.Request().Context(), caller.UserID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
