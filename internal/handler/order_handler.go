package handler

import (
	"net/http"

	"catalog/internal/middleware"
	"catalog/internal/usecase"
	"catalog/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	Status string                     `json:"status"`
	Items  []validator.OrderItemInput `json:"items"`
}

// itemsを省略すると明細はそのまま、[]なら全削除
type OrderUpdateRequest struct {
	Status *string                    `json:"status"`
	Items  []validator.OrderItemInput `json:"items"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, authed ...echo.MiddlewareFunc) {
	g := api.Group("/orders", authed...)

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}
	if req.Items == nil {
		req.Items = []validator.OrderItemInput{}
	}

	out, err := h.uc.Create(c.Request().Context(), middleware.CallerFrom(c), usecase.CreateOrderInput{
		Status: req.Status,
		Items:  req.Items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	page, limit, field, ok := pagination(c)
	if !ok {
		return badRequest(c, field, "A valid integer is required.")
	}

	in := usecase.ListOrdersInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
	var err error
	if in.CreatedOn, err = queryTime(c, "created_at"); err != nil {
		return badRequest(c, "created_at", "Enter a valid date/time.")
	}
	if in.CreatedBefore, err = queryTime(c, "created_at__lt"); err != nil {
		return badRequest(c, "created_at__lt", "Enter a valid date/time.")
	}
	if in.CreatedAfter, err = queryTime(c, "created_at__gt"); err != nil {
		return badRequest(c, "created_at__gt", "Enter a valid date/time.")
	}

	out, err := h.uc.List(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := pathOrderID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	out, err := h.uc.Get(c.Request().Context(), middleware.CallerFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) update(c echo.Context) error {
	id, ok := pathOrderID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	var req OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), middleware.CallerFrom(c), id, usecase.UpdateOrderInput{
		Status: req.Status,
		Items:  req.Items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	id, ok := pathOrderID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}

	if err := h.uc.Delete(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathOrderID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
