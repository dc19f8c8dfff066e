package handler

import (
	"net/http"
	"strconv"

	"catalog/internal/middleware"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin 配下（スタッフ限定）
type AdminUserHandler struct {
	auth  *usecase.AuthUsecase
	audit *usecase.AuditUsecase
}

func NewAdminUserHandler(auth *usecase.AuthUsecase, audit *usecase.AuditUsecase) *AdminUserHandler {
	return &AdminUserHandler{auth: auth, audit: audit}
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, staff ...echo.MiddlewareFunc) {
	admin := api.Group("/admin", staff...)

	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID, ok := pathInt64(c, "id")
	if !ok {
		return badRequest(c, "id", "invalid user_id")
	}

	res, err := h.auth.ForceLogout(c.Request().Context(), middleware.CallerFrom(c), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	page, limit, field, ok := pagination(c)
	if !ok {
		return badRequest(c, field, "A valid integer is required.")
	}

	in := usecase.ListAuditLogsInput{
		Page:         page,
		Limit:        limit,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
	}
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "actor_user_id", "A valid integer is required.")
		}
		in.ActorUserID = &id
	}
	var err error
	if in.From, err = queryTime(c, "from"); err != nil {
		return badRequest(c, "from", "Enter a valid date/time.")
	}
	if in.To, err = queryTime(c, "to"); err != nil {
		return badRequest(c, "to", "Enter a valid date/time.")
	}

	out, err := h.audit.List(c.Request().Context(), middleware.CallerFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
