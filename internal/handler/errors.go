package handler

import (
	"net/http"

	"catalog/internal/middleware"
	"catalog/internal/usecase"
	"catalog/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// usecaseのエラーをHTTPステータスに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := validator.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Reason, Field: ve.Field})
	}
	if nf, ok := usecase.AsNotFoundError(err); ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: nf.Error()})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	if te, ok := usecase.AsTransactionError(err); ok && te.IsConstraint() {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	}

	//中身はレスポンスに出さずアクセスログへ
	c.Set(middleware.CtxErrorKey, err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, field, reason string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: reason, Field: field})
}
