package handler

import (
	"net/http"

	"catalog/internal/middleware"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /user/create のリクエストボディ
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// /token のリクエストボディ
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, authed ...echo.MiddlewareFunc) {
	api.POST("/user/create", h.register)
	api.GET("/user/me", h.me, authed...)

	api.POST("/token", h.login)
	api.POST("/token/refresh", h.refresh)
	api.POST("/token/revoke", h.revoke, authed...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "", "invalid body")
	}

	out, err := h.uc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 自分のトークンを全部失効させる
func (h *AuthHandler) revoke(c echo.Context) error {
	out, err := h.uc.RevokeAll(c.Request().Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	out, err := h.uc.Me(c.Request().Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
