package server

import (
	"catalog/internal/handler"
	"catalog/internal/middleware"
	"catalog/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Orders       *handler.OrderHandler
	AdminUser    *handler.AdminUserHandler
}

// /api 配下のルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers, tokens middleware.TokenParser, users repository.UserRepository) {
	api := e.Group("/api")

	//JWT必須 + token_version一致
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(tokens),
		middleware.TokenVersionGuard(users),
	}
	staff := append(authed[:len(authed):len(authed)], middleware.StaffGuard())

	h.Health.RegisterRoutes(api)
	h.Auth.RegisterRoutes(api, authed...)
	h.Products.RegisterRoutes(api)
	h.AdminProduct.RegisterRoutes(api, staff...)
	h.Orders.RegisterRoutes(api, authed...)
	h.AdminUser.RegisterRoutes(api, staff...)
}
