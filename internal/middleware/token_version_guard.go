package middleware

import (
	"net/http"

	"catalog/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後ろに置く。
// DBのtoken_versionとJWTのtvが違えば失効済み。is_staffもトークン発行後に変わりうるのでDBの値で上書きする
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			tv, hasTV := c.Get(CtxTokenVersionKey).(int)
			if caller.UserID <= 0 || !hasTV {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := users.FindByID(c.Request().Context(), caller.UserID)
			switch {
			case err != nil, user == nil, !user.IsActive:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			case user.TokenVersion != tv:
				return c.JSON(http.StatusUnauthorized, errorJSON("Token has been revoked"))
			}

			c.Set(CtxIsStaffKey, user.IsStaff())
			return next(c)
		}
	}
}
