package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// スタッフ（ADMIN）だけ通す。AuthJWTの後ろに置く
func StaffGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid, ok := c.Get(CtxUserIDKey).(int64); !ok || uid <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if staff, _ := c.Get(CtxIsStaffKey).(bool); !staff {
				return c.JSON(http.StatusForbidden, errorJSON("You do not have permission to perform this action."))
			}
			return next(c)
		}
	}
}
