package middleware

import (
	"net/http"
	"strings"

	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxIsStaffKey      = "is_staff"      // bool
	CtxTokenVersionKey = "token_version" // int
	CtxErrorKey        = "error"         // error。500で返した原因
)

type TokenParser interface {
	Parse(raw string) (usecase.TokenClaims, error)
}

// bearerAuth用のJWT検証ミドルウェア。accessトークンだけ通す
func AuthJWT(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Bearer形式か確認してtokenを抜く
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication credentials were not provided."))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Authentication credentials were not provided."))
			}

			claims, err := tokens.Parse(rawToken)
			if err != nil || claims.Kind != usecase.TokenKindAccess || claims.UserID <= 0 || claims.TokenVersion < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("Given token not valid for any token type"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxIsStaffKey, claims.IsStaff)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

// AuthJWTが入れた値から呼び出し元を組み立てる
func CallerFrom(c echo.Context) usecase.Caller {
	uid, _ := c.Get(CtxUserIDKey).(int64)
	staff, _ := c.Get(CtxIsStaffKey).(bool)
	return usecase.Caller{UserID: uid, IsStaff: staff}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
