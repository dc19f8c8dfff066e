package middleware

import (
	"strconv"
	"time"

	"catalog/internal/logger"
	"catalog/internal/metrics"

	"github.com/labstack/echo/v4"
)

// 1リクエスト1行のアクセスログ
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				//ステータスを確定させる
				c.Error(err)
			} else if stored, ok := c.Get(CtxErrorKey).(error); ok {
				err = stored
			}

			req := c.Request()
			res := c.Response()
			fields := []interface{}{
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", res.Status,
				"latency", time.Since(start).String(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields = append(fields, "user_id", uid)
			}
			if err != nil {
				fields = append(fields, "error", err.Error())
			}

			switch {
			case res.Status >= 500:
				log.Error("request", fields...)
			case res.Status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}

// リクエスト数とレイテンシ。pathはルートのパターンで数える
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			m.Requests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			m.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
