package middleware

import (
	"log/slog"
	"time"

	"sushiramen/internal/logging"

	"github.com/labstack/echo/v4"
)

// リクエストごとの子loggerをcontextに入れ、完了時に1行出す。
// RequestIDミドルウェアの後ろに置く。
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.String(),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", requestID,
			)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			err := next(c)
			if err != nil {
				// HTTPErrorHandlerでレスポンスを確定させてから記録する
				c.Error(err)
			}

			status := c.Response().Status
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logging.FromContext(c.Request().Context()).Log(c.Request().Context(), level, "request completed",
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
