package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/globomantics/cms/internal/web"
)

// AccessLog logs one line per request after the handler finished.
// Server errors are logged at error level.
func AccessLog() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			if err != nil && !rw.Written() {
				switch he := web.AsHTTPError(err); {
				case he != nil:
					status = he.Code
				case IsTimeoutError(err):
					status = http.StatusGatewayTimeout
				default:
					status = http.StatusInternalServerError
				}
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			}
			c.Logger().LogAttrs(c, level, "request",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
