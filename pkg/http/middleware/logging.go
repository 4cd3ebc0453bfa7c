package middleware

import (
	"time"

	applogger "FXSignals/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request. Health and metrics scrapes log at debug.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil {
				return next(c)
			}
			req := c.Request()
			start := time.Now()

			err := next(c)

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, applogger.Error(err))
			}
			switch c.Path() {
			case "/metrics", "/healthz":
				l.Debug("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return err
		}
	}
}
