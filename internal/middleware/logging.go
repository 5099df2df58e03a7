package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one key=value line per request, the same shape the sweep
// summaries use, so dashboard and cron traffic grep the same way.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			rid, _ := c.Get(ContextKeyRequestID).(string)
			log.Printf("request_id=%s method=%s path=%s status=%d latency=%s bytes=%d",
				rid, c.Request().Method, c.Request().URL.Path, c.Response().Status, latency, c.Response().Size)

			return err
		}
	}
}
