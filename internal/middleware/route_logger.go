package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger emits one structured line per completed request: method, path,
// status and duration, plus the acting user and trade id when the route
// carries them.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		evt := log.Info().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int64("ms", time.Since(start).Milliseconds())
		if login := GetLoginID(c); login != "" {
			evt = evt.Str("login_id", login)
		}
		if tradeID := c.Params("tradeId"); tradeID != "" {
			evt = evt.Str("trade_id", tradeID)
		}
		evt.Msg("Request handled")
		return err
	}
}
