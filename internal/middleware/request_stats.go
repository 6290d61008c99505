package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the rolling request counters surfaced by GET /health.
const (
	KeyReqTotal  = "swapdesk:stats:req_total"
	KeyReqErrors = "swapdesk:stats:req_errors"
	KeyResTime   = "swapdesk:stats:res_time_total"
	KeyResCount  = "swapdesk:stats:res_count"
	KeyLastReq   = "swapdesk:stats:last_request"
)

// statsTTL bounds how long counters survive without traffic; a quiet
// weekend resets the numbers rather than carrying them forever.
const statsTTL = 24 * time.Hour

// RequestStats records per-request counters in redis for the health
// endpoint. Probes and favicons are skipped; redis failures are ignored so
// stats never break request handling.
func RequestStats(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		last := map[string]interface{}{
			"time":   start.UTC(),
			"method": c.Method(),
			"path":   c.OriginalURL(),
			"ip":     c.IP(),
		}
		b, _ := json.Marshal(last)
		ctx := context.Background()
		_ = rdb.Set(ctx, KeyLastReq, b, statsTTL).Err()
		bumpCounter(ctx, rdb, KeyReqTotal)

		err := c.Next()

		bumpCounter(ctx, rdb, KeyResCount)
		_ = rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds())).Err()
		_ = rdb.Expire(ctx, KeyResTime, statsTTL).Err()
		if c.Response().StatusCode() >= 500 {
			bumpCounter(ctx, rdb, KeyReqErrors)
		}
		return err
	}
}

func bumpCounter(ctx context.Context, rdb *redis.Client, key string) {
	_ = rdb.Incr(ctx, key).Err()
	_ = rdb.Expire(ctx, key, statsTTL).Err()
}
