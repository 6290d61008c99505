// Package health exposes the liveness endpoint.
package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"swapdesk-backend/internal/middleware"
)

// Handlers holds dependencies for the health endpoint.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// Check GET /health. Reports dependency reachability without failing the
// probe; orchestrators treat any 200 as alive.
func (h *Handlers) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "unconfigured"
	if h.DB != nil {
		dbStatus = "up"
		if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
		}
	}
	redisStatus := "unconfigured"
	if h.Rdb != nil {
		redisStatus = "up"
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	body := fiber.Map{
		"status": "ok",
		"db":     dbStatus,
		"redis":  redisStatus,
		"time":   time.Now().UTC(),
	}
	if redisStatus == "up" {
		body["requests"] = h.requestStats(ctx)
	}
	return c.JSON(body)
}

// requestStats reads the rolling counters maintained by the request-stats
// middleware. Missing keys read as zero.
func (h *Handlers) requestStats(ctx context.Context) fiber.Map {
	total, _ := h.Rdb.Get(ctx, middleware.KeyReqTotal).Int64()
	errs, _ := h.Rdb.Get(ctx, middleware.KeyReqErrors).Int64()
	resCount, _ := h.Rdb.Get(ctx, middleware.KeyResCount).Int64()
	resTime, _ := h.Rdb.Get(ctx, middleware.KeyResTime).Float64()

	avgMs := 0.0
	if resCount > 0 {
		avgMs = resTime / float64(resCount)
	}
	return fiber.Map{
		"total":           total,
		"errors":          errs,
		"avg_response_ms": avgMs,
	}
}
