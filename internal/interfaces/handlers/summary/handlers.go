// Package summary exposes the desk aggregation endpoints.
package summary

import (
	"time"

	"github.com/gofiber/fiber/v2"

	summarysvc "swapdesk-backend/internal/application/summary"
	"swapdesk-backend/internal/middleware"
	"swapdesk-backend/internal/pkg/response"
)

// Handlers holds dependencies for summary endpoints.
type Handlers struct {
	Service *summarysvc.Service
}

// TradeSummary GET /api/v1/summary.
func (h *Handlers) TradeSummary(c *fiber.Ctx) error {
	s, err := h.Service.TradeSummary(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Trade summary", s)
}

// DailySummary GET /api/v1/summary/daily. Optional ?date=YYYY-MM-DD,
// defaulting to today. The my-desk figures are scoped to the caller.
func (h *Handlers) DailySummary(c *fiber.Ctx) error {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.Error(c, "date must be an ISO-8601 date", fiber.StatusBadRequest, nil)
		}
		day = parsed
	}
	s, err := h.Service.DailySummary(c.Context(), day, middleware.GetLoginID(c))
	if err != nil {
		return err
	}
	return response.Success(c, "Daily summary", s)
}
