// Package trades exposes the trade lifecycle and blotter endpoints.
package trades

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"swapdesk-backend/internal/application/additionalinfo"
	tradesvc "swapdesk-backend/internal/application/trades"
	"swapdesk-backend/internal/middleware"
	"swapdesk-backend/internal/pkg/response"
)

// Handlers holds dependencies for trade endpoints.
type Handlers struct {
	Service *tradesvc.Service
	Info    *additionalinfo.Service
}

// Book POST /api/v1/trades.
func (h *Handlers) Book(c *fiber.Ctx) error {
	var req tradesvc.TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	trade, err := h.Service.Book(c.Context(), middleware.GetLoginID(c), &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Trade booked", trade)
}

// Amend PUT /api/v1/trades/:tradeId.
func (h *Handlers) Amend(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	var req tradesvc.TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	trade, err := h.Service.Amend(c.Context(), middleware.GetLoginID(c), tradeID, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade amended", trade)
}

// Get GET /api/v1/trades/:tradeId.
func (h *Handlers) Get(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	trade, err := h.Service.Get(c.Context(), tradeID)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade found", trade)
}

// History GET /api/v1/trades/:tradeId/history.
func (h *Handlers) History(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	versions, err := h.Service.History(c.Context(), tradeID)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade versions", versions)
}

// Terminate POST /api/v1/trades/:tradeId/terminate.
func (h *Handlers) Terminate(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	trade, err := h.Service.Terminate(c.Context(), middleware.GetLoginID(c), tradeID)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade terminated", trade)
}

// Cancel POST /api/v1/trades/:tradeId/cancel.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	trade, err := h.Service.Cancel(c.Context(), middleware.GetLoginID(c), tradeID)
	if err != nil {
		return err
	}
	return response.Success(c, "Trade cancelled", trade)
}

// Delete DELETE /api/v1/trades/:tradeId. Logical delete via cancellation.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Context(), middleware.GetLoginID(c), tradeID); err != nil {
		return err
	}
	return response.Success(c, "Trade cancelled", nil)
}

type settlementRequest struct {
	SettlementInstructions string `json:"settlementInstructions"`
}

// UpdateSettlementInstructions PATCH /api/v1/trades/:tradeId/settlement-instructions.
func (h *Handlers) UpdateSettlementInstructions(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	var req settlementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	err = h.Service.UpdateSettlementInstructions(c.Context(), middleware.GetLoginID(c), tradeID, req.SettlementInstructions)
	if err != nil {
		return err
	}
	return response.Success(c, "Settlement instructions updated", nil)
}

// GetSettlementInstructions GET /api/v1/trades/:tradeId/settlement-instructions.
func (h *Handlers) GetSettlementInstructions(c *fiber.Ctx) error {
	tradeID, err := parseTradeID(c)
	if err != nil {
		return err
	}
	if _, err := h.Service.Get(c.Context(), tradeID); err != nil {
		return err
	}
	instructions, err := h.Info.SettlementInstructions(c.Context(), tradeID)
	if err != nil {
		return err
	}
	return response.Success(c, "Settlement instructions", fiber.Map{
		"tradeId":                tradeID,
		"settlementInstructions": instructions,
	})
}

// Search GET /api/v1/trades/search. Structured filters via query params,
// with optional paging and sorting.
func (h *Handlers) Search(c *fiber.Ctx) error {
	filter := tradesvc.SearchFilter{
		Counterparty: c.Query("counterparty"),
		Book:         c.Query("book"),
		Status:       c.Query("status"),
	}
	if raw := c.Query("traderId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return response.Error(c, "traderId must be an integer", fiber.StatusBadRequest, nil)
		}
		filter.TraderID = &id
	}
	if raw := c.Query("fromDate"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.Error(c, "fromDate must be an ISO-8601 date", fiber.StatusBadRequest, nil)
		}
		filter.From = &from
	}
	if raw := c.Query("toDate"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return response.Error(c, "toDate must be an ISO-8601 date", fiber.StatusBadRequest, nil)
		}
		filter.To = &to
	}

	if c.Query("page") != "" || c.Query("size") != "" {
		page := c.QueryInt("page", 0)
		size := c.QueryInt("size", 20)
		results, total, err := h.Service.SearchPaged(c.Context(), filter, page, size,
			c.Query("sortBy"), c.Query("direction"))
		if err != nil {
			return err
		}
		return response.Success(c, "Trades found", fiber.Map{
			"trades": results,
			"total":  total,
			"page":   page,
			"size":   size,
		})
	}

	results, err := h.Service.Search(c.Context(), filter)
	if err != nil {
		return err
	}
	return response.Success(c, "Trades found", results)
}

// Query GET /api/v1/trades/query?q=<rsql>.
func (h *Handlers) Query(c *fiber.Ctx) error {
	results, err := h.Service.SearchRSQL(c.Context(), c.Query("q"))
	if err != nil {
		return err
	}
	return response.Success(c, "Trades found", results)
}

func parseTradeID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("tradeId"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tradeId must be an integer")
	}
	return id, nil
}
