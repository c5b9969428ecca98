package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reports"
)

// ReportsHandler serves the read-only reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// StockBalance handles GET /reports/stock-balance.
func (h *ReportsHandler) StockBalance(c *gin.Context) {
	filter := reports.StockBalanceFilter{
		Search:  c.Query("search"),
		LowOnly: c.Query("lowOnly") == "true",
		Limit:   h.ParseIntQuery(c, "limit", 100),
		Offset:  h.ParseIntQuery(c, "offset", 0),
	}

	rows, err := h.service.GetStockBalance(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	filter := reports.StockBalanceFilter{
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	rows, err := h.service.GetLowStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Turnover handles GET /reports/turnover.
func (h *ReportsHandler) Turnover(c *gin.Context) {
	filter := reports.TurnoverFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("fromDate"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
			return
		}
		filter.FromDate = parsed
	}
	if v := c.Query("toDate"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
			return
		}
		filter.ToDate = parsed
	}
	if v := c.Query("itemId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}

	rows, err := h.service.GetTurnover(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}
