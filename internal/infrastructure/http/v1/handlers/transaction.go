package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/infrastructure/http/v1/dto"
	"stockbook/internal/infrastructure/storage/postgres"
)

// TransactionHandler exposes the transaction engine over HTTP.
type TransactionHandler struct {
	*BaseHandler
	service *ledger.Service
	audit   *postgres.AuditService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *ledger.Service, audit *postgres.AuditService) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service, audit: audit}
}

// Record handles POST /transactions.
func (h *TransactionHandler) Record(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(h.Username(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t)
}

// Get handles GET /transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	t, err := h.service.Get(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// List handles GET /transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	filter := ledger.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("itemId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}
	if v := c.Query("supplierId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}
	if v := c.Query("direction"); v != "" {
		d := ledger.Direction(v)
		if !d.Valid() {
			h.Error(c, apperror.NewValidation("direction must be 'in' or 'out'"))
			return
		}
		filter.Direction = &d
	}
	if v := c.Query("fromDate"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
			return
		}
		filter.FromDate = &parsed
	}
	if v := c.Query("toDate"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
			return
		}
		filter.ToDate = &parsed
	}

	transactions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:  transactions,
		Count:  len(transactions),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Edit handles PUT /transactions/:id.
func (h *TransactionHandler) Edit(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.EditTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(h.Username(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.Edit(c.Request.Context(), txID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Reverse handles POST /transactions/:id/reverse.
func (h *TransactionHandler) Reverse(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	// Reason is optional; an empty body is allowed.
	var req dto.ReverseTransactionRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	rev, err := h.service.Reverse(c.Request.Context(), txID, req.Reason, h.Username(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rev)
}

// UndoReverse handles POST /transactions/:id/undo-reverse.
func (h *TransactionHandler) UndoReverse(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	t, err := h.service.UndoReverse(c.Request.Context(), txID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// AuditHistory handles GET /transactions/:id/audit. Returns who changed the
// movement and how, newest first.
func (h *TransactionHandler) AuditHistory(c *gin.Context) {
	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	entries, err := h.audit.GetEntityHistory(c.Request.Context(), ledger.AuditEntityTransaction, txID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			UserID:    e.UserID,
			Changes:   e.Changes,
			CreatedAt: e.CreatedAt,
		})
	}
	h.OK(c, out)
}

// Balance handles GET /items/:id/balance.
func (h *TransactionHandler) Balance(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalanceResponse{
		ItemID:  itemID.String(),
		Balance: balance.Int64(),
	})
}
