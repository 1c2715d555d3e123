package handlers

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/domain/documents/sale"
	"retailcore/internal/infrastructure/http/v1/dto"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

// SaleHandler serves the sale document workflow.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
	audit   *postgres.AuditService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(service *sale.Service, audit *postgres.AuditService) *SaleHandler {
	return &SaleHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		audit:       audit,
	}
}

// Register mounts the sale routes.
func (h *SaleHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/sales")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/payments", h.RecordPayment)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/history", h.History)
}

// Create handles POST /sales. The invoice is posted to the ledger and the
// document persisted atomically; an optional payment clears part of the
// receivable in the same transaction.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sl, err := req.ToSale()
	if err != nil {
		h.Error(c, err)
		return
	}

	var payment *sale.PaymentInput
	if req.Payment != nil {
		in := req.Payment.ToInput()
		payment = &in
	}

	if err := h.service.Create(c.Request.Context(), sl, payment); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, sl, postgres.AuditActionCreate)
	h.Created(c, dto.FromSale(sl))
}

// GetByID handles GET /sales/:id.
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	sl, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sl))
}

// RecordPayment handles POST /sales/:id/payments.
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sl, err := h.service.RecordPayment(c.Request.Context(), saleID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, sl, postgres.AuditActionPayment)
	h.OK(c, dto.FromSale(sl))
}

// Cancel handles POST /sales/:id/cancel. Only unpaid sales can be cancelled;
// the invoice posting is reversed, never deleted.
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	sl, err := h.service.Cancel(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, sl, postgres.AuditActionCancel)
	h.OK(c, dto.FromSale(sl))
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromSales(result.Items)))
}

// History handles GET /sales/:id/history.
func (h *SaleHandler) History(c *gin.Context) {
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "sale", saleID, 100)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAuditEntries(entries))
}

func (h *SaleHandler) logAudit(c *gin.Context, sl *sale.Sale, action postgres.AuditAction) {
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "sale", sl.ID, action, map[string]any{
		"number":     sl.Number,
		"status":     sl.Status,
		"total":      sl.Total.String(),
		"paidAmount": sl.PaidAmount.String(),
		"version":    sl.Version,
	})
	if err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", sl.ID, "error", err)
	}
}
