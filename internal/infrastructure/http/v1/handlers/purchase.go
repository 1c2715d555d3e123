package handlers

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/domain/documents/purchase"
	"retailcore/internal/infrastructure/http/v1/dto"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

// PurchaseHandler serves the purchase document workflow.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	audit   *postgres.AuditService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(service *purchase.Service, audit *postgres.AuditService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		audit:       audit,
	}
}

// Register mounts the purchase routes.
func (h *PurchaseHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/purchases")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/payments", h.RecordPayment)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/history", h.History)
}

// Create handles POST /purchases. The bill on credit is posted to the ledger
// and the document persisted atomically.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToPurchase()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionCreate)
	h.Created(c, dto.FromPurchase(p))
}

// GetByID handles GET /purchases/:id.
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPurchase(p))
}

// RecordPayment handles POST /purchases/:id/payments.
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), purchaseID, req.ToPaymentInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionPayment)
	h.OK(c, dto.FromPurchase(p))
}

// Cancel handles POST /purchases/:id/cancel.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	p, err := h.service.Cancel(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, p, postgres.AuditActionCancel)
	h.OK(c, dto.FromPurchase(p))
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromPurchases(result.Items)))
}

// History handles GET /purchases/:id/history.
func (h *PurchaseHandler) History(c *gin.Context) {
	purchaseID, ok := h.PathID(c)
	if !ok {
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "purchase", purchaseID, 100)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAuditEntries(entries))
}

func (h *PurchaseHandler) logAudit(c *gin.Context, p *purchase.Purchase, action postgres.AuditAction) {
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "purchase", p.ID, action, map[string]any{
		"number":     p.Number,
		"status":     p.Status,
		"total":      p.Total.String(),
		"paidAmount": p.PaidAmount.String(),
		"version":    p.Version,
	})
	if err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", p.ID, "error", err)
	}
}
