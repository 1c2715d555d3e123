package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"retailcore/internal/core/id"
	"retailcore/internal/domain/documents/quotation"
	"retailcore/internal/domain/documents/sale"
	"retailcore/internal/infrastructure/http/v1/dto"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

// QuotationHandler serves the quotation lifecycle and conversion.
type QuotationHandler struct {
	*BaseHandler
	service *quotation.Service
	audit   *postgres.AuditService
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(service *quotation.Service, audit *postgres.AuditService) *QuotationHandler {
	return &QuotationHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		audit:       audit,
	}
}

// Register mounts the quotation routes.
func (h *QuotationHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/quotations")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/send", h.Send)
	g.POST("/:id/accept", h.Accept)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/convert", h.Convert)
	g.GET("/:id/history", h.History)
}

// Create handles POST /quotations. Quotations never touch the ledger.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := req.ToQuotation()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), q); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, q, postgres.AuditActionCreate)
	h.Created(c, dto.FromQuotation(q))
}

// GetByID handles GET /quotations/:id.
func (h *QuotationHandler) GetByID(c *gin.Context) {
	quotationID, ok := h.PathID(c)
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromQuotation(q))
}

// Send handles POST /quotations/:id/send.
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.service.Send)
}

// Accept handles POST /quotations/:id/accept.
func (h *QuotationHandler) Accept(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

// Reject handles POST /quotations/:id/reject.
func (h *QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// Convert handles POST /quotations/:id/convert. An accepted quotation becomes
// a sale with prices copied as quoted; the quotation is marked converted and
// the sale posted, all in one transaction.
func (h *QuotationHandler) Convert(c *gin.Context) {
	quotationID, ok := h.PathID(c)
	if !ok {
		return
	}

	// Body is optional; conversion without an immediate payment posts the
	// full receivable.
	var req dto.ConvertQuotationRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	var payment *sale.PaymentInput
	if req.Payment != nil {
		in := req.Payment.ToInput()
		payment = &in
	}

	q, sl, err := h.service.Convert(c.Request.Context(), quotationID, payment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, q, postgres.AuditActionConvert)
	h.OK(c, dto.ConvertQuotationResponse{
		Quotation: dto.FromQuotation(q),
		Sale:      dto.FromSale(sl),
	})
}

// List handles GET /quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromQuotations(result.Items)))
}

// History handles GET /quotations/:id/history.
func (h *QuotationHandler) History(c *gin.Context) {
	quotationID, ok := h.PathID(c)
	if !ok {
		return
	}

	entries, err := h.audit.GetEntityHistory(c.Request.Context(), "quotation", quotationID, 100)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAuditEntries(entries))
}

// transition applies one status change endpoint.
func (h *QuotationHandler) transition(c *gin.Context, fn func(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error)) {
	quotationID, ok := h.PathID(c)
	if !ok {
		return
	}

	q, err := fn(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, q, postgres.AuditActionUpdate)
	h.OK(c, dto.FromQuotation(q))
}

func (h *QuotationHandler) logAudit(c *gin.Context, q *quotation.Quotation, action postgres.AuditAction) {
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "quotation", q.ID, action, map[string]any{
		"number":  q.Number,
		"status":  q.Status,
		"total":   q.Total.String(),
		"version": q.Version,
	})
	if err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", q.ID, "error", err)
	}
}
