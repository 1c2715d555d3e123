package handlers

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/infrastructure/http/v1/dto"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

// CounterpartyHandler serves the counterparty catalog.
type CounterpartyHandler struct {
	*BaseHandler
	service *counterparty.Service
	audit   *postgres.AuditService
}

// NewCounterpartyHandler creates a new counterparty handler.
func NewCounterpartyHandler(service *counterparty.Service, audit *postgres.AuditService) *CounterpartyHandler {
	return &CounterpartyHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		audit:       audit,
	}
}

// Register mounts the counterparty routes.
func (h *CounterpartyHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/counterparties")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /counterparties.
func (h *CounterpartyHandler) Create(c *gin.Context) {
	var req dto.CreateCounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cp := req.ToCounterparty()
	if err := h.service.Create(c.Request.Context(), cp); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, cp, postgres.AuditActionCreate)
	h.Created(c, dto.FromCounterparty(cp))
}

// GetByID handles GET /counterparties/:id.
func (h *CounterpartyHandler) GetByID(c *gin.Context) {
	cpID, ok := h.PathID(c)
	if !ok {
		return
	}

	cp, err := h.service.GetByID(c.Request.Context(), cpID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterparty(cp))
}

// Update handles PUT /counterparties/:id.
func (h *CounterpartyHandler) Update(c *gin.Context) {
	cpID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.UpdateCounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cp, err := h.service.GetByID(c.Request.Context(), cpID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(cp)
	if err := h.service.Update(c.Request.Context(), cp); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, cp, postgres.AuditActionUpdate)
	h.OK(c, dto.FromCounterparty(cp))
}

// Delete handles DELETE /counterparties/:id (soft delete).
func (h *CounterpartyHandler) Delete(c *gin.Context) {
	cpID, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), cpID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /counterparties.
func (h *CounterpartyHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromCounterparties(result.Items)))
}

// logAudit records the mutation. Audit failures never fail the request.
func (h *CounterpartyHandler) logAudit(c *gin.Context, cp *counterparty.Counterparty, action postgres.AuditAction) {
	ctx := c.Request.Context()
	err := h.audit.LogChange(ctx, "counterparty", cp.ID, action, map[string]any{
		"code":      cp.Code,
		"name":      cp.Name,
		"type":      cp.Type,
		"accountNo": cp.AccountNo,
		"version":   cp.Version,
	})
	if err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", cp.ID, "error", err)
	}
}
