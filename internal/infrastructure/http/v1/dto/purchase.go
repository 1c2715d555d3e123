package dto

import (
	"time"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/documents/purchase"
)

// PurchaseLineRequest is one bill line in a create request.
type PurchaseLineRequest struct {
	Description string         `json:"description" binding:"required"`
	Qty         types.Quantity `json:"qty"`
	UnitCost    types.Money    `json:"unitCost"`
}

// CreatePurchaseRequest creates a purchase on credit.
type CreatePurchaseRequest struct {
	SupplierID string                `json:"supplierId" binding:"required,uuid"`
	Date       *time.Time            `json:"date"`
	Comment    string                `json:"comment"`
	Lines      []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToPurchase builds the domain document. Totals are computed by the service.
func (r CreatePurchaseRequest) ToPurchase() (*purchase.Purchase, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, err
	}

	p := purchase.New(supplierID)
	if r.Date != nil {
		p.Date = r.Date.UTC()
	}
	p.Comment = r.Comment
	p.Lines = make([]purchase.Line, 0, len(r.Lines))
	for _, line := range r.Lines {
		p.Lines = append(p.Lines, purchase.Line{
			ID:          id.New(),
			PurchaseID:  p.ID,
			Description: line.Description,
			Qty:         line.Qty,
			UnitCost:    line.UnitCost,
		})
	}
	return p, nil
}

// ToPaymentInput converts the shared payment request to the purchase input.
func (r PaymentRequest) ToPaymentInput() purchase.PaymentInput {
	return purchase.PaymentInput{
		Amount:      r.Amount,
		Method:      r.Method,
		AccountCode: r.AccountCode,
	}
}

// PurchaseLineResponse is one bill line.
type PurchaseLineResponse struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Qty         types.Quantity `json:"qty"`
	UnitCost    types.Money    `json:"unitCost"`
	LineTotal   types.Money    `json:"lineTotal"`
}

// PurchaseResponse contains purchase fields.
type PurchaseResponse struct {
	ID         string                 `json:"id"`
	Number     string                 `json:"number"`
	Date       time.Time              `json:"date"`
	SupplierID string                 `json:"supplierId"`
	Status     string                 `json:"status"`
	Total      types.Money            `json:"total"`
	PaidAmount types.Money            `json:"paidAmount"`
	DueAmount  types.Money            `json:"dueAmount"`
	Comment    string                 `json:"comment,omitempty"`
	Version    int                    `json:"version"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	Lines      []PurchaseLineResponse `json:"lines,omitempty"`
}

// FromPurchase maps the domain document to the response.
func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	lines := make([]PurchaseLineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, PurchaseLineResponse{
			ID:          line.ID.String(),
			Description: line.Description,
			Qty:         line.Qty,
			UnitCost:    line.UnitCost,
			LineTotal:   line.LineTotal,
		})
	}
	return PurchaseResponse{
		ID:         p.ID.String(),
		Number:     p.Number,
		Date:       p.Date,
		SupplierID: p.SupplierID.String(),
		Status:     string(p.Status),
		Total:      p.Total,
		PaidAmount: p.PaidAmount,
		DueAmount:  p.DueAmount(),
		Comment:    p.Comment,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Lines:      lines,
	}
}

// FromPurchases maps a slice for list responses. Lines are omitted in lists.
func FromPurchases(items []*purchase.Purchase) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(items))
	for _, p := range items {
		resp := FromPurchase(p)
		resp.Lines = nil
		out = append(out, resp)
	}
	return out
}
