package dto

import (
	"time"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/documents/quotation"
)

// QuotationLineRequest is one quoted line in a create request.
type QuotationLineRequest struct {
	Description string         `json:"description" binding:"required"`
	Qty         types.Quantity `json:"qty"`
	UnitPrice   types.Money    `json:"unitPrice"`
	DiscountPct types.Money    `json:"discountPct"`
	TaxPct      types.Money    `json:"taxPct"`
}

// CreateQuotationRequest creates a draft quotation.
type CreateQuotationRequest struct {
	CustomerID string                 `json:"customerId" binding:"required,uuid"`
	Date       *time.Time             `json:"date"`
	Comment    string                 `json:"comment"`
	Lines      []QuotationLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToQuotation builds the domain document. Totals are computed by the service.
func (r CreateQuotationRequest) ToQuotation() (*quotation.Quotation, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, err
	}

	q := quotation.New(customerID)
	if r.Date != nil {
		q.Date = r.Date.UTC()
	}
	q.Comment = r.Comment
	q.Lines = make([]quotation.Line, 0, len(r.Lines))
	for _, line := range r.Lines {
		q.Lines = append(q.Lines, quotation.Line{
			ID:          id.New(),
			QuotationID: q.ID,
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
		})
	}
	return q, nil
}

// ConvertQuotationRequest converts an accepted quotation into a sale,
// optionally clearing part of the new receivable immediately.
type ConvertQuotationRequest struct {
	Payment *PaymentRequest `json:"payment"`
}

// QuotationLineResponse is one quoted line.
type QuotationLineResponse struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Qty         types.Quantity `json:"qty"`
	UnitPrice   types.Money    `json:"unitPrice"`
	DiscountPct types.Money    `json:"discountPct"`
	TaxPct      types.Money    `json:"taxPct"`
	LineTotal   types.Money    `json:"lineTotal"`
}

// QuotationResponse contains quotation fields. SaleID is set once converted.
type QuotationResponse struct {
	ID             string                  `json:"id"`
	Number         string                  `json:"number"`
	Date           time.Time               `json:"date"`
	CustomerID     string                  `json:"customerId"`
	Status         string                  `json:"status"`
	Subtotal       types.Money             `json:"subtotal"`
	DiscountAmount types.Money             `json:"discountAmount"`
	TaxAmount      types.Money             `json:"taxAmount"`
	Total          types.Money             `json:"total"`
	SaleID         *string                 `json:"saleId,omitempty"`
	Comment        string                  `json:"comment,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
	Lines          []QuotationLineResponse `json:"lines,omitempty"`
}

// FromQuotation maps the domain document to the response.
func FromQuotation(q *quotation.Quotation) QuotationResponse {
	lines := make([]QuotationLineResponse, 0, len(q.Lines))
	for _, line := range q.Lines {
		lines = append(lines, QuotationLineResponse{
			ID:          line.ID.String(),
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
			LineTotal:   line.LineTotal,
		})
	}

	var saleID *string
	if q.SaleID != nil {
		s := q.SaleID.String()
		saleID = &s
	}

	return QuotationResponse{
		ID:             q.ID.String(),
		Number:         q.Number,
		Date:           q.Date,
		CustomerID:     q.CustomerID.String(),
		Status:         string(q.Status),
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		TaxAmount:      q.TaxAmount,
		Total:          q.Total,
		SaleID:         saleID,
		Comment:        q.Comment,
		Version:        q.Version,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
		Lines:          lines,
	}
}

// ConvertQuotationResponse carries both sides of a conversion.
type ConvertQuotationResponse struct {
	Quotation QuotationResponse `json:"quotation"`
	Sale      SaleResponse      `json:"sale"`
}

// FromQuotations maps a slice for list responses. Lines are omitted in lists.
func FromQuotations(items []*quotation.Quotation) []QuotationResponse {
	out := make([]QuotationResponse, 0, len(items))
	for _, q := range items {
		resp := FromQuotation(q)
		resp.Lines = nil
		out = append(out, resp)
	}
	return out
}
