package dto

import (
	"time"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/documents/sale"
)

// PaymentRequest describes one payment leg. AccountCode overrides the
// method's default account when set.
type PaymentRequest struct {
	Amount      types.Money `json:"amount"`
	Method      string      `json:"method" binding:"required,oneof=cash bank mobile"`
	AccountCode string      `json:"accountCode"`
}

// ToInput converts to the sale workflow input.
func (r PaymentRequest) ToInput() sale.PaymentInput {
	return sale.PaymentInput{
		Amount:      r.Amount,
		Method:      r.Method,
		AccountCode: r.AccountCode,
	}
}

// SaleLineRequest is one invoice line in a create request.
type SaleLineRequest struct {
	Description string         `json:"description" binding:"required"`
	Qty         types.Quantity `json:"qty"`
	UnitPrice   types.Money    `json:"unitPrice"`
	DiscountPct types.Money    `json:"discountPct"`
	TaxPct      types.Money    `json:"taxPct"`
}

// CreateSaleRequest creates a sale, optionally with an immediate payment.
type CreateSaleRequest struct {
	CustomerID string            `json:"customerId" binding:"required,uuid"`
	Date       *time.Time        `json:"date"`
	Comment    string            `json:"comment"`
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	Payment    *PaymentRequest   `json:"payment"`
}

// ToSale builds the domain document. Totals are computed by the service.
func (r CreateSaleRequest) ToSale() (*sale.Sale, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, err
	}

	sl := sale.New(customerID)
	if r.Date != nil {
		sl.Date = r.Date.UTC()
	}
	sl.Comment = r.Comment
	sl.Lines = make([]sale.Line, 0, len(r.Lines))
	for _, line := range r.Lines {
		sl.Lines = append(sl.Lines, sale.Line{
			ID:          id.New(),
			SaleID:      sl.ID,
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
		})
	}
	return sl, nil
}

// SaleLineResponse is one invoice line.
type SaleLineResponse struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Qty         types.Quantity `json:"qty"`
	UnitPrice   types.Money    `json:"unitPrice"`
	DiscountPct types.Money    `json:"discountPct"`
	TaxPct      types.Money    `json:"taxPct"`
	LineTotal   types.Money    `json:"lineTotal"`
}

// SaleResponse contains sale fields. DueAmount is derived, never stored.
type SaleResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	Date           time.Time          `json:"date"`
	CustomerID     string             `json:"customerId"`
	Status         string             `json:"status"`
	Subtotal       types.Money        `json:"subtotal"`
	DiscountAmount types.Money        `json:"discountAmount"`
	TaxAmount      types.Money        `json:"taxAmount"`
	Total          types.Money        `json:"total"`
	PaidAmount     types.Money        `json:"paidAmount"`
	DueAmount      types.Money        `json:"dueAmount"`
	Comment        string             `json:"comment,omitempty"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	Lines          []SaleLineResponse `json:"lines,omitempty"`
}

// FromSale maps the domain document to the response.
func FromSale(sl *sale.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(sl.Lines))
	for _, line := range sl.Lines {
		lines = append(lines, SaleLineResponse{
			ID:          line.ID.String(),
			Description: line.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			DiscountPct: line.DiscountPct,
			TaxPct:      line.TaxPct,
			LineTotal:   line.LineTotal,
		})
	}
	return SaleResponse{
		ID:             sl.ID.String(),
		Number:         sl.Number,
		Date:           sl.Date,
		CustomerID:     sl.CustomerID.String(),
		Status:         string(sl.Status),
		Subtotal:       sl.Subtotal,
		DiscountAmount: sl.DiscountAmount,
		TaxAmount:      sl.TaxAmount,
		Total:          sl.Total,
		PaidAmount:     sl.PaidAmount,
		DueAmount:      sl.DueAmount(),
		Comment:        sl.Comment,
		Version:        sl.Version,
		CreatedAt:      sl.CreatedAt,
		UpdatedAt:      sl.UpdatedAt,
		Lines:          lines,
	}
}

// FromSales maps a slice for list responses. Lines are omitted in lists.
func FromSales(items []*sale.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(items))
	for _, sl := range items {
		resp := FromSale(sl)
		resp.Lines = nil
		out = append(out, resp)
	}
	return out
}
