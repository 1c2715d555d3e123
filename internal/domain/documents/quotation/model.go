// Package quotation provides the Quotation document and its conversion
// workflow. Quotations never touch the ledger themselves; money only moves
// when an accepted quotation is converted into a sale.
package quotation

import (
	"context"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Status is the quotation lifecycle. Converted is terminal and one-way.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusConverted Status = "converted"
)

// Line is one quoted line. Prices are frozen at quote time; conversion
// copies them as-is rather than re-deriving from current product prices.
type Line struct {
	ID          id.ID          `db:"id" json:"id"`
	QuotationID id.ID          `db:"quotation_id" json:"quotationId"`
	Description string         `db:"description" json:"description"`
	Qty         types.Quantity `db:"qty" json:"qty"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
	DiscountPct types.Money    `db:"discount_pct" json:"discountPct"`
	TaxPct      types.Money    `db:"tax_pct" json:"taxPct"`
	LineTotal   types.Money    `db:"line_total" json:"lineTotal"`
}

// Quotation is a priced offer to a customer.
type Quotation struct {
	entity.Document

	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Status     Status `db:"status" json:"status"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	Total          types.Money `db:"total" json:"total"`

	// SaleID links to the sale produced by conversion.
	SaleID *id.ID `db:"sale_id" json:"saleId,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// New creates a draft quotation for a customer.
func New(customerID id.ID) *Quotation {
	return &Quotation{
		Document:       entity.NewDocument(),
		CustomerID:     customerID,
		Status:         StatusDraft,
		Subtotal:       types.Zero(),
		DiscountAmount: types.Zero(),
		TaxAmount:      types.Zero(),
		Total:          types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(q.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if len(q.Lines) == 0 {
		return apperror.NewValidation("quotation requires at least one line")
	}
	for i, line := range q.Lines {
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price must be non-negative").
				WithDetail("line", i)
		}
	}
	return nil
}

// ComputeTotals derives document amounts from lines, deferring rounding to
// the final persisted values.
func (q *Quotation) ComputeTotals() {
	subtotal := types.Zero()
	discount := types.Zero()
	tax := types.Zero()

	for i := range q.Lines {
		line := &q.Lines[i]
		qty := types.NewMoney(line.Qty.Float64())
		gross := qty.Mul(line.UnitPrice)
		lineDiscount := gross.Mul(line.DiscountPct).Div(types.MustMoney("100"))
		net := gross.Sub(lineDiscount)
		lineTax := types.TaxFromNet(net, line.TaxPct)

		subtotal = subtotal.Add(gross)
		discount = discount.Add(lineDiscount)
		tax = tax.Add(lineTax)
		line.LineTotal = types.RoundMoney(net.Add(lineTax))
	}

	q.Subtotal = types.RoundMoney(subtotal)
	q.DiscountAmount = types.RoundMoney(discount)
	q.TaxAmount = types.RoundMoney(tax)
	q.Total = types.RoundMoney(subtotal.Sub(discount).Add(tax))
}

// transition validates and applies a status change. Version and updated_at
// are advanced by the repository on Update, not here.
func (q *Quotation) transition(allowed []Status, to Status) error {
	for _, from := range allowed {
		if q.Status == from {
			q.Status = to
			return nil
		}
	}
	return apperror.NewInvalidStateTransition("quotation", string(q.Status), string(to))
}

// Send moves draft to sent.
func (q *Quotation) Send() error {
	return q.transition([]Status{StatusDraft}, StatusSent)
}

// Accept moves sent to accepted.
func (q *Quotation) Accept() error {
	return q.transition([]Status{StatusSent}, StatusAccepted)
}

// Reject declines a draft or sent quotation.
func (q *Quotation) Reject() error {
	return q.transition([]Status{StatusDraft, StatusSent}, StatusRejected)
}

// MarkConverted finalizes conversion. Only accepted quotations convert, and
// only once.
func (q *Quotation) MarkConverted(saleID id.ID) error {
	if err := q.transition([]Status{StatusAccepted}, StatusConverted); err != nil {
		return err
	}
	q.SaleID = &saleID
	return nil
}
