// Package sale provides the Sale document and its posting workflow.
// A sale debits the customer's receivable for the invoice total and credits
// income and tax; payments clear the receivable against cash or bank.
package sale

import (
	"context"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Status is the sale payment lifecycle.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// Line is one invoice line. Prices are snapshots taken at creation time.
type Line struct {
	ID          id.ID          `db:"id" json:"id"`
	SaleID      id.ID          `db:"sale_id" json:"saleId"`
	Description string         `db:"description" json:"description"`
	Qty         types.Quantity `db:"qty" json:"qty"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
	DiscountPct types.Money    `db:"discount_pct" json:"discountPct"`
	TaxPct      types.Money    `db:"tax_pct" json:"taxPct"`
	LineTotal   types.Money    `db:"line_total" json:"lineTotal"`
}

// Sale is a customer invoice.
//
// PaidAmount is denormalized for list views; the ledger's credit entries on
// the customer's AR account are the authoritative record of what was cleared.
// Every write to PaidAmount happens in the same transaction as the posting.
type Sale struct {
	entity.Document

	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Status     Status `db:"status" json:"status"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	Total          types.Money `db:"total" json:"total"`
	PaidAmount     types.Money `db:"paid_amount" json:"paidAmount"`

	Lines []Line `db:"-" json:"lines"`
}

// New creates a pending sale for a customer.
func New(customerID id.ID) *Sale {
	return &Sale{
		Document:       entity.NewDocument(),
		CustomerID:     customerID,
		Status:         StatusPending,
		Subtotal:       types.Zero(),
		DiscountAmount: types.Zero(),
		TaxAmount:      types.Zero(),
		Total:          types.Zero(),
		PaidAmount:     types.Zero(),
	}
}

// DueAmount is always derived, never stored.
func (s *Sale) DueAmount() types.Money {
	return s.Total.Sub(s.PaidAmount)
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale requires at least one line")
	}
	for i, line := range s.Lines {
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price must be non-negative").
				WithDetail("line", i)
		}
		if line.DiscountPct.IsNegative() || line.DiscountPct.GreaterThan(types.MustMoney("100")) {
			return apperror.NewValidation("line discount must be between 0 and 100").
				WithDetail("line", i)
		}
		if line.TaxPct.IsNegative() {
			return apperror.NewValidation("line tax must be non-negative").
				WithDetail("line", i)
		}
	}
	return nil
}

// ComputeTotals derives document amounts from lines.
//
// All intermediate math runs at full precision; rounding happens once on the
// final persisted fields. Total and TaxAmount are rounded independently and
// the income side is later derived as Total - TaxAmount, so postings balance
// exactly even when rounding shaved a cent off one side.
func (s *Sale) ComputeTotals() {
	subtotal := types.Zero()
	discount := types.Zero()
	tax := types.Zero()

	for i := range s.Lines {
		line := &s.Lines[i]
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

	s.Subtotal = types.RoundMoney(subtotal)
	s.DiscountAmount = types.RoundMoney(discount)
	s.TaxAmount = types.RoundMoney(tax)
	s.Total = types.RoundMoney(subtotal.Sub(discount).Add(tax))
}

// ApplyPayment records amount as paid and moves the status.
// Caller has already validated amount against DueAmount. Version and
// updated_at are advanced by the repository on Update, not here.
func (s *Sale) ApplyPayment(amount types.Money) {
	s.PaidAmount = types.RoundMoney(s.PaidAmount.Add(amount))
	if s.PaidAmount.GreaterThanOrEqual(s.Total) {
		s.Status = StatusCompleted
	} else {
		s.Status = StatusPartiallyPaid
	}
}

// CanAcceptPayment reports whether the sale is in a payable state.
func (s *Sale) CanAcceptPayment() error {
	switch s.Status {
	case StatusPending, StatusPartiallyPaid:
		return nil
	case StatusCompleted:
		return apperror.NewInvalidStateTransition("sale", string(s.Status), "paid")
	default:
		return apperror.NewInvalidStateTransition("sale", string(s.Status), "paid")
	}
}

// Cancel marks an unpaid sale cancelled.
func (s *Sale) Cancel() error {
	if s.Status != StatusPending {
		return apperror.NewInvalidStateTransition("sale", string(s.Status), string(StatusCancelled))
	}
	s.Status = StatusCancelled
	return nil
}
