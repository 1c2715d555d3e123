// Package purchase provides the Purchase document and its payment workflow.
// A purchase on credit credits the supplier's payable; payments debit it
// against cash or bank.
package purchase

import (
	"context"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Status is the purchase payment lifecycle.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// Line is one purchase line, a cost snapshot at receipt time.
type Line struct {
	ID          id.ID          `db:"id" json:"id"`
	PurchaseID  id.ID          `db:"purchase_id" json:"purchaseId"`
	Description string         `db:"description" json:"description"`
	Qty         types.Quantity `db:"qty" json:"qty"`
	UnitCost    types.Money    `db:"unit_cost" json:"unitCost"`
	LineTotal   types.Money    `db:"line_total" json:"lineTotal"`
}

// Purchase is a supplier bill.
//
// PaidAmount is denormalized for list views; the debit entries on the
// supplier's AP account are authoritative for what was settled.
type Purchase struct {
	entity.Document

	SupplierID id.ID  `db:"supplier_id" json:"supplierId"`
	Status     Status `db:"status" json:"status"`

	Total      types.Money `db:"total" json:"total"`
	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`

	Lines []Line `db:"-" json:"lines"`
}

// New creates a pending purchase for a supplier.
func New(supplierID id.ID) *Purchase {
	return &Purchase{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
		Status:     StatusPending,
		Total:      types.Zero(),
		PaidAmount: types.Zero(),
	}
}

// DueAmount is always derived, never stored.
func (p *Purchase) DueAmount() types.Money {
	return p.Total.Sub(p.PaidAmount)
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(p.Lines) == 0 {
		return apperror.NewValidation("purchase requires at least one line")
	}
	for i, line := range p.Lines {
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("line cost must be non-negative").
				WithDetail("line", i)
		}
	}
	return nil
}

// ComputeTotals derives the document total from lines.
// Full precision until the final rounding.
func (p *Purchase) ComputeTotals() {
	total := types.Zero()
	for i := range p.Lines {
		line := &p.Lines[i]
		qty := types.NewMoney(line.Qty.Float64())
		net := qty.Mul(line.UnitCost)
		total = total.Add(net)
		line.LineTotal = types.RoundMoney(net)
	}
	p.Total = types.RoundMoney(total)
}

// ApplyPayment records amount as paid and moves the status.
// Caller has already validated amount against DueAmount. Version and
// updated_at are advanced by the repository on Update, not here.
func (p *Purchase) ApplyPayment(amount types.Money) {
	p.PaidAmount = types.RoundMoney(p.PaidAmount.Add(amount))
	if p.PaidAmount.GreaterThanOrEqual(p.Total) {
		p.Status = StatusCompleted
	} else {
		p.Status = StatusPartiallyPaid
	}
}

// CanAcceptPayment reports whether the purchase is in a payable state.
func (p *Purchase) CanAcceptPayment() error {
	switch p.Status {
	case StatusPending, StatusPartiallyPaid:
		return nil
	default:
		return apperror.NewInvalidStateTransition("purchase", string(p.Status), "paid")
	}
}

// Cancel marks an unpaid purchase cancelled.
func (p *Purchase) Cancel() error {
	if p.Status != StatusPending {
		return apperror.NewInvalidStateTransition("purchase", string(p.Status), string(StatusCancelled))
	}
	p.Status = StatusCancelled
	return nil
}
