package quotation

import (
	"context"
	"fmt"

	"retailcore/internal/core/id"
	"retailcore/internal/core/sequence"
	"retailcore/internal/core/tx"
	"retailcore/internal/domain"
	"retailcore/internal/domain/documents/sale"
	"retailcore/pkg/logger"
)

// SaleCreator is the slice of the sale workflow conversion needs. The
// conversion variant posts the invoice under the quotation_conversion
// reference.
type SaleCreator interface {
	CreateFromQuotation(ctx context.Context, s *sale.Sale, initialPayment *sale.PaymentInput) error
}

// Service implements the quotation lifecycle and conversion workflow.
type Service struct {
	repo  Repository
	sales SaleCreator
	seq   sequence.Generator
	txm   tx.Manager
}

// NewService creates the quotation workflow service.
func NewService(repo Repository, sales SaleCreator, seq sequence.Generator, txm tx.Manager) *Service {
	return &Service{repo: repo, sales: sales, seq: seq, txm: txm}
}

// Create numbers and persists a draft quotation. No ledger posting happens
// here; a quotation is an offer, not a receivable.
func (s *Service) Create(ctx context.Context, q *Quotation) error {
	q.ComputeTotals()
	if err := q.Validate(ctx); err != nil {
		return err
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if q.Number == "" {
			number, err := s.seq.Next(ctx, sequence.DefaultConfig("QN"), q.Date)
			if err != nil {
				return fmt.Errorf("generate quotation number: %w", err)
			}
			q.Number = number
		}

		if err := s.repo.Create(ctx, q); err != nil {
			return err
		}

		logger.Info(ctx, "quotation created",
			"quotation_id", q.ID,
			"number", q.Number,
			"total", q.Total.String(),
		)
		return nil
	})
}

// Send marks the quotation as sent to the customer.
func (s *Service) Send(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.applyTransition(ctx, quotationID, (*Quotation).Send)
}

// Accept marks the quotation as accepted by the customer.
func (s *Service) Accept(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.applyTransition(ctx, quotationID, (*Quotation).Accept)
}

// Reject declines the quotation.
func (s *Service) Reject(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.applyTransition(ctx, quotationID, (*Quotation).Reject)
}

// Convert turns an accepted quotation into a sale.
//
// The sale copies the quoted line snapshots verbatim; current product prices
// are deliberately not consulted. Sale creation, its invoice posting and the
// quotation's terminal status change share one database transaction, so a
// second Convert call can never observe the quotation as still accepted.
func (s *Service) Convert(ctx context.Context, quotationID id.ID, initialPayment *sale.PaymentInput) (*Quotation, *sale.Sale, error) {
	var (
		q       *Quotation
		created *sale.Sale
	)
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.repo.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}

		created = sale.New(q.CustomerID)
		created.Comment = "converted from quotation " + q.Number
		created.Lines = make([]sale.Line, 0, len(q.Lines))
		for _, line := range q.Lines {
			created.Lines = append(created.Lines, sale.Line{
				ID:          id.New(),
				SaleID:      created.ID,
				Description: line.Description,
				Qty:         line.Qty,
				UnitPrice:   line.UnitPrice,
				DiscountPct: line.DiscountPct,
				TaxPct:      line.TaxPct,
			})
		}

		// Status check happens before the sale is created so a converted
		// or rejected quotation fails fast without touching the ledger.
		if err := q.MarkConverted(created.ID); err != nil {
			return err
		}

		if err := s.sales.CreateFromQuotation(ctx, created, initialPayment); err != nil {
			return err
		}

		return s.repo.Update(ctx, q)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "quotation converted",
		"quotation_id", q.ID,
		"number", q.Number,
		"sale_id", created.ID,
		"sale_number", created.Number,
	)
	return q, created, nil
}

// GetByID loads a quotation.
func (s *Service) GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.repo.GetByID(ctx, quotationID)
}

// List retrieves quotations with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Quotation], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) applyTransition(ctx context.Context, quotationID id.ID, fn func(*Quotation) error) (*Quotation, error) {
	var q *Quotation
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.repo.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := fn(q); err != nil {
			return err
		}
		return s.repo.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}
