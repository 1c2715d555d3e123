package purchase

import (
	"context"
	"fmt"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/sequence"
	"retailcore/internal/core/tx"
	"retailcore/internal/core/types"
	"retailcore/internal/domain"
	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/domain/ledger"
	"retailcore/pkg/logger"
)

// SupplierLookup resolves the purchase's counterparty.
type SupplierLookup interface {
	GetByID(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error)
}

// PaymentInput describes a supplier payment leg.
type PaymentInput struct {
	Amount      types.Money
	Method      string
	AccountCode string
}

// Service implements the purchase posting workflow.
type Service struct {
	repo       Repository
	suppliers  SupplierLookup
	engine     *ledger.Engine
	directory  *ledger.Directory
	ledgerRepo ledger.Repository
	seq        sequence.Generator
	txm        tx.Manager
}

// NewService creates the purchase workflow service.
func NewService(
	repo Repository,
	suppliers SupplierLookup,
	engine *ledger.Engine,
	directory *ledger.Directory,
	ledgerRepo ledger.Repository,
	seq sequence.Generator,
	txm tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		suppliers:  suppliers,
		engine:     engine,
		directory:  directory,
		ledgerRepo: ledgerRepo,
		seq:        seq,
		txm:        txm,
	}
}

// Create numbers the purchase, posts the bill on credit and persists the
// document as one atomic unit. The supplier's payable sub-account is created
// on first use.
func (s *Service) Create(ctx context.Context, p *Purchase) error {
	p.ComputeTotals()
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if !p.Total.IsPositive() {
		return apperror.NewValidation("purchase total must be positive")
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		supplier, err := s.suppliers.GetByID(ctx, p.SupplierID)
		if err != nil {
			return err
		}
		if !supplier.IsSupplier() {
			return apperror.NewValidation("counterparty is not a supplier").
				WithDetail("counterparty_id", supplier.ID)
		}

		if p.Number == "" {
			number, err := s.seq.Next(ctx, sequence.DefaultConfig("PO"), p.Date)
			if err != nil {
				return fmt.Errorf("generate purchase number: %w", err)
			}
			p.Number = number
		}

		apAccount, err := s.directory.GetOrCreate(ctx,
			ledger.KindSupplierPayable, supplier.AccountNo, supplier.Name)
		if err != nil {
			return err
		}

		_, err = s.engine.Post(ctx,
			ledger.NewReference(ledger.ReferencePurchase, p.ID),
			[]ledger.Line{
				ledger.DebitLine(ledger.CodePurchases, p.Total, "bill "+p.Number),
				ledger.CreditLine(apAccount.Code, p.Total, "bill "+p.Number),
			})
		if err != nil {
			return err
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		logger.Info(ctx, "purchase created",
			"purchase_id", p.ID,
			"number", p.Number,
			"total", p.Total.String(),
		)
		return nil
	})
}

// RecordPayment settles part of the supplier's payable.
//
// The amount already settled is derived from the ledger's debit entries on
// the AP account scoped to this purchase, realigning PaidAmount if the
// denormalized field drifted. Overpayment is rejected, never clamped.
func (s *Service) RecordPayment(ctx context.Context, purchaseID id.ID, in PaymentInput) (*Purchase, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive")
	}

	var result *Purchase
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := p.CanAcceptPayment(); err != nil {
			return err
		}

		supplier, err := s.suppliers.GetByID(ctx, p.SupplierID)
		if err != nil {
			return err
		}
		apAccount, err := s.directory.GetOrCreate(ctx,
			ledger.KindSupplierPayable, supplier.AccountNo, supplier.Name)
		if err != nil {
			return err
		}

		settled, err := s.ledgerRepo.DebitedForReference(ctx, apAccount.Code,
			[]ledger.ReferenceType{ledger.ReferenceSupplierPayment}, p.ID)
		if err != nil {
			return err
		}
		if !settled.Equal(p.PaidAmount) {
			logger.Warn(ctx, "purchase paid amount diverged from ledger, realigning",
				"purchase_id", p.ID,
				"paid_amount", p.PaidAmount.String(),
				"ledger_settled", settled.String(),
			)
			p.PaidAmount = settled
		}

		outstanding := p.Total.Sub(settled)
		if in.Amount.GreaterThan(outstanding) {
			return apperror.NewAmountExceedsOutstanding(in.Amount.String(), outstanding.String())
		}

		payAccount, err := s.directory.ResolvePaymentAccount(ctx, in.Method, in.AccountCode)
		if err != nil {
			return err
		}

		_, err = s.engine.Post(ctx,
			ledger.NewReference(ledger.ReferenceSupplierPayment, p.ID),
			[]ledger.Line{
				ledger.DebitLine(apAccount.Code, in.Amount, "payment for "+p.Number),
				ledger.CreditLine(payAccount.Code, in.Amount, "payment for "+p.Number),
			})
		if err != nil {
			return err
		}

		p.ApplyPayment(in.Amount)
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplier payment recorded",
		"purchase_id", result.ID,
		"paid", result.PaidAmount.String(),
		"due", result.DueAmount().String(),
		"status", string(result.Status),
	)
	return result, nil
}

// GetByID loads a purchase.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// Cancel cancels an unpaid purchase and reverses its bill posting.
func (s *Service) Cancel(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	var result *Purchase
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := p.Cancel(); err != nil {
			return err
		}

		txns, err := s.ledgerRepo.ListByReference(ctx,
			ledger.NewReference(ledger.ReferencePurchase, p.ID))
		if err != nil {
			return err
		}
		for _, txn := range txns {
			if _, err := s.engine.Reverse(ctx, txn.ID, "purchase "+p.Number+" cancelled"); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List retrieves purchases with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Purchase], error) {
	return s.repo.List(ctx, filter)
}
