package sale

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

// CustomerLookup resolves the sale's counterparty.
type CustomerLookup interface {
	GetByID(ctx context.Context, cpID id.ID) (*counterparty.Counterparty, error)
}

// PaymentInput describes a payment leg: how much and through which account.
// AccountCode, when set, overrides the method's default account and is
// validated against the directory.
type PaymentInput struct {
	Amount      types.Money
	Method      string
	AccountCode string
}

// Service implements the sale posting workflow.
//
// Every state transition that changes money owed co-occurs with exactly one
// ledger posting, inside one database transaction with the document write.
type Service struct {
	repo       Repository
	customers  CustomerLookup
	engine     *ledger.Engine
	directory  *ledger.Directory
	ledgerRepo ledger.Repository
	seq        sequence.Generator
	txm        tx.Manager
}

// NewService creates the sale workflow service.
func NewService(
	repo Repository,
	customers CustomerLookup,
	engine *ledger.Engine,
	directory *ledger.Directory,
	ledgerRepo ledger.Repository,
	seq sequence.Generator,
	txm tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		customers:  customers,
		engine:     engine,
		directory:  directory,
		ledgerRepo: ledgerRepo,
		seq:        seq,
		txm:        txm,
	}
}

// Create numbers the sale, posts the invoice to the ledger and persists the
// document, optionally clearing part of the receivable with an immediate
// payment. Everything commits or rolls back as one unit.
func (s *Service) Create(ctx context.Context, sl *Sale, initialPayment *PaymentInput) error {
	return s.create(ctx, sl, initialPayment, ledger.ReferenceSale)
}

// CreateFromQuotation is Create for conversion-originated sales: the invoice
// posting carries the quotation_conversion reference so it stays traceable to
// the conversion in the ledger.
func (s *Service) CreateFromQuotation(ctx context.Context, sl *Sale, initialPayment *PaymentInput) error {
	return s.create(ctx, sl, initialPayment, ledger.ReferenceQuotationConversion)
}

func (s *Service) create(ctx context.Context, sl *Sale, initialPayment *PaymentInput, invoiceRef ledger.ReferenceType) error {
	sl.ComputeTotals()
	if err := sl.Validate(ctx); err != nil {
		return err
	}
	if sl.Total.IsNegative() || sl.Total.IsZero() {
		return apperror.NewValidation("sale total must be positive")
	}
	if initialPayment != nil {
		if !initialPayment.Amount.IsPositive() {
			return apperror.NewValidation("payment amount must be positive")
		}
		if initialPayment.Amount.GreaterThan(sl.Total) {
			return apperror.NewAmountExceedsOutstanding(
				initialPayment.Amount.String(), sl.Total.String())
		}
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.GetByID(ctx, sl.CustomerID)
		if err != nil {
			return err
		}
		if !customer.IsCustomer() {
			return apperror.NewValidation("counterparty is not a customer").
				WithDetail("counterparty_id", customer.ID)
		}

		if sl.Number == "" {
			number, err := s.seq.Next(ctx, sequence.DailyConfig("INV"), sl.Date)
			if err != nil {
				return fmt.Errorf("generate invoice number: %w", err)
			}
			sl.Number = number
		}

		arAccount, err := s.directory.GetOrCreate(ctx,
			ledger.KindCustomerReceivable, customer.AccountNo, customer.Name)
		if err != nil {
			return err
		}

		// Income is derived from the rounded total and tax so the posting
		// balances exactly.
		income := sl.Total.Sub(sl.TaxAmount)
		lines := []ledger.Line{
			ledger.DebitLine(arAccount.Code, sl.Total, "invoice "+sl.Number),
			ledger.CreditLine(ledger.CodeSalesIncome, income, "invoice "+sl.Number),
		}
		if sl.TaxAmount.IsPositive() {
			lines = append(lines,
				ledger.CreditLine(ledger.CodeTaxPayable, sl.TaxAmount, "tax on "+sl.Number))
		}
		if _, err := s.engine.Post(ctx, ledger.NewReference(invoiceRef, sl.ID), lines); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, sl); err != nil {
			return err
		}

		if initialPayment != nil {
			if err := s.clearReceivable(ctx, sl, arAccount, *initialPayment); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, sl); err != nil {
				return err
			}
		}

		logger.Info(ctx, "sale created",
			"sale_id", sl.ID,
			"number", sl.Number,
			"total", sl.Total.String(),
			"paid", sl.PaidAmount.String(),
		)
		return nil
	})
}

// RecordPayment clears part of the sale's receivable.
//
// The ledger is the authoritative record of what was already cleared: before
// posting, the credit entries on the customer's AR account scoped to this
// sale are summed, and the document's denormalized PaidAmount is realigned if
// it drifted. A sale created with an immediate payment therefore can never be
// cleared twice by a later payment call.
func (s *Service) RecordPayment(ctx context.Context, saleID id.ID, in PaymentInput) (*Sale, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive")
	}

	var result *Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := sl.CanAcceptPayment(); err != nil {
			return err
		}

		customer, err := s.customers.GetByID(ctx, sl.CustomerID)
		if err != nil {
			return err
		}
		arAccount, err := s.directory.GetOrCreate(ctx,
			ledger.KindCustomerReceivable, customer.AccountNo, customer.Name)
		if err != nil {
			return err
		}

		cleared, err := s.ledgerRepo.CreditedForReference(ctx, arAccount.Code,
			[]ledger.ReferenceType{ledger.ReferenceSale, ledger.ReferenceSalePayment}, sl.ID)
		if err != nil {
			return err
		}
		if !cleared.Equal(sl.PaidAmount) {
			logger.Warn(ctx, "sale paid amount diverged from ledger, realigning",
				"sale_id", sl.ID,
				"paid_amount", sl.PaidAmount.String(),
				"ledger_cleared", cleared.String(),
			)
			sl.PaidAmount = cleared
		}

		outstanding := sl.Total.Sub(cleared)
		if in.Amount.GreaterThan(outstanding) {
			return apperror.NewAmountExceedsOutstanding(in.Amount.String(), outstanding.String())
		}

		if err := s.clearReceivable(ctx, sl, arAccount, in); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, sl); err != nil {
			return err
		}

		result = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale payment recorded",
		"sale_id", result.ID,
		"paid", result.PaidAmount.String(),
		"due", result.DueAmount().String(),
		"status", string(result.Status),
	)
	return result, nil
}

// clearReceivable posts one payment leg and applies it to the document.
func (s *Service) clearReceivable(ctx context.Context, sl *Sale, arAccount *ledger.Account, in PaymentInput) error {
	payAccount, err := s.directory.ResolvePaymentAccount(ctx, in.Method, in.AccountCode)
	if err != nil {
		return err
	}

	_, err = s.engine.Post(ctx,
		ledger.NewReference(ledger.ReferenceSalePayment, sl.ID),
		[]ledger.Line{
			ledger.DebitLine(payAccount.Code, in.Amount, "payment for "+sl.Number),
			ledger.CreditLine(arAccount.Code, in.Amount, "payment for "+sl.Number),
		})
	if err != nil {
		return err
	}

	sl.ApplyPayment(in.Amount)
	return nil
}

// GetByID loads a sale.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// Cancel cancels an unpaid sale and reverses its invoice posting.
func (s *Service) Cancel(ctx context.Context, saleID id.ID) (*Sale, error) {
	var result *Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := sl.Cancel(); err != nil {
			return err
		}

		// Conversion-originated invoices post under the quotation_conversion
		// reference; reverse whichever form this sale was posted as.
		for _, refType := range []ledger.ReferenceType{ledger.ReferenceSale, ledger.ReferenceQuotationConversion} {
			txns, err := s.ledgerRepo.ListByReference(ctx, ledger.NewReference(refType, sl.ID))
			if err != nil {
				return err
			}
			for _, txn := range txns {
				if _, err := s.engine.Reverse(ctx, txn.ID, "sale "+sl.Number+" cancelled"); err != nil {
					return err
				}
			}
		}

		if err := s.repo.Update(ctx, sl); err != nil {
			return err
		}
		result = sl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List retrieves sales with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}
