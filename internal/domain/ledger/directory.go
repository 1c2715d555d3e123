package ledger

import (
	"context"
	"fmt"

	"retailcore/internal/core/apperror"
	"retailcore/pkg/logger"
)

// Directory resolves logical account roles to concrete ledger accounts,
// creating counterparty sub-accounts on first use.
//
// Creation is race-safe: the repository's upsert returns the existing row on
// code conflict, so two simultaneous first payments to a new supplier end up
// sharing one payable account.
type Directory struct {
	repo Repository
}

// NewDirectory creates the account directory.
func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// GetOrCreate resolves an account for the given role.
//
// For entity-scoped kinds (customer receivable, supplier payable) the code is
// derived deterministically from the counterparty's account number, so
// repeated calls return the same account. For fixed kinds the seeded account
// is looked up and never created here.
func (d *Directory) GetOrCreate(ctx context.Context, kind Kind, accountNo, displayName string) (*Account, error) {
	if !kind.EntityScoped() {
		return d.fixed(ctx, kind)
	}
	if accountNo == "" {
		return nil, apperror.NewValidation("counterparty account number is required").
			WithDetail("kind", kind.String())
	}

	var account *Account
	switch kind {
	case KindCustomerReceivable:
		account = NewAccount(
			CustomerReceivableCode(accountNo),
			fmt.Sprintf("Receivable - %s", displayName),
			TypeAsset,
		)
		account.IsCustomer = true
	case KindSupplierPayable:
		account = NewAccount(
			SupplierPayableCode(accountNo),
			fmt.Sprintf("Payable - %s", displayName),
			TypeLiability,
		)
		account.IsSupplier = true
	}

	persisted, err := d.repo.UpsertAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if persisted.ID == account.ID {
		logger.Info(ctx, "ledger account created",
			"code", persisted.Code,
			"kind", kind.String(),
		)
	}
	return persisted, nil
}

// ResolvePaymentAccount maps a payment method to its asset account, or
// validates a caller-supplied override code against the directory.
// Unknown methods and unregistered override codes are rejected; payments
// never post to accounts that do not exist.
func (d *Directory) ResolvePaymentAccount(ctx context.Context, method, overrideCode string) (*Account, error) {
	code := overrideCode
	if code == "" {
		code = PaymentMethodAccount(method)
		if code == "" {
			return nil, apperror.NewValidation("unknown payment method").
				WithDetail("method", method)
		}
	}

	account, err := d.repo.GetAccountByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnknownAccount(code)
		}
		return nil, err
	}
	return account, nil
}

func (d *Directory) fixed(ctx context.Context, kind Kind) (*Account, error) {
	var code string
	switch kind {
	case KindCash:
		code = CodeCash
	case KindBank:
		code = CodeBank
	case KindMobile:
		code = CodeMobile
	default:
		return nil, apperror.NewValidation("unknown account kind").
			WithDetail("kind", kind.String())
	}

	account, err := d.repo.GetAccountByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnknownAccount(code)
		}
		return nil, err
	}
	return account, nil
}
