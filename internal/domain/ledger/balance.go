package ledger

import (
	"context"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/tx"
	"retailcore/internal/core/types"
)

// BalanceService answers read-only balance and statement queries.
// Every figure is derived from entries on demand; there is no cached
// balance column anywhere that could drift from the ledger.
type BalanceService struct {
	repo Repository
	txm  tx.ReadOnlyManager
}

// NewBalanceService creates the balance query service.
func NewBalanceService(repo Repository, txm tx.ReadOnlyManager) *BalanceService {
	return &BalanceService{repo: repo, txm: txm}
}

// Balance returns the account's balance with the sign convention of its
// type: debit-normal accounts (assets, expenses) report debit minus credit,
// credit-normal accounts report credit minus debit.
func (s *BalanceService) Balance(ctx context.Context, code string) (types.Money, error) {
	var balance types.Money
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		account, err := s.repo.GetAccountByCode(ctx, code)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewUnknownAccount(code)
			}
			return err
		}

		raw, err := s.repo.AccountBalance(ctx, code)
		if err != nil {
			return err
		}

		if account.Type.DebitNormal() {
			balance = raw
		} else {
			balance = raw.Neg()
		}
		return nil
	})
	if err != nil {
		return types.Zero(), err
	}
	return balance, nil
}

// Statement returns the account's entries within the range, oldest first,
// with a running balance.
func (s *BalanceService) Statement(ctx context.Context, code string, from, to time.Time) ([]StatementLine, error) {
	var lines []StatementLine
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetAccountByCode(ctx, code); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewUnknownAccount(code)
			}
			return err
		}

		var err error
		lines, err = s.repo.Statement(ctx, code, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}
