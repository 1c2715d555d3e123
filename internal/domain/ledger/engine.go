package ledger

import (
	"context"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/appctx"
	"retailcore/internal/core/id"
	"retailcore/internal/core/tx"
	"retailcore/internal/core/types"
	"retailcore/pkg/logger"
)

// Engine posts balanced transactions to the ledger.
//
// Post is the only write path into account_transactions/account_entries.
// It joins the caller's database transaction when one is open, so a workflow
// that updates a business document and posts to the ledger commits both or
// neither.
type Engine struct {
	repo Repository
	txm  tx.Manager
}

// NewEngine creates the posting engine.
func NewEngine(repo Repository, txm tx.Manager) *Engine {
	return &Engine{repo: repo, txm: txm}
}

// Post validates and atomically persists one transaction with its entries.
//
// Preconditions enforced here, not by the database:
//   - lines is non-empty and every line has exactly one positive side
//   - every account code resolves (UNKNOWN_ACCOUNT otherwise)
//   - sum(debit) == sum(credit) exactly (UNBALANCED_TRANSACTION otherwise)
//
// Amounts are rounded to the storage scale at this boundary, before the
// balance check, so the invariant holds over exactly what is persisted.
// Callers pass full-precision values; lines that balance only pre-round
// are rejected.
func (e *Engine) Post(ctx context.Context, ref Reference, lines []Line) (*Transaction, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.NewValidation("posting requires at least one entry line")
	}

	totalDebit := types.Zero()
	totalCredit := types.Zero()
	rounded := make([]Line, 0, len(lines))
	for _, line := range lines {
		line.Debit = types.RoundMoney(line.Debit)
		line.Credit = types.RoundMoney(line.Credit)
		if err := line.Validate(); err != nil {
			return nil, err
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
		rounded = append(rounded, line)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, apperror.NewUnbalancedTransaction(totalDebit.String(), totalCredit.String())
	}

	var txn *Transaction
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		codes := make([]string, 0, len(rounded))
		for _, line := range rounded {
			codes = append(codes, line.AccountCode)
		}
		accounts, err := e.repo.ResolveAccounts(ctx, codes)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		txn = &Transaction{
			ID:            id.New(),
			ReferenceType: ref.Type,
			ReferenceID:   ref.ID,
			CreatedAt:     now,
			CreatedBy:     appctx.GetUserID(ctx),
		}

		txn.Entries = make([]Entry, 0, len(rounded))
		for _, line := range rounded {
			account, ok := accounts[line.AccountCode]
			if !ok {
				return apperror.NewUnknownAccount(line.AccountCode)
			}
			txn.Entries = append(txn.Entries, Entry{
				ID:            id.New(),
				TransactionID: txn.ID,
				AccountID:     account.ID,
				AccountCode:   account.Code,
				Debit:         line.Debit,
				Credit:        line.Credit,
				Narration:     line.Narration,
			})
		}

		return e.repo.InsertTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger transaction posted",
		"transaction_id", txn.ID,
		"reference_type", ref.Type.String(),
		"reference_id", ref.ID,
		"entries", len(txn.Entries),
		"amount", totalDebit.String(),
	)
	return txn, nil
}

// Reverse posts a new transaction with every entry's sides swapped.
// The original transaction is never touched; the ledger is append-only
// and corrections are always new postings.
func (e *Engine) Reverse(ctx context.Context, txnID id.ID, narration string) (*Transaction, error) {
	var reversal *Transaction
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		original, err := e.repo.GetTransaction(ctx, txnID)
		if err != nil {
			return err
		}

		lines := make([]Line, 0, len(original.Entries))
		for _, entry := range original.Entries {
			lines = append(lines, Line{
				AccountCode: entry.AccountCode,
				Debit:       entry.Credit,
				Credit:      entry.Debit,
				Narration:   narration,
			})
		}

		reversal, err = e.Post(ctx, NewReference(ReferenceReversal, original.ID), lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}
