package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/domain/ledger/ledgertest"
)

func newTestEngine(t *testing.T) (*ledger.Engine, *ledgertest.MemRepo) {
	t.Helper()
	repo := ledgertest.NewMemRepo()
	repo.SeedBaseAccounts()
	return ledger.NewEngine(repo, ledgertest.TxManager{}), repo
}

func TestEngine_Post_Balanced(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := t.Context()
	saleID := id.New()

	txn, err := engine.Post(ctx, ledger.NewReference(ledger.ReferenceSale, saleID), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("1180.00"), "cash received"),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("1000.00"), "sale"),
		ledger.CreditLine(ledger.CodeTaxPayable, types.MustMoney("180.00"), "vat"),
	})

	require.NoError(t, err)
	require.Len(t, txn.Entries, 3)
	assert.True(t, txn.TotalDebit().Equal(txn.TotalCredit()))
	assert.Equal(t, ledger.ReferenceSale, txn.ReferenceType)
	assert.Equal(t, saleID, txn.ReferenceID)

	stored, err := repo.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 3)
}

func TestEngine_Post_Unbalanced(t *testing.T) {
	engine, repo := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("100.00"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("99.99"), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnbalancedTransaction))
	assert.Zero(t, repo.TransactionCount(), "unbalanced transaction must never be persisted")
}

func TestEngine_Post_UnknownAccount(t *testing.T) {
	engine, repo := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine("ASSET.TYPO", types.MustMoney("100.00"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("100.00"), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownAccount))
	assert.Zero(t, repo.TransactionCount())
}

func TestEngine_Post_EmptyLines(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), nil)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestEngine_Post_RejectsTwoSidedLine(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		{AccountCode: ledger.CodeCash, Debit: types.MustMoney("50"), Credit: types.MustMoney("50")},
		ledger.CreditLine(ledger.CodeSalesIncome, types.Zero(), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestEngine_Post_RejectsZeroLine(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		{AccountCode: ledger.CodeCash},
		{AccountCode: ledger.CodeSalesIncome},
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestEngine_Post_RejectsNegativeAmount(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("-10.00"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("-10.00"), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestEngine_Post_InvalidReference(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Post(t.Context(), ledger.Reference{}, []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("10"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("10"), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestEngine_Post_RoundsAtPersistence(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Full-precision thirds that balance exactly before rounding.
	third := types.MustMoney("100").Div(types.MustMoney("3"))
	txn, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, third, ""),
		ledger.CreditLine(ledger.CodeSalesIncome, third, ""),
	})

	require.NoError(t, err)
	assert.Equal(t, "33.33", txn.Entries[0].Debit.String())
	assert.Equal(t, "33.33", txn.Entries[1].Credit.String())
}

func TestEngine_Post_RejectsPostRoundingImbalance(t *testing.T) {
	engine, repo := newTestEngine(t)

	// 33.335 + 33.335 balances 66.67 at full precision but rounds to
	// 33.34 + 33.34 = 66.68; persisting it would break the stored invariant.
	_, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("33.335"), ""),
		ledger.DebitLine(ledger.CodeBank, types.MustMoney("33.335"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("66.67"), ""),
	})

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnbalancedTransaction))
	assert.Zero(t, repo.TransactionCount())
}

func TestEngine_Post_AcceptsRoundedBalance(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Unequal at full precision, equal at the storage scale.
	txn, err := engine.Post(t.Context(), ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("66.666"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("66.67"), ""),
	})

	require.NoError(t, err)
	assert.Equal(t, "66.67", txn.Entries[0].Debit.String())
	assert.True(t, txn.TotalDebit().Equal(txn.TotalCredit()))
}

func TestEngine_GlobalBalanceInvariant(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := t.Context()

	postings := [][]ledger.Line{
		{
			ledger.DebitLine(ledger.CodeCash, types.MustMoney("1180.00"), ""),
			ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("1000.00"), ""),
			ledger.CreditLine(ledger.CodeTaxPayable, types.MustMoney("180.00"), ""),
		},
		{
			ledger.DebitLine(ledger.CodePurchases, types.MustMoney("750.50"), ""),
			ledger.CreditLine(ledger.CodeBank, types.MustMoney("750.50"), ""),
		},
	}
	for _, lines := range postings {
		_, err := engine.Post(ctx, ledger.NewReference(ledger.ReferenceSale, id.New()), lines)
		require.NoError(t, err)
	}

	// Every stored transaction balances, scanned entry by entry.
	for _, txn := range repo.AllTransactions() {
		assert.True(t, txn.TotalDebit().Equal(txn.TotalCredit()),
			"transaction %s is unbalanced", txn.ID)
	}
}

func TestEngine_Reverse(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := t.Context()

	original, err := engine.Post(ctx, ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("500.00"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("500.00"), ""),
	})
	require.NoError(t, err)

	reversal, err := engine.Reverse(ctx, original.ID, "posted in error")
	require.NoError(t, err)

	assert.Equal(t, ledger.ReferenceReversal, reversal.ReferenceType)
	assert.Equal(t, original.ID, reversal.ReferenceID)

	// Original stays untouched; the cash balance nets to zero.
	stored, err := repo.GetTransaction(ctx, original.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 2)

	balance, err := repo.AccountBalance(ctx, ledger.CodeCash)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
