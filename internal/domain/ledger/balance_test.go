package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/domain/ledger/ledgertest"
)

func TestBalanceService_SignConventions(t *testing.T) {
	repo := ledgertest.NewMemRepo()
	repo.SeedBaseAccounts()
	engine := ledger.NewEngine(repo, ledgertest.TxManager{})
	svc := ledger.NewBalanceService(repo, ledgertest.TxManager{})
	ctx := t.Context()

	_, err := engine.Post(ctx, ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("1180.00"), ""),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("1000.00"), ""),
		ledger.CreditLine(ledger.CodeTaxPayable, types.MustMoney("180.00"), ""),
	})
	require.NoError(t, err)

	cash, err := svc.Balance(ctx, ledger.CodeCash)
	require.NoError(t, err)
	assert.Equal(t, "1180", cash.String(), "asset balance is debit-normal")

	income, err := svc.Balance(ctx, ledger.CodeSalesIncome)
	require.NoError(t, err)
	assert.Equal(t, "1000", income.String(), "income balance is credit-normal")

	vat, err := svc.Balance(ctx, ledger.CodeTaxPayable)
	require.NoError(t, err)
	assert.Equal(t, "180", vat.String(), "liability balance is credit-normal")
}

func TestBalanceService_UnknownAccount(t *testing.T) {
	repo := ledgertest.NewMemRepo()
	svc := ledger.NewBalanceService(repo, ledgertest.TxManager{})

	_, err := svc.Balance(t.Context(), "ASSET.NOPE")

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownAccount))
}

func TestBalanceService_Statement(t *testing.T) {
	repo := ledgertest.NewMemRepo()
	repo.SeedBaseAccounts()
	engine := ledger.NewEngine(repo, ledgertest.TxManager{})
	svc := ledger.NewBalanceService(repo, ledgertest.TxManager{})
	ctx := t.Context()

	_, err := engine.Post(ctx, ledger.NewReference(ledger.ReferenceSale, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodeCash, types.MustMoney("300.00"), "sale one"),
		ledger.CreditLine(ledger.CodeSalesIncome, types.MustMoney("300.00"), ""),
	})
	require.NoError(t, err)

	_, err = engine.Post(ctx, ledger.NewReference(ledger.ReferenceSupplierPayment, id.New()), []ledger.Line{
		ledger.DebitLine(ledger.CodePurchases, types.MustMoney("120.00"), ""),
		ledger.CreditLine(ledger.CodeCash, types.MustMoney("120.00"), "paid supplier"),
	})
	require.NoError(t, err)

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	lines, err := svc.Statement(ctx, ledger.CodeCash, from, to)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "300", lines[0].Balance.String())
	assert.Equal(t, "180", lines[1].Balance.String(), "running balance nets debits and credits")
	assert.Equal(t, ledger.ReferenceSupplierPayment, lines[1].ReferenceType)
}
