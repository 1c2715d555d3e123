// Command seed ensures the base chart of accounts exists. Safe to run
// repeatedly; existing accounts are left untouched.
package main

import (
	"context"

	"retailcore/internal/domain/ledger"
	"retailcore/internal/infrastructure/config"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/internal/infrastructure/storage/postgres/ledger_repo"
	"retailcore/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "load config", "error", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		logger.Fatal(ctx, "connect to database", "error", err)
	}
	defer pool.Close()

	repo := ledger_repo.NewLedgerRepo(postgres.NewTxManager(pool))

	seed := []struct {
		code   string
		name   string
		typ    ledger.AccountType
		isCash bool
		isBank bool
	}{
		{ledger.CodeCash, "Cash on hand", ledger.TypeAsset, true, false},
		{ledger.CodeBank, "Bank account", ledger.TypeAsset, false, true},
		{ledger.CodeMobile, "Mobile money", ledger.TypeAsset, false, false},
		{ledger.CodeSalesIncome, "Sales income", ledger.TypeIncome, false, false},
		{ledger.CodeTaxPayable, "VAT payable", ledger.TypeLiability, false, false},
		{ledger.CodePurchases, "Purchases", ledger.TypeExpense, false, false},
	}

	for _, s := range seed {
		account := ledger.NewAccount(s.code, s.name, s.typ)
		account.IsCash = s.isCash
		account.IsBank = s.isBank

		persisted, err := repo.UpsertAccount(ctx, account)
		if err != nil {
			logger.Fatal(ctx, "seed account", "code", s.code, "error", err)
		}
		logger.Info(ctx, "account ready", "code", persisted.Code, "name", persisted.Name)
	}
}
