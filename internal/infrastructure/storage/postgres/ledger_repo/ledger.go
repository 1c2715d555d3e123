// Package ledger_repo provides the PostgreSQL implementation of the ledger
// store: the account directory table and the append-only transaction and
// entry tables.
package ledger_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	accountsTable     = "cat_accounts"
	transactionsTable = "ledger_transactions"
	entriesTable      = "ledger_entries"
)

// LedgerRepo implements ledger.Repository.
//
// Entries are append-only at the SQL level too: there is no UPDATE or
// DELETE against ledger_entries anywhere in this package.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)

var accountCols = postgres.ExtractDBColumns[ledger.Account]()

// GetAccountByCode resolves a single account by code.
func (r *LedgerRepo) GetAccountByCode(ctx context.Context, code string) (*ledger.Account, error) {
	q := r.builder.Select(accountCols...).
		From(accountsTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var account ledger.Account
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &account, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("account", code)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

// ResolveAccounts resolves many codes at once, keyed by code.
func (r *LedgerRepo) ResolveAccounts(ctx context.Context, codes []string) (map[string]*ledger.Account, error) {
	result := make(map[string]*ledger.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	q := r.builder.Select(accountCols...).
		From(accountsTable).
		Where(squirrel.Eq{"code": codes})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []*ledger.Account
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}

	for _, account := range accounts {
		result[account.Code] = account
	}
	return result, nil
}

// UpsertAccount inserts the account or, on code conflict, returns the
// existing row unchanged. The conflict action is a no-op update so that
// RETURNING yields the already-persisted row; both concurrent creators
// therefore observe the same account.
func (r *LedgerRepo) UpsertAccount(ctx context.Context, account *ledger.Account) (*ledger.Account, error) {
	data := postgres.StructToMap(account)

	cols := make([]string, 0, len(accountCols))
	vals := make([]any, 0, len(accountCols))
	for _, col := range accountCols {
		if v, ok := data[col]; ok {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}

	q := r.builder.Insert(accountsTable).
		Columns(cols...).
		Values(vals...).
		Suffix("ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code").
		Suffix("RETURNING " + strings.Join(accountCols, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var persisted ledger.Account
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &persisted, sql, args...); err != nil {
		return nil, fmt.Errorf("upsert account %s: %w", account.Code, err)
	}

	return &persisted, nil
}

// ListAccounts returns accounts matching the optional type filter.
func (r *LedgerRepo) ListAccounts(ctx context.Context, accType *ledger.AccountType) ([]ledger.Account, error) {
	q := r.builder.Select(accountCols...).
		From(accountsTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	if accType != nil {
		q = q.Where(squirrel.Eq{"type": *accType})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []ledger.Account
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// InsertTransaction persists one transaction and all its entries.
// Requires an open transaction in context; a partially inserted posting
// must never be observable.
func (r *LedgerRepo) InsertTransaction(ctx context.Context, txn *ledger.Transaction) error {
	if r.txm.GetTx(ctx) == nil {
		return fmt.Errorf("InsertTransaction requires transaction context")
	}

	q := r.builder.Insert(transactionsTable).
		Columns("id", "reference_type", "reference_id", "created_at", "created_by").
		Values(txn.ID, txn.ReferenceType, txn.ReferenceID, txn.CreatedAt, txn.CreatedBy)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	// COPY the entries in one round-trip.
	inserter := postgres.NewBatchInserter(r.txm)
	columns := []string{
		"id", "transaction_id", "account_id", "account_code",
		"debit", "credit", "narration",
	}
	rows := make([][]any, 0, len(txn.Entries))
	for _, e := range txn.Entries {
		rows = append(rows, []any{
			e.ID, e.TransactionID, e.AccountID, e.AccountCode,
			e.Debit, e.Credit, e.Narration,
		})
	}
	if _, err := inserter.CopyFromSlice(ctx, entriesTable, columns, rows); err != nil {
		return fmt.Errorf("copy entries: %w", err)
	}

	return nil
}

// GetTransaction loads a transaction with its entries.
func (r *LedgerRepo) GetTransaction(ctx context.Context, txnID id.ID) (*ledger.Transaction, error) {
	q := r.builder.Select("id", "reference_type", "reference_id", "created_at", "created_by").
		From(transactionsTable).
		Where(squirrel.Eq{"id": txnID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txn ledger.Transaction
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &txn, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", txnID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	entries, err := r.entriesFor(ctx, []id.ID{txnID})
	if err != nil {
		return nil, err
	}
	txn.Entries = entries[txnID]

	return &txn, nil
}

// ListByReference returns all transactions posted for a business document,
// oldest first.
func (r *LedgerRepo) ListByReference(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	q := r.builder.Select("id", "reference_type", "reference_id", "created_at", "created_by").
		From(transactionsTable).
		Where(squirrel.Eq{"reference_type": ref.Type}).
		Where(squirrel.Eq{"reference_id": ref.ID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []ledger.Transaction
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("list by reference: %w", err)
	}

	if len(txns) == 0 {
		return txns, nil
	}

	ids := make([]id.ID, len(txns))
	for i := range txns {
		ids[i] = txns[i].ID
	}
	entries, err := r.entriesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].Entries = entries[txns[i].ID]
	}

	return txns, nil
}

// entriesFor loads entries for a set of transactions, grouped by transaction.
func (r *LedgerRepo) entriesFor(ctx context.Context, txnIDs []id.ID) (map[id.ID][]ledger.Entry, error) {
	q := r.builder.Select("id", "transaction_id", "account_id", "account_code", "debit", "credit", "narration").
		From(entriesTable).
		Where(squirrel.Eq{"transaction_id": txnIDs}).
		OrderBy("transaction_id", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	grouped := make(map[id.ID][]ledger.Entry, len(txnIDs))
	for _, e := range entries {
		grouped[e.TransactionID] = append(grouped[e.TransactionID], e)
	}
	return grouped, nil
}

// AccountBalance computes sum(debit) - sum(credit) over all entries of the
// account. Always derived; there is no cached balance column to drift.
func (r *LedgerRepo) AccountBalance(ctx context.Context, code string) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM ledger_entries
		WHERE account_code = $1
	`

	var balance decimal.Decimal
	querier := r.txm.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, code).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("account balance %s: %w", code, err)
	}

	return balance, nil
}

// CreditedForReference sums credit entries on the account scoped to one
// business reference.
func (r *LedgerRepo) CreditedForReference(ctx context.Context, code string, refTypes []ledger.ReferenceType, refID id.ID) (types.Money, error) {
	return r.sumForReference(ctx, "credit", code, refTypes, refID)
}

// DebitedForReference sums debit entries on the account scoped to one
// business reference.
func (r *LedgerRepo) DebitedForReference(ctx context.Context, code string, refTypes []ledger.ReferenceType, refID id.ID) (types.Money, error) {
	return r.sumForReference(ctx, "debit", code, refTypes, refID)
}

func (r *LedgerRepo) sumForReference(ctx context.Context, side, code string, refTypes []ledger.ReferenceType, refID id.ID) (types.Money, error) {
	typeStrings := make([]string, len(refTypes))
	for i, rt := range refTypes {
		typeStrings[i] = rt.String()
	}

	q := r.builder.Select("COALESCE(SUM(e." + side + "), 0)").
		From(entriesTable + " e").
		Join(transactionsTable + " t ON t.id = e.transaction_id").
		Where(squirrel.Eq{"e.account_code": code}).
		Where(squirrel.Eq{"t.reference_type": typeStrings}).
		Where(squirrel.Eq{"t.reference_id": refID})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var total decimal.Decimal
	querier := r.txm.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("sum %s for reference: %w", side, err)
	}

	return total, nil
}

// Statement returns the account's entries within the date range with a
// running balance, computed in SQL with a window function.
func (r *LedgerRepo) Statement(ctx context.Context, code string, from, to time.Time) ([]ledger.StatementLine, error) {
	sql := `
		SELECT
			e.id AS entry_id,
			e.transaction_id,
			t.reference_type,
			t.reference_id,
			t.created_at AS posted_at,
			e.debit,
			e.credit,
			e.narration,
			SUM(e.debit - e.credit) OVER (ORDER BY t.created_at, e.id) AS balance
		FROM ledger_entries e
		JOIN ledger_transactions t ON t.id = e.transaction_id
		WHERE e.account_code = $1
		  AND t.created_at >= $2
		  AND t.created_at <= $3
		ORDER BY t.created_at, e.id
	`

	var lines []ledger.StatementLine
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, code, from, to); err != nil {
		return nil, fmt.Errorf("statement %s: %w", code, err)
	}

	return lines, nil
}
