package ledger

import (
	"context"
	"time"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Repository is the persistence contract for the ledger. The implementation
// lives in infrastructure/storage/postgres and participates in the caller's
// transaction via context.
type Repository interface {
	// --- Accounts ---

	// GetAccountByCode resolves a single account. Returns NOT_FOUND if absent.
	GetAccountByCode(ctx context.Context, code string) (*Account, error)

	// ResolveAccounts resolves many codes at once, keyed by code.
	// Missing codes are simply absent from the result map.
	ResolveAccounts(ctx context.Context, codes []string) (map[string]*Account, error)

	// UpsertAccount inserts the account or, on code conflict, returns the
	// existing row unchanged. This is the race-safe first-use primitive:
	// two concurrent creators both receive the same persisted account.
	UpsertAccount(ctx context.Context, account *Account) (*Account, error)

	// ListAccounts returns accounts matching the optional type filter.
	ListAccounts(ctx context.Context, accType *AccountType) ([]Account, error)

	// --- Transactions ---

	// InsertTransaction persists one transaction and all its entries.
	// Must be called inside an open database transaction; never partial.
	InsertTransaction(ctx context.Context, txn *Transaction) error

	// GetTransaction loads a transaction with its entries.
	GetTransaction(ctx context.Context, txnID id.ID) (*Transaction, error)

	// ListByReference returns all transactions posted for a business document.
	ListByReference(ctx context.Context, ref Reference) ([]Transaction, error)

	// --- Derived queries ---

	// AccountBalance computes sum(debit) - sum(credit) over all entries of
	// the account. Never cached; always derived from entries.
	AccountBalance(ctx context.Context, code string) (types.Money, error)

	// CreditedForReference sums credit entries on the account scoped to one
	// business reference. This is the idempotent-clearing probe: a sale's
	// AR account credited under {sale, id} means the receivable was already
	// cleared by that sale.
	CreditedForReference(ctx context.Context, code string, refTypes []ReferenceType, refID id.ID) (types.Money, error)

	// DebitedForReference is the payable-side analogue: it sums debit
	// entries on the account scoped to one business reference, telling a
	// workflow how much of a supplier's payable was already settled.
	DebitedForReference(ctx context.Context, code string, refTypes []ReferenceType, refID id.ID) (types.Money, error)

	// Statement returns the account's entries within the date range,
	// ordered by posting time.
	Statement(ctx context.Context, code string, from, to time.Time) ([]StatementLine, error)
}

// StatementLine is one row of an account statement, an entry joined with
// its transaction's reference and a running balance.
type StatementLine struct {
	EntryID       id.ID         `db:"entry_id" json:"entryId"`
	TransactionID id.ID         `db:"transaction_id" json:"transactionId"`
	ReferenceType ReferenceType `db:"reference_type" json:"referenceType"`
	ReferenceID   id.ID         `db:"reference_id" json:"referenceId"`
	PostedAt      time.Time     `db:"posted_at" json:"postedAt"`
	Debit         types.Money   `db:"debit" json:"debit"`
	Credit        types.Money   `db:"credit" json:"credit"`
	Narration     string        `db:"narration" json:"narration,omitempty"`
	Balance       types.Money   `db:"balance" json:"balance"`
}
