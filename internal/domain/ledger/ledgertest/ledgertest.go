// Package ledgertest provides in-memory test doubles for the ledger.
// Used by workflow unit tests to exercise real posting logic without a
// database.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/ledger"
)

// TxManager satisfies tx.Manager and tx.ReadOnlyManager without a database.
// Rollback semantics are covered by integration tests; unit tests only need
// the callback executed.
type TxManager struct{}

func (TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MemRepo is an in-memory ledger.Repository.
type MemRepo struct {
	mu           sync.Mutex
	accounts     map[string]*ledger.Account
	transactions map[id.ID]*ledger.Transaction
}

// NewMemRepo creates an empty repository.
func NewMemRepo() *MemRepo {
	return &MemRepo{
		accounts:     make(map[string]*ledger.Account),
		transactions: make(map[id.ID]*ledger.Transaction),
	}
}

// AddAccount registers an account directly, bypassing upsert semantics.
func (r *MemRepo) AddAccount(account *ledger.Account) *ledger.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.Code] = account
	return account
}

// SeedBaseAccounts loads the accounts migrations would normally seed.
func (r *MemRepo) SeedBaseAccounts() {
	r.AddAccount(ledger.NewAccount(ledger.CodeCash, "Cash on hand", ledger.TypeAsset))
	r.AddAccount(ledger.NewAccount(ledger.CodeBank, "Bank account", ledger.TypeAsset))
	r.AddAccount(ledger.NewAccount(ledger.CodeMobile, "Mobile money", ledger.TypeAsset))
	r.AddAccount(ledger.NewAccount(ledger.CodeSalesIncome, "Sales income", ledger.TypeIncome))
	r.AddAccount(ledger.NewAccount(ledger.CodeTaxPayable, "VAT payable", ledger.TypeLiability))
	r.AddAccount(ledger.NewAccount(ledger.CodePurchases, "Purchases", ledger.TypeExpense))
}

// TransactionCount returns the number of stored transactions.
func (r *MemRepo) TransactionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transactions)
}

// AllTransactions returns a snapshot of every stored transaction.
func (r *MemRepo) AllTransactions() []ledger.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ledger.Transaction, 0, len(r.transactions))
	for _, txn := range r.transactions {
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *MemRepo) GetAccountByCode(ctx context.Context, code string) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[code]; ok {
		return account, nil
	}
	return nil, apperror.NewNotFound("account", code)
}

func (r *MemRepo) ResolveAccounts(ctx context.Context, codes []string) (map[string]*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]*ledger.Account)
	for _, code := range codes {
		if account, ok := r.accounts[code]; ok {
			result[code] = account
		}
	}
	return result, nil
}

func (r *MemRepo) UpsertAccount(ctx context.Context, account *ledger.Account) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.accounts[account.Code]; ok {
		return existing, nil
	}
	r.accounts[account.Code] = account
	return account, nil
}

func (r *MemRepo) ListAccounts(ctx context.Context, accType *ledger.AccountType) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Account
	for _, account := range r.accounts {
		if accType == nil || account.Type == *accType {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemRepo) InsertTransaction(ctx context.Context, txn *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[txn.ID] = txn
	return nil
}

func (r *MemRepo) GetTransaction(ctx context.Context, txnID id.ID) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn, ok := r.transactions[txnID]; ok {
		return txn, nil
	}
	return nil, apperror.NewNotFound("transaction", txnID)
}

func (r *MemRepo) ListByReference(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Transaction
	for _, txn := range r.transactions {
		if txn.ReferenceType == ref.Type && txn.ReferenceID == ref.ID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemRepo) AccountBalance(ctx context.Context, code string) (types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := types.Zero()
	for _, txn := range r.transactions {
		for _, entry := range txn.Entries {
			if entry.AccountCode == code {
				balance = balance.Add(entry.Debit).Sub(entry.Credit)
			}
		}
	}
	return balance, nil
}

func (r *MemRepo) CreditedForReference(ctx context.Context, code string, refTypes []ledger.ReferenceType, refID id.ID) (types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := types.Zero()
	for _, txn := range r.transactions {
		if txn.ReferenceID != refID {
			continue
		}
		matched := false
		for _, rt := range refTypes {
			if txn.ReferenceType == rt {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, entry := range txn.Entries {
			if entry.AccountCode == code {
				total = total.Add(entry.Credit)
			}
		}
	}
	return total, nil
}

func (r *MemRepo) DebitedForReference(ctx context.Context, code string, refTypes []ledger.ReferenceType, refID id.ID) (types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := types.Zero()
	for _, txn := range r.transactions {
		if txn.ReferenceID != refID {
			continue
		}
		matched := false
		for _, rt := range refTypes {
			if txn.ReferenceType == rt {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, entry := range txn.Entries {
			if entry.AccountCode == code {
				total = total.Add(entry.Debit)
			}
		}
	}
	return total, nil
}

func (r *MemRepo) Statement(ctx context.Context, code string, from, to time.Time) ([]ledger.StatementLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var txns []*ledger.Transaction
	for _, txn := range r.transactions {
		txns = append(txns, txn)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreatedAt.Before(txns[j].CreatedAt) })

	var lines []ledger.StatementLine
	balance := types.Zero()
	for _, txn := range txns {
		if txn.CreatedAt.Before(from) || txn.CreatedAt.After(to) {
			continue
		}
		for _, entry := range txn.Entries {
			if entry.AccountCode != code {
				continue
			}
			balance = balance.Add(entry.Debit).Sub(entry.Credit)
			lines = append(lines, ledger.StatementLine{
				EntryID:       entry.ID,
				TransactionID: txn.ID,
				ReferenceType: txn.ReferenceType,
				ReferenceID:   txn.ReferenceID,
				PostedAt:      txn.CreatedAt,
				Debit:         entry.Debit,
				Credit:        entry.Credit,
				Narration:     entry.Narration,
				Balance:       balance,
			})
		}
	}
	return lines, nil
}

var _ ledger.Repository = (*MemRepo)(nil)
