package dto

import (
	"time"

	"retailcore/internal/core/types"
	"retailcore/internal/domain/ledger"
)

// AccountResponse contains ledger account fields.
type AccountResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsCash     bool   `json:"isCash"`
	IsBank     bool   `json:"isBank"`
	IsCustomer bool   `json:"isCustomer"`
	IsSupplier bool   `json:"isSupplier"`
}

// FromAccount maps the domain account to the response.
func FromAccount(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID.String(),
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		IsCash:     a.IsCash,
		IsBank:     a.IsBank,
		IsCustomer: a.IsCustomer,
		IsSupplier: a.IsSupplier,
	}
}

// BalanceResponse is an account balance in the sign convention of its type.
type BalanceResponse struct {
	AccountCode string      `json:"accountCode"`
	Balance     types.Money `json:"balance"`
}

// StatementQuery bounds a statement request.
type StatementQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// StatementLineResponse is one statement row with a running balance.
type StatementLineResponse struct {
	EntryID       string      `json:"entryId"`
	TransactionID string      `json:"transactionId"`
	ReferenceType string      `json:"referenceType"`
	ReferenceID   string      `json:"referenceId"`
	PostedAt      time.Time   `json:"postedAt"`
	Debit         types.Money `json:"debit"`
	Credit        types.Money `json:"credit"`
	Narration     string      `json:"narration,omitempty"`
	Balance       types.Money `json:"balance"`
}

// StatementResponse is an account statement over a date range.
type StatementResponse struct {
	AccountCode string                  `json:"accountCode"`
	From        time.Time               `json:"from"`
	To          time.Time               `json:"to"`
	Lines       []StatementLineResponse `json:"lines"`
}

// FromStatement maps statement lines to the response.
func FromStatement(code string, from, to time.Time, lines []ledger.StatementLine) StatementResponse {
	out := make([]StatementLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, StatementLineResponse{
			EntryID:       line.EntryID.String(),
			TransactionID: line.TransactionID.String(),
			ReferenceType: line.ReferenceType.String(),
			ReferenceID:   line.ReferenceID.String(),
			PostedAt:      line.PostedAt,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Narration:     line.Narration,
			Balance:       line.Balance,
		})
	}
	return StatementResponse{AccountCode: code, From: from, To: to, Lines: out}
}

// EntryResponse is one persisted debit or credit row.
type EntryResponse struct {
	ID          string      `json:"id"`
	AccountCode string      `json:"accountCode"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Narration   string      `json:"narration,omitempty"`
}

// TransactionResponse is one posted transaction with its entries.
type TransactionResponse struct {
	ID            string          `json:"id"`
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceId"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	Entries       []EntryResponse `json:"entries"`
}

// FromTransaction maps the domain transaction to the response.
func FromTransaction(txn *ledger.Transaction) TransactionResponse {
	entries := make([]EntryResponse, 0, len(txn.Entries))
	for _, e := range txn.Entries {
		entries = append(entries, EntryResponse{
			ID:          e.ID.String(),
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Narration:   e.Narration,
		})
	}
	return TransactionResponse{
		ID:            txn.ID.String(),
		ReferenceType: txn.ReferenceType.String(),
		ReferenceID:   txn.ReferenceID.String(),
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
		Entries:       entries,
	}
}

// FromTransactions maps a slice of transactions.
func FromTransactions(txns []ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, FromTransaction(&txns[i]))
	}
	return out
}
