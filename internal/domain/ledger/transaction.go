package ledger

import (
	"database/sql/driver"
	"fmt"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// ReferenceType is a closed enumeration of business events that may post to
// the ledger. Adding a variant forces updates to String and ParseReferenceType,
// keeping every matching workflow compiler-checked.
type ReferenceType int

const (
	ReferenceSale ReferenceType = iota + 1
	ReferenceSalePayment
	ReferencePurchase
	ReferenceSupplierPayment
	ReferenceQuotationConversion
	ReferenceReversal
)

// String implements fmt.Stringer. The returned value is the persisted form.
func (t ReferenceType) String() string {
	switch t {
	case ReferenceSale:
		return "sale"
	case ReferenceSalePayment:
		return "sale_payment"
	case ReferencePurchase:
		return "purchase"
	case ReferenceSupplierPayment:
		return "supplier_payment"
	case ReferenceQuotationConversion:
		return "quotation_conversion"
	case ReferenceReversal:
		return "reversal"
	default:
		return fmt.Sprintf("reference(%d)", int(t))
	}
}

// IsValid reports whether the reference type is a known variant.
func (t ReferenceType) IsValid() bool {
	return t >= ReferenceSale && t <= ReferenceReversal
}

// ParseReferenceType converts the persisted form back to the enum.
func ParseReferenceType(s string) (ReferenceType, error) {
	switch s {
	case "sale":
		return ReferenceSale, nil
	case "sale_payment":
		return ReferenceSalePayment, nil
	case "purchase":
		return ReferencePurchase, nil
	case "supplier_payment":
		return ReferenceSupplierPayment, nil
	case "quotation_conversion":
		return ReferenceQuotationConversion, nil
	case "reversal":
		return ReferenceReversal, nil
	}
	return 0, apperror.NewValidation("unknown reference type").
		WithDetail("value", s)
}

// Value implements driver.Valuer; the string form is what is stored.
func (t ReferenceType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid reference type %d", int(t))
	}
	return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *ReferenceType) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ReferenceType", src)
	}
	parsed, err := ParseReferenceType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Reference identifies the business document a posting originates from.
type Reference struct {
	Type ReferenceType `json:"type"`
	ID   id.ID         `json:"id"`
}

// NewReference builds a validated reference.
func NewReference(t ReferenceType, refID id.ID) Reference {
	return Reference{Type: t, ID: refID}
}

// Validate checks the reference invariants.
func (r Reference) Validate() error {
	if !r.Type.IsValid() {
		return apperror.NewValidation("unknown reference type").
			WithDetail("value", int(r.Type))
	}
	if id.IsNil(r.ID) {
		return apperror.NewValidation("reference id is required")
	}
	return nil
}

// Line is one debit or credit posting instruction, addressed by account code.
// Exactly one of Debit/Credit must be positive; the other must be zero.
type Line struct {
	AccountCode string      `json:"accountCode"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Narration   string      `json:"narration,omitempty"`
}

// DebitLine builds a debit posting instruction.
func DebitLine(accountCode string, amount types.Money, narration string) Line {
	return Line{AccountCode: accountCode, Debit: amount, Credit: types.Zero(), Narration: narration}
}

// CreditLine builds a credit posting instruction.
func CreditLine(accountCode string, amount types.Money, narration string) Line {
	return Line{AccountCode: accountCode, Debit: types.Zero(), Credit: amount, Narration: narration}
}

// Validate checks the single-sided amount invariant.
func (l Line) Validate() error {
	if l.AccountCode == "" {
		return apperror.NewValidation("entry account code is required")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return apperror.NewValidation("entry amounts must be non-negative").
			WithDetail("account_code", l.AccountCode)
	}
	debitSet := l.Debit.IsPositive()
	creditSet := l.Credit.IsPositive()
	if debitSet == creditSet {
		return apperror.NewValidation("entry must have exactly one of debit or credit set").
			WithDetail("account_code", l.AccountCode).
			WithDetail("debit", l.Debit.String()).
			WithDetail("credit", l.Credit.String())
	}
	return nil
}

// Entry is one persisted debit or credit row. Entries are append-only:
// never mutated, never deleted. Corrections post reversing transactions.
type Entry struct {
	ID            id.ID       `db:"id" json:"id"`
	TransactionID id.ID       `db:"transaction_id" json:"transactionId"`
	AccountID     id.ID       `db:"account_id" json:"accountId"`
	AccountCode   string      `db:"account_code" json:"accountCode"`
	Debit         types.Money `db:"debit" json:"debit"`
	Credit        types.Money `db:"credit" json:"credit"`
	Narration     string      `db:"narration" json:"narration,omitempty"`
}

// Transaction groups the entries of one economic event. Append-only.
type Transaction struct {
	ID            id.ID         `db:"id" json:"id"`
	ReferenceType ReferenceType `db:"reference_type" json:"referenceType"`
	ReferenceID   id.ID         `db:"reference_id" json:"referenceId"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	CreatedBy     string        `db:"created_by" json:"createdBy,omitempty"`

	Entries []Entry `db:"-" json:"entries"`
}

// Reference returns the transaction's business reference.
func (t *Transaction) Reference() Reference {
	return Reference{Type: t.ReferenceType, ID: t.ReferenceID}
}

// TotalDebit sums the debit side at full precision.
func (t *Transaction) TotalDebit() types.Money {
	total := types.Zero()
	for _, e := range t.Entries {
		total = total.Add(e.Debit)
	}
	return total
}

// TotalCredit sums the credit side at full precision.
func (t *Transaction) TotalCredit() types.Money {
	total := types.Zero()
	for _, e := range t.Entries {
		total = total.Add(e.Credit)
	}
	return total
}
