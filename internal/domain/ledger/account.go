// Package ledger implements the double-entry accounting core: the account
// directory, the posting engine and derived balance queries.
package ledger

import (
	"context"
	"fmt"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
)

// AccountType classifies an account for sign conventions and reporting.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

// IsValid reports whether the account type is one of the known values.
func (t AccountType) IsValid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether a positive balance for this type is a debit
// balance. Assets and expenses grow on the debit side.
func (t AccountType) DebitNormal() bool {
	return t == TypeAsset || t == TypeExpense
}

// Well-known account codes seeded by migrations. Counterparty sub-accounts
// (AR.CUSTOMER.<n>, AP.SUPPLIER.<n>) are created lazily by the directory.
const (
	CodeCash        = "ASSET.CASH"
	CodeBank        = "ASSET.BANK"
	CodeMobile      = "ASSET.MOBILE"
	CodeSalesIncome = "INCOME.SALES"
	CodeTaxPayable  = "LIABILITY.TAX.VAT"
	CodePurchases   = "EXPENSE.PURCHASES"
)

// Account is a ledger account. The code is a dotted hierarchy
// (ASSET.CASH, AR.CUSTOMER.1015) and is immutable once entries reference it;
// only the display name may change afterwards.
type Account struct {
	entity.Catalog

	Type AccountType `db:"type" json:"type"`

	IsCash     bool `db:"is_cash" json:"isCash"`
	IsBank     bool `db:"is_bank" json:"isBank"`
	IsCustomer bool `db:"is_customer" json:"isCustomer"`
	IsSupplier bool `db:"is_supplier" json:"isSupplier"`
}

// NewAccount creates an account with a generated ID.
func NewAccount(code, name string, accType AccountType) *Account {
	return &Account{
		Catalog: entity.NewCatalog(code, name),
		Type:    accType,
	}
}

// Validate implements entity.Validatable.
func (a *Account) Validate(ctx context.Context) error {
	if a.Code == "" {
		return apperror.NewValidation("account code is required").
			WithDetail("field", "code")
	}
	if !a.Type.IsValid() {
		return apperror.NewValidation("unknown account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}
	return a.Catalog.Validate(ctx)
}

// Kind identifies a logical account role the directory can resolve.
type Kind int

const (
	KindSupplierPayable Kind = iota
	KindCustomerReceivable
	KindCash
	KindBank
	KindMobile
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindSupplierPayable:
		return "supplier_payable"
	case KindCustomerReceivable:
		return "customer_receivable"
	case KindCash:
		return "cash"
	case KindBank:
		return "bank"
	case KindMobile:
		return "mobile"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// EntityScoped reports whether the kind creates per-counterparty sub-accounts.
func (k Kind) EntityScoped() bool {
	return k == KindSupplierPayable || k == KindCustomerReceivable
}

// CustomerReceivableCode returns the deterministic code for a customer's
// AR sub-account. The same account number always yields the same code,
// which is what makes first-use creation idempotent.
func CustomerReceivableCode(accountNo string) string {
	return "AR.CUSTOMER." + accountNo
}

// SupplierPayableCode returns the deterministic code for a supplier's
// AP sub-account.
func SupplierPayableCode(accountNo string) string {
	return "AP.SUPPLIER." + accountNo
}

// PaymentMethodAccount maps a payment method to its fixed asset account code.
// Returns "" for unknown methods; callers must treat that as a validation error.
func PaymentMethodAccount(method string) string {
	switch method {
	case "cash":
		return CodeCash
	case "bank":
		return CodeBank
	case "mobile":
		return CodeMobile
	default:
		return ""
	}
}
