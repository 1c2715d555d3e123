// Package counterparty provides the Counterparty catalog.
// Counterparties represent business partners: customers and suppliers.
package counterparty

import (
	"context"
	"regexp"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
)

// Pre-compiled regex patterns for validation
var (
	emailRE     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	accountNoRE = regexp.MustCompile(`^\d+$`)
)

// Type defines the role of the counterparty.
type Type string

const (
	TypeCustomer Type = "customer"
	TypeSupplier Type = "supplier"
	TypeBoth     Type = "both"
)

// Counterparty represents a business partner (customer or supplier).
type Counterparty struct {
	entity.Catalog

	// Type defines whether this is a customer, supplier, or both
	Type Type `db:"type" json:"type"`

	// AccountNo is the numeric account number assigned from the
	// counterparty number band (customers 1000-1999, suppliers 2000+).
	// It anchors the ledger sub-account codes (AR.CUSTOMER.<no>).
	AccountNo string `db:"account_no" json:"accountNo"`

	// TaxID is the counterparty's tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the postal address
	Address *string `db:"address" json:"address,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// New creates a new Counterparty with required fields.
func New(code, name string, cpType Type) *Counterparty {
	return &Counterparty{
		Catalog: entity.NewCatalog(code, name),
		Type:    cpType,
	}
}

// Validate implements entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	if c.AccountNo != "" && !accountNoRE.MatchString(c.AccountNo) {
		return apperror.NewValidation("account number must be numeric").
			WithDetail("field", "accountNo")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// IsCustomer returns true if counterparty buys from us.
func (c *Counterparty) IsCustomer() bool {
	return c.Type == TypeCustomer || c.Type == TypeBoth
}

// IsSupplier returns true if counterparty sells to us.
func (c *Counterparty) IsSupplier() bool {
	return c.Type == TypeSupplier || c.Type == TypeBoth
}

func isValidType(t Type) bool {
	switch t {
	case TypeCustomer, TypeSupplier, TypeBoth:
		return true
	}
	return false
}
