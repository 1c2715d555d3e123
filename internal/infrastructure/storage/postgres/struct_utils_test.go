package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/domain/ledger"
)

func TestExtractDBColumns_Account(t *testing.T) {
	cols := ExtractDBColumns[ledger.Account]()

	assert.Equal(t, []string{
		"id", "deletion_mark", "version",
		"code", "name",
		"type", "is_cash", "is_bank", "is_customer", "is_supplier",
	}, cols)
}

func TestExtractDBColumns_SkipsIgnoredFields(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Ignored string `db:"-"`
		NoTag   string
	}

	cols := ExtractDBColumns[row]()
	assert.Equal(t, []string{"id"}, cols)
}

func TestStructToMap_Counterparty(t *testing.T) {
	cp := counterparty.New("CP-001", "Acme Ltd", counterparty.TypeCustomer)
	cp.AccountNo = "1001"

	m := StructToMap(cp)
	require.NotNil(t, m)

	assert.Equal(t, cp.ID, m["id"])
	assert.Equal(t, "CP-001", m["code"])
	assert.Equal(t, "Acme Ltd", m["name"])
	assert.Equal(t, counterparty.TypeCustomer, m["type"])
	assert.Equal(t, "1001", m["account_no"])
	assert.Equal(t, 1, m["version"])

	// Embedded base fields are flattened, no nested keys.
	_, hasBase := m["BaseCatalog"]
	assert.False(t, hasBase)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
