package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
	"retailcore/internal/domain/documents/sale"
)

func TestCreateSaleRequest_ToSale(t *testing.T) {
	customerID := id.New()
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	req := CreateSaleRequest{
		CustomerID: customerID.String(),
		Date:       &date,
		Comment:    "walk-in",
		Lines: []SaleLineRequest{
			{
				Description: "Widget",
				Qty:         types.NewQuantityFromFloat64(2),
				UnitPrice:   types.MustMoney("10.00"),
				TaxPct:      types.MustMoney("18"),
			},
		},
	}

	sl, err := req.ToSale()
	require.NoError(t, err)

	assert.Equal(t, customerID, sl.CustomerID)
	assert.Equal(t, date, sl.Date)
	assert.Equal(t, "walk-in", sl.Comment)
	assert.Equal(t, sale.StatusPending, sl.Status)
	require.Len(t, sl.Lines, 1)
	assert.Equal(t, sl.ID, sl.Lines[0].SaleID)
	assert.False(t, id.IsNil(sl.Lines[0].ID))
}

func TestCreateSaleRequest_ToSale_BadCustomerID(t *testing.T) {
	req := CreateSaleRequest{CustomerID: "not-a-uuid"}

	_, err := req.ToSale()
	assert.Error(t, err)
}

func TestFromSale_DerivesDueAmount(t *testing.T) {
	sl := sale.New(id.New())
	sl.Number = "INV-260315-0001"
	sl.Lines = []sale.Line{{
		ID:          id.New(),
		SaleID:      sl.ID,
		Description: "Widget",
		Qty:         types.NewQuantityFromFloat64(1),
		UnitPrice:   types.MustMoney("100.00"),
	}}
	sl.ComputeTotals()
	sl.ApplyPayment(types.MustMoney("40.00"))

	resp := FromSale(sl)

	assert.Equal(t, "INV-260315-0001", resp.Number)
	assert.Equal(t, string(sale.StatusPartiallyPaid), resp.Status)
	assert.True(t, resp.DueAmount.Equal(types.MustMoney("60.00")))
	require.Len(t, resp.Lines, 1)
}

func TestFromSales_OmitsLines(t *testing.T) {
	sl := sale.New(id.New())
	sl.Lines = []sale.Line{{ID: id.New(), Description: "Widget"}}

	out := FromSales([]*sale.Sale{sl})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Lines)
}
