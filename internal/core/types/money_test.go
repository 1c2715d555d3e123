package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxFromGross(t *testing.T) {
	gross := MustMoney("1180.00")
	rate := MustMoney("18")

	tax := TaxFromGross(gross, rate)

	assert.True(t, MustMoney("180").Equal(RoundMoney(tax)), "got %s", tax)
}

func TestTaxFromGross_DeferredRounding(t *testing.T) {
	// Intermediate result is not rounded; 100 at 18% inclusive gives a
	// repeating fraction that must survive until the final rounding.
	gross := MustMoney("100.00")
	rate := MustMoney("18")

	tax := TaxFromGross(gross, rate)
	net := gross.Sub(tax)

	// Rounded parts still reconstruct the gross.
	assert.True(t, gross.Equal(RoundMoney(net).Add(RoundMoney(tax))))
}

func TestTaxFromNet(t *testing.T) {
	net := MustMoney("1000.00")
	rate := MustMoney("18")

	tax := TaxFromNet(net, rate)

	assert.True(t, MustMoney("180").Equal(tax), "got %s", tax)
}

func TestSumMoney(t *testing.T) {
	values := []Money{
		MustMoney("0.10"),
		MustMoney("0.20"),
		MustMoney("0.30"),
	}

	// The classic float trap: 0.1+0.2+0.3 must be exactly 0.6.
	assert.True(t, MustMoney("0.60").Equal(SumMoney(values)))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "10.56", RoundMoney(MustMoney("10.555")).String())
	assert.Equal(t, "10.55", RoundMoney(MustMoney("10.554")).String())
	assert.Equal(t, "-10.56", RoundMoney(MustMoney("-10.555")).String())
}

func TestNewMoneyFromString_Invalid(t *testing.T) {
	_, err := NewMoneyFromString("not-a-number")
	require.Error(t, err)
}
