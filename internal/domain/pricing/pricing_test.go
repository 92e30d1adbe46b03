package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func unitRounder(t *testing.T) pricing.Rounder {
	r, err := pricing.NewRounder(pricing.RoundUnit)
	require.NoError(t, err)
	return r
}

func TestComputeLine_EjemploBasico(t *testing.T) {
	// 10 unidades a 50 con IVA 18%: 500 + 90 = 590
	l := pricing.ComputeLine(pricing.LineInput{Quantity: d("10"), UnitPrice: d("50"), GSTRate: d("18")})
	assert.True(t, l.Subtotal.Equal(d("500")))
	assert.True(t, l.Discount.IsZero())
	assert.True(t, l.GST.Equal(d("90")))
	assert.True(t, l.Total.Equal(d("590")))
}

func TestComputeLine_DescuentoEImpuestoSobreNeto(t *testing.T) {
	l := pricing.ComputeLine(pricing.LineInput{
		Quantity:  d("3"),
		UnitPrice: d("100"),
		Discount:  pricing.Discount{Percent: d("10")},
		GSTRate:   d("5"),
	})
	assert.True(t, l.Subtotal.Equal(d("300")))
	assert.True(t, l.Discount.Equal(d("30")))
	assert.True(t, l.GST.Equal(d("13.5")))
	assert.True(t, l.Total.Equal(d("283.5")))
}

func TestComputeLine_ImpuestoSuprimido(t *testing.T) {
	l := pricing.ComputeLine(pricing.LineInput{Quantity: d("2"), UnitPrice: d("10"), GSTRate: d("18"), TaxSuppressed: true})
	assert.True(t, l.GST.IsZero())
	assert.True(t, l.Total.Equal(d("20")))
}

func TestComputeTotals_RedondeoAUnidad(t *testing.T) {
	lines := []pricing.LineAmounts{
		pricing.ComputeLine(pricing.LineInput{Quantity: d("1"), UnitPrice: d("99.30"), GSTRate: d("12")}),
	}
	tot := pricing.ComputeTotals(lines, pricing.Discount{}, unitRounder(t))

	// 99.30 + 11.92 = 111.22 -> 111, round_off -0.22
	assert.True(t, tot.TotalBeforeRound.Equal(d("111.22")))
	assert.True(t, tot.Total.Equal(d("111")))
	assert.True(t, tot.RoundOff.Equal(d("-0.22")))
	assert.True(t, tot.Subtotal.Sub(tot.Discount).Add(tot.GST).Add(tot.RoundOff).Equal(tot.Total))
}

func TestComputeTotals_DescuentoDeDocumento(t *testing.T) {
	lines := []pricing.LineAmounts{
		pricing.ComputeLine(pricing.LineInput{Quantity: d("10"), UnitPrice: d("50"), GSTRate: d("18")}),
	}
	byAmount := pricing.ComputeTotals(lines, pricing.Discount{Amount: d("25")}, unitRounder(t))
	assert.True(t, byAmount.Discount.Equal(d("25")))
	assert.True(t, byAmount.Total.Equal(d("565")))

	byPercent := pricing.ComputeTotals(lines, pricing.Discount{Percent: d("10")}, unitRounder(t))
	assert.True(t, byPercent.Discount.Equal(d("50")))
	assert.True(t, byPercent.Total.Equal(d("540")))
}

func TestNewRounder_Modos(t *testing.T) {
	cent, err := pricing.NewRounder(pricing.RoundCent)
	require.NoError(t, err)
	assert.True(t, cent.Round(d("10.555")).Equal(d("10.56")))

	none, err := pricing.NewRounder(pricing.RoundNone)
	require.NoError(t, err)
	assert.True(t, none.Round(d("10.555")).Equal(d("10.555")))

	_, err = pricing.NewRounder("banker")
	assert.Error(t, err)
}

func TestProportional(t *testing.T) {
	assert.True(t, pricing.Proportional(d("90"), d("4"), d("10")).Equal(d("36")))
	assert.True(t, pricing.Proportional(d("10"), d("1"), d("3")).Equal(d("3.33")))
	assert.True(t, pricing.Proportional(d("10"), d("3"), d("3")).Equal(d("10")))
	assert.True(t, pricing.Proportional(d("10"), d("1"), decimal.Zero).IsZero())
}

func TestCheckScale(t *testing.T) {
	cases := []struct {
		v      string
		places int32
		ok     bool
	}{
		{"1.5", pricing.QuantityPlaces, true},
		{"1.500", pricing.QuantityPlaces, true},
		{"1.5000", pricing.QuantityPlaces, true},
		{"1.0005", pricing.QuantityPlaces, false},
		{"0.0004", pricing.QuantityPlaces, false},
		{"10.99", pricing.MoneyPlaces, true},
		{"10.999", pricing.MoneyPlaces, false},
		{"-0.001", pricing.MoneyPlaces, false},
	}
	for _, c := range cases {
		err := pricing.CheckScale("x", d(c.v), c.places)
		if c.ok {
			assert.NoError(t, err, c.v)
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidInput, c.v)
		}
	}
}
