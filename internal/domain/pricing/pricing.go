// Package pricing calcula montos de línea y totales de documento.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// moneyPlaces decimales de los montos de línea.
const moneyPlaces = 2

// Discount descuento expresado como monto fijo o porcentaje (se usa el que no sea cero; el monto tiene prioridad).
type Discount struct {
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// Resolve devuelve el monto de descuento sobre base.
func (d Discount) Resolve(base decimal.Decimal) decimal.Decimal {
	if !d.Amount.IsZero() {
		return d.Amount
	}
	if d.Percent.IsZero() {
		return decimal.Zero
	}
	return base.Mul(d.Percent).Div(hundred).Round(moneyPlaces)
}

// LineInput datos para calcular una línea.
type LineInput struct {
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Discount      Discount
	GSTRate       decimal.Decimal
	TaxSuppressed bool
}

// LineAmounts montos calculados de una línea.
type LineAmounts struct {
	Subtotal decimal.Decimal // unit_price × quantity
	Discount decimal.Decimal
	GST      decimal.Decimal
	Total    decimal.Decimal // subtotal − descuento + impuesto
}

// Net base imponible de la línea.
func (l LineAmounts) Net() decimal.Decimal {
	return l.Subtotal.Sub(l.Discount)
}

// ComputeLine calcula subtotal, descuento, impuesto y total de una línea.
func ComputeLine(in LineInput) LineAmounts {
	subtotal := in.UnitPrice.Mul(in.Quantity).Round(moneyPlaces)
	discount := in.Discount.Resolve(subtotal)
	gst := decimal.Zero
	if !in.TaxSuppressed {
		gst = subtotal.Sub(discount).Mul(in.GSTRate).Div(hundred).Round(moneyPlaces)
	}
	return LineAmounts{
		Subtotal: subtotal,
		Discount: discount,
		GST:      gst,
		Total:    subtotal.Sub(discount).Add(gst),
	}
}

// Totals totales del documento.
// Invariante: Total = Subtotal − Discount + GST + RoundOff.
type Totals struct {
	Subtotal         decimal.Decimal // Σ(subtotal − descuento de línea)
	Discount         decimal.Decimal // descuento del documento
	GST              decimal.Decimal
	TotalBeforeRound decimal.Decimal
	RoundOff         decimal.Decimal
	Total            decimal.Decimal
}

// ComputeTotals agrega las líneas, aplica el descuento del documento y redondea.
func ComputeTotals(lines []LineAmounts, discount Discount, r Rounder) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Net())
		t.GST = t.GST.Add(l.GST)
	}
	t.Discount = discount.Resolve(t.Subtotal)
	t.TotalBeforeRound = t.Subtotal.Sub(t.Discount).Add(t.GST)
	t.Total = r.Round(t.TotalBeforeRound)
	t.RoundOff = t.Total.Sub(t.TotalBeforeRound)
	return t
}

// Proportional parte de amount que corresponde a part de whole (devoluciones parciales).
func Proportional(amount, part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	if part.Equal(whole) {
		return amount
	}
	return amount.Mul(part).Div(whole).Round(moneyPlaces)
}
