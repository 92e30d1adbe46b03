package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnType variante de devolución.
type ReturnType string

const (
	ReturnSales    ReturnType = "sales_return"
	ReturnPurchase ReturnType = "purchase_return"
)

// ParentType tipo de documento al que referencia la devolución.
func (t ReturnType) ParentType() DocumentType {
	if t == ReturnPurchase {
		return DocumentPurchase
	}
	return DocumentBill
}

// Series serie de numeración de la devolución.
func (t ReturnType) Series() string {
	if t == ReturnPurchase {
		return SeriesPurchaseReturn
	}
	return SeriesSalesReturn
}

// StockSign la devolución de venta acredita stock, la de compra lo debita.
func (t ReturnType) StockSign() decimal.Decimal {
	if t == ReturnPurchase {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// ReturnDocument cabecera de una devolución parcial sobre un documento.
type ReturnDocument struct {
	ID             string
	TenantID       string
	Type           ReturnType
	Number         string
	ParentID       string
	Reason         string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	GSTAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	RoundOff       decimal.Decimal
	Status         string // completed
	CreatedBy      string
	CreatedAt      time.Time
}

// ReturnLine línea devuelta; referencia la línea original del documento padre.
type ReturnLine struct {
	ID               string
	ReturnID         string
	OriginalLineID   string
	ProductID        string
	ProductName      string
	ReturnedQuantity decimal.Decimal
	UnitPrice        decimal.Decimal
	DiscountAmount   decimal.Decimal
	GSTRate          decimal.Decimal
	GSTAmount        decimal.Decimal
	LineTotal        decimal.Decimal
}
