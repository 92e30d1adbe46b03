package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de asiento en el libro de stock.
type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementPurchase   MovementType = "purchase"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
)

// Tipos de referencia: qué documento originó el asiento.
const (
	ReferenceBill           = "bill"
	ReferencePurchase       = "purchase"
	ReferenceSalesReturn    = "sales_return"
	ReferencePurchaseReturn = "purchase_return"
)

// LedgerEntry asiento inmutable del libro de stock.
// Invariante: QuantityAfter = QuantityBefore + QuantityChange, y el QuantityAfter del
// último asiento de un producto coincide con su StockQuantity.
type LedgerEntry struct {
	ID             string
	Seq            int64 // orden de escritura
	TenantID       string
	ProductID      string
	Type           MovementType
	ReferenceID    string
	ReferenceType  string
	QuantityChange decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Note           string
	CreatedBy      string
	CreatedAt      time.Time
}
