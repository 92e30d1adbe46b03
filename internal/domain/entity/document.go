package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType variante del documento transaccional.
type DocumentType string

const (
	DocumentBill     DocumentType = "bill"
	DocumentPurchase DocumentType = "purchase"
)

// Valid indica si t es bill o purchase.
func (t DocumentType) Valid() bool {
	return t == DocumentBill || t == DocumentPurchase
}

// Series serie de numeración que usa el tipo de documento.
func (t DocumentType) Series() string {
	if t == DocumentPurchase {
		return SeriesPurchase
	}
	return SeriesBill
}

// StockSign +1 si el documento acredita stock (compra), -1 si lo debita (venta).
func (t DocumentType) StockSign() decimal.Decimal {
	if t == DocumentPurchase {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// MovementType tipo de movimiento del libro de stock que genera el documento.
func (t DocumentType) MovementType() MovementType {
	if t == DocumentPurchase {
		return MovementPurchase
	}
	return MovementSale
}

// Estados del documento.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusDraft     = "draft" // solo compras; no afecta stock
)

// Document cabecera de una venta (Bill) o compra (Purchase).
type Document struct {
	ID             string
	TenantID       string
	Type           DocumentType
	Number         string
	PartyName      string // cliente o proveedor
	PartyContact   string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	GSTAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	RoundOff       decimal.Decimal
	PaymentMode    string
	Status         string
	TaxSuppressed  bool // documento sin impuesto
	Notes          string

	IsLocked     bool
	LockedReason string
	LockedBy     string
	LockedAt     *time.Time

	EditCount    int
	LastEditedAt *time.Time
	LastEditedBy string

	CancelReason string
	CancelledAt  *time.Time
	CancelledBy  string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AffectsStock indica si el estado del documento tiene efecto en stock.
func (d *Document) AffectsStock() bool {
	return d.Status == StatusCompleted
}

// LineItem línea de un documento. Congela identidad del producto, cantidades y
// montos al momento de la transacción.
type LineItem struct {
	ID             string
	DocumentID     string
	TenantID       string
	Position       int
	ProductID      string
	ProductName    string
	SKU            string
	Unit           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	GSTRate        decimal.Decimal
	GSTAmount      decimal.Decimal
	LineSubtotal   decimal.Decimal // unit_price × quantity
	LineTotal      decimal.Decimal // subtotal − descuento + impuesto
}
