package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest línea de venta o compra.
// UnitPrice y GSTRate son opcionales: si faltan se toman del producto.
type LineRequest struct {
	LineID          string           `json:"line_id,omitempty"` // solo en ediciones: conserva la línea existente
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	GSTRate         *decimal.Decimal `json:"gst_rate,omitempty"`
}

// DocumentRequest body para POST /api/bills y POST /api/purchases, y base de la edición.
type DocumentRequest struct {
	PartyName       string          `json:"party_name" validate:"max=200"`
	PartyContact    string          `json:"party_contact" validate:"max=100"`
	PaymentMode     string          `json:"payment_mode" validate:"omitempty,oneof=cash card upi credit bank other"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxSuppressed   bool            `json:"tax_suppressed"`
	Notes           string          `json:"notes" validate:"max=1000"`
	// Status solo aplica a compras: completed (por defecto) o draft.
	Status string        `json:"status,omitempty" validate:"omitempty,oneof=completed draft"`
	Lines  []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// EditDocumentRequest body para PUT /api/{bills|purchases}/:id. Reemplaza cabecera y líneas.
type EditDocumentRequest struct {
	DocumentRequest
	Reason string `json:"reason" validate:"required,max=500"`
}

// CancelRequest body para POST /api/{bills|purchases}/:id/cancel.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// LockRequest body para POST /api/{bills|purchases}/:id/lock.
type LockRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// LineResponse línea en respuestas.
type LineResponse struct {
	ID             string          `json:"id"`
	Position       int             `json:"position"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GSTRate        decimal.Decimal `json:"gst_rate"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	LineSubtotal   decimal.Decimal `json:"line_subtotal"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// LowStockWarning producto que quedó por debajo de su mínimo tras la venta.
type LowStockWarning struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

// DocumentResponse venta o compra con sus líneas.
type DocumentResponse struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Number         string            `json:"number"`
	PartyName      string            `json:"party_name,omitempty"`
	PartyContact   string            `json:"party_contact,omitempty"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	GSTAmount      decimal.Decimal   `json:"gst_amount"`
	RoundOff       decimal.Decimal   `json:"round_off"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	PaymentMode    string            `json:"payment_mode,omitempty"`
	Status         string            `json:"status"`
	TaxSuppressed  bool              `json:"tax_suppressed"`
	Notes          string            `json:"notes,omitempty"`
	IsLocked       bool              `json:"is_locked"`
	LockedReason   string            `json:"locked_reason,omitempty"`
	LockedBy       string            `json:"locked_by,omitempty"`
	EditCount      int               `json:"edit_count"`
	LastEditedAt   *time.Time        `json:"last_edited_at,omitempty"`
	LastEditedBy   string            `json:"last_edited_by,omitempty"`
	CancelReason   string            `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time        `json:"cancelled_at,omitempty"`
	CreatedBy      string            `json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	Lines          []LineResponse    `json:"lines"`
	LowStock       []LowStockWarning `json:"low_stock,omitempty"`
}
