package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnLineRequest cantidad a devolver de una línea original.
type ReturnLineRequest struct {
	LineID   string          `json:"line_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReturnRequest body para POST /api/{bills|purchases}/:id/returns.
type ReturnRequest struct {
	Reason string              `json:"reason" validate:"max=500"`
	Lines  []ReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReturnLineResponse línea devuelta.
type ReturnLineResponse struct {
	ID               string          `json:"id"`
	OriginalLineID   string          `json:"original_line_id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	GSTRate          decimal.Decimal `json:"gst_rate"`
	GSTAmount        decimal.Decimal `json:"gst_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// ReturnResponse devolución con sus líneas.
type ReturnResponse struct {
	ID             string               `json:"id"`
	Type           string               `json:"type"`
	Number         string               `json:"number"`
	ParentID       string               `json:"parent_id"`
	Reason         string               `json:"reason,omitempty"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	GSTAmount      decimal.Decimal      `json:"gst_amount"`
	RoundOff       decimal.Decimal      `json:"round_off"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Status         string               `json:"status"`
	CreatedBy      string               `json:"created_by"`
	CreatedAt      time.Time            `json:"created_at"`
	Lines          []ReturnLineResponse `json:"lines"`
}
