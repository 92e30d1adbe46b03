package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de producto. OpeningStock entra por el libro como ajuste.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Unit          string          `json:"unit" validate:"max=20"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	OpeningStock  decimal.Decimal `json:"opening_stock"`
}

// AdjustStockRequest ajuste manual de inventario; Quantity es el delta con signo.
type AdjustStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason" validate:"required,max=500"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku,omitempty"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PageResponse datos de paginación.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
