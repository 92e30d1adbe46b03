package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo de un tenant.
// StockQuantity solo se modifica mediante el posteo al libro de stock (inventory.Ledger.Post).
type Product struct {
	ID            string
	TenantID      string
	Name          string
	SKU           string // código único por tenant
	Unit          string
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	GSTRate       decimal.Decimal // porcentaje, ej: 18
	StockQuantity decimal.Decimal
	MinStockLevel decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelowMinimum indica si el stock actual quedó por debajo del mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.MinStockLevel.IsPositive() && p.StockQuantity.LessThan(p.MinStockLevel)
}
