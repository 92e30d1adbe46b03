package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo y de escritura de stock.
// Las lecturas devuelven nil, nil si el producto no existe en el tenant.
type ProductRepository interface {
	// Create da de alta un producto; ErrDuplicate si el SKU ya existe en el tenant.
	Create(ctx context.Context, p *entity.Product) error
	// List productos del tenant ordenados por nombre.
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error)
	// UpdateStock escribe stock_quantity. Solo lo invoca inventory.Ledger.Post.
	UpdateStock(ctx context.Context, tenantID, id string, quantity decimal.Decimal) error
}
