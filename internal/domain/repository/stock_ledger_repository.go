package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// StockLedgerRepository libro de stock append-only: no expone Update ni Delete.
type StockLedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByProduct devuelve los asientos del producto en orden de escritura.
	ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.LedgerEntry, error)
	ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.LedgerEntry, error)
}
