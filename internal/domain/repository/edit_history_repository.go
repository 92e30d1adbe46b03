package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// EditHistoryRepository historial de ediciones append-only.
type EditHistoryRepository interface {
	Append(ctx context.Context, record *entity.EditHistoryRecord) error
	// ListByTransaction devuelve los registros en orden de edit_number.
	ListByTransaction(ctx context.Context, tenantID string, docType entity.DocumentType, transactionID string) ([]*entity.EditHistoryRecord, error)
}
