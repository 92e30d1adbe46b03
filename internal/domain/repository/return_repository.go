package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ReturnRepository puerto de persistencia de devoluciones.
type ReturnRepository interface {
	// Create inserta la cabecera. Devuelve domain.ErrDuplicateNumber si el número ya existe.
	Create(ctx context.Context, ret *entity.ReturnDocument) error
	CreateLine(ctx context.Context, line *entity.ReturnLine) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ReturnDocument, error)
	ListLines(ctx context.Context, tenantID, returnID string) ([]*entity.ReturnLine, error)
	ListByParent(ctx context.Context, tenantID, parentID string) ([]*entity.ReturnDocument, error)
	// ReturnedQuantities suma de cantidades devueltas (devoluciones completadas) por línea original.
	ReturnedQuantities(ctx context.Context, tenantID, parentID string) (map[string]decimal.Decimal, error)
	NumberExists(ctx context.Context, tenantID string, returnType entity.ReturnType, number string) (bool, error)
	MaxNumberWithPrefix(ctx context.Context, tenantID string, returnType entity.ReturnType, prefix string) (string, error)
}
