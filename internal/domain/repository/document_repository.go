package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// DocumentRepository puerto de persistencia de ventas y compras con sus líneas.
// Las lecturas devuelven nil, nil si el documento no existe en el tenant.
type DocumentRepository interface {
	// Create inserta la cabecera. Devuelve domain.ErrDuplicateNumber si el número ya existe.
	Create(ctx context.Context, doc *entity.Document) error
	CreateLine(ctx context.Context, line *entity.LineItem) error
	GetByID(ctx context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error)
	// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	// ListLines devuelve las líneas ordenadas por posición.
	ListLines(ctx context.Context, tenantID, documentID string) ([]*entity.LineItem, error)
	DeleteLines(ctx context.Context, tenantID, documentID string) error
	NumberExists(ctx context.Context, tenantID string, docType entity.DocumentType, number string) (bool, error)
	// MaxNumberWithPrefix mayor número existente que empieza con prefix ("" si no hay).
	MaxNumberWithPrefix(ctx context.Context, tenantID string, docType entity.DocumentType, prefix string) (string, error)
}
