package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// Ledger primitivas de posteo al libro de stock. Siempre se invocan con los
// repositorios de la transacción del llamador; nunca abren una propia.
type Ledger struct {
	now ports.Clock
}

// NewLedger construye el libro con la fuente de hora dada.
func NewLedger(now ports.Clock) *Ledger {
	if now == nil {
		now = ports.SystemClock
	}
	return &Ledger{now: now}
}

// PostInput un movimiento de stock.
type PostInput struct {
	TenantID      string
	ProductID     string
	Delta         decimal.Decimal // positivo acredita, negativo debita
	Type          entity.MovementType
	ReferenceID   string
	ReferenceType string
	Note          string
	Actor         string
	// AllowNegative permite que el débito deje el stock en negativo.
	AllowNegative bool
}

// Posting resultado de un posteo: el asiento escrito y el producto ya actualizado.
type Posting struct {
	Entry   *entity.LedgerEntry
	Product *entity.Product
}

// Post bloquea el producto, calcula after = before + delta, valida el stock,
// escribe stock_quantity y agrega un asiento inmutable.
func (l *Ledger) Post(ctx context.Context, r repository.Repos, in PostInput) (*Posting, error) {
	if in.Delta.IsZero() {
		return nil, domain.Invalid("quantity", "el movimiento no puede ser cero")
	}
	if err := pricing.CheckScale("quantity", in.Delta, pricing.QuantityPlaces); err != nil {
		return nil, err
	}
	product, err := r.Products.GetForUpdate(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, domain.Storage("lock product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product", in.ProductID)
	}

	before := product.StockQuantity
	after := before.Add(in.Delta)
	if after.IsNegative() && in.Delta.IsNegative() && !in.AllowNegative {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   before,
			Requested:   in.Delta.Neg(),
		}
	}

	if err := r.Products.UpdateStock(ctx, in.TenantID, product.ID, after); err != nil {
		return nil, domain.Storage("update stock", err)
	}
	now := l.now()
	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		TenantID:       in.TenantID,
		ProductID:      product.ID,
		Type:           in.Type,
		ReferenceID:    in.ReferenceID,
		ReferenceType:  in.ReferenceType,
		QuantityChange: in.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Note:           in.Note,
		CreatedBy:      in.Actor,
		CreatedAt:      now,
	}
	if err := r.Ledger.Append(ctx, entry); err != nil {
		return nil, domain.Storage("append ledger entry", err)
	}
	product.StockQuantity = after
	product.UpdatedAt = now
	return &Posting{Entry: entry, Product: product}, nil
}

// LockProducts bloquea los productos indicados en orden ascendente de id.
// Todo flujo que postea sobre varios productos los bloquea aquí antes del primer Post.
func (l *Ledger) LockProducts(ctx context.Context, r repository.Repos, tenantID string, ids []string) error {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for _, id := range slices.Compact(sorted) {
		p, err := r.Products.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return domain.Storage("lock product", err)
		}
		if p == nil {
			return domain.NotFound("product", id)
		}
	}
	return nil
}

// ReverseInput deshace el efecto en stock de un documento.
type ReverseInput struct {
	TenantID     string
	DocumentID   string
	DocumentType entity.DocumentType
	Actor        string
	Note         string
	// Exclude cantidades por línea que no se revierten (ya volvieron al stock por una devolución).
	Exclude map[string]decimal.Decimal
	// Lines líneas a revertir; si es nil se leen las del documento.
	Lines []*entity.LineItem
}

// Reverse postea, por cada línea del documento, el delta original negado como
// asiento tipo return que referencia al mismo documento.
func (l *Ledger) Reverse(ctx context.Context, r repository.Repos, in ReverseInput) ([]*Posting, error) {
	lines := in.Lines
	if lines == nil {
		var err error
		lines, err = r.Documents.ListLines(ctx, in.TenantID, in.DocumentID)
		if err != nil {
			return nil, domain.Storage("list lines", err)
		}
	}
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	if err := l.LockProducts(ctx, r, in.TenantID, ids); err != nil {
		return nil, err
	}
	sign := in.DocumentType.StockSign()
	postings := make([]*Posting, 0, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if ex, ok := in.Exclude[line.ID]; ok {
			qty = qty.Sub(ex)
		}
		if !qty.IsPositive() {
			continue
		}
		p, err := l.Post(ctx, r, PostInput{
			TenantID:      in.TenantID,
			ProductID:     line.ProductID,
			Delta:         qty.Mul(sign).Neg(),
			Type:          entity.MovementReturn,
			ReferenceID:   in.DocumentID,
			ReferenceType: string(in.DocumentType),
			Note:          in.Note,
			Actor:         in.Actor,
		})
		if err != nil {
			return nil, fmt.Errorf("reverse line %d: %w", line.Position, err)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
