package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo libro de stock. Solo INSERT y SELECT.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

const ledgerColumns = `seq, id, tenant_id, product_id, movement_type, reference_id, reference_type,
	quantity_change, quantity_before, quantity_after, note, created_by, created_at`

// Append inserta el asiento y completa e.Seq con el orden de escritura asignado.
func (r *StockLedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (id, tenant_id, product_id, movement_type, reference_id, reference_type,
			quantity_change, quantity_before, quantity_after, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.TenantID, e.ProductID, string(e.Type), e.ReferenceID, e.ReferenceType,
		e.QuantityChange, e.QuantityBefore, e.QuantityAfter, e.Note, e.CreatedBy, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByProduct asientos del producto por seq.
func (r *StockLedgerRepo) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+ledgerColumns+` FROM stock_ledger WHERE tenant_id = $1 AND product_id = $2 ORDER BY seq`,
		tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by product: %w", err)
	}
	return scanLedger(rows)
}

// ListByReference asientos generados por un documento o devolución.
func (r *StockLedgerRepo) ListByReference(ctx context.Context, tenantID, referenceType, referenceID string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+ledgerColumns+` FROM stock_ledger WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3 ORDER BY seq`,
		tenantID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by reference: %w", err)
	}
	return scanLedger(rows)
}

func scanLedger(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var out []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var movement string
		if err := rows.Scan(&e.Seq, &e.ID, &e.TenantID, &e.ProductID, &movement, &e.ReferenceID, &e.ReferenceType,
			&e.QuantityChange, &e.QuantityBefore, &e.QuantityAfter, &e.Note, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Type = entity.MovementType(movement)
		out = append(out, &e)
	}
	return out, rows.Err()
}
