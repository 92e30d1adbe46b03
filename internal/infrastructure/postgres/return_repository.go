package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo devoluciones de venta y de compra (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `id, tenant_id, return_type, number, parent_id, reason,
	subtotal, discount_amount, gst_amount, total_amount, round_off, status, created_by, created_at`

const returnLineColumns = `id, return_id, original_line_id, product_id, product_name, returned_quantity,
	unit_price, discount_amount, gst_rate, gst_amount, line_total`

// Create inserta la cabecera; número repetido -> domain.ErrDuplicateNumber.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.ReturnDocument) error {
	query := `
		INSERT INTO return_documents (` + returnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.TenantID, string(ret.Type), ret.Number, ret.ParentID, ret.Reason,
		ret.Subtotal, ret.DiscountAmount, ret.GSTAmount, ret.TotalAmount, ret.RoundOff, ret.Status, ret.CreatedBy, ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// CreateLine inserta una línea devuelta.
func (r *ReturnRepo) CreateLine(ctx context.Context, l *entity.ReturnLine) error {
	query := `
		INSERT INTO return_lines (` + returnLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ReturnID, l.OriginalLineID, l.ProductID, l.ProductName, l.ReturnedQuantity,
		l.UnitPrice, l.DiscountAmount, l.GSTRate, l.GSTAmount, l.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert return line: %w", err)
	}
	return nil
}

// GetByID devolución del tenant; nil si no existe.
func (r *ReturnRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ReturnDocument, error) {
	rows, err := r.q.Query(ctx, `SELECT `+returnColumns+` FROM return_documents WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get return: %w", err)
	}
	list, err := scanReturns(rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// ListByParent devoluciones de un documento en orden de creación.
func (r *ReturnRepo) ListByParent(ctx context.Context, tenantID, parentID string) ([]*entity.ReturnDocument, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+returnColumns+` FROM return_documents WHERE tenant_id = $1 AND parent_id = $2 ORDER BY created_at, number`,
		tenantID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return scanReturns(rows)
}

func scanReturns(rows pgx.Rows) ([]*entity.ReturnDocument, error) {
	defer rows.Close()
	var out []*entity.ReturnDocument
	for rows.Next() {
		var ret entity.ReturnDocument
		var t string
		if err := rows.Scan(&ret.ID, &ret.TenantID, &t, &ret.Number, &ret.ParentID, &ret.Reason,
			&ret.Subtotal, &ret.DiscountAmount, &ret.GSTAmount, &ret.TotalAmount, &ret.RoundOff,
			&ret.Status, &ret.CreatedBy, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		ret.Type = entity.ReturnType(t)
		out = append(out, &ret)
	}
	return out, rows.Err()
}

// ListLines líneas de una devolución del tenant.
func (r *ReturnRepo) ListLines(ctx context.Context, tenantID, returnID string) ([]*entity.ReturnLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rl.id, rl.return_id, rl.original_line_id, rl.product_id, rl.product_name, rl.returned_quantity,
		       rl.unit_price, rl.discount_amount, rl.gst_rate, rl.gst_amount, rl.line_total
		FROM return_lines rl
		JOIN return_documents r ON r.id = rl.return_id
		WHERE r.tenant_id = $1 AND rl.return_id = $2
		ORDER BY rl.id`, tenantID, returnID)
	if err != nil {
		return nil, fmt.Errorf("list return lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.ReturnLine
	for rows.Next() {
		var l entity.ReturnLine
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.OriginalLineID, &l.ProductID, &l.ProductName, &l.ReturnedQuantity,
			&l.UnitPrice, &l.DiscountAmount, &l.GSTRate, &l.GSTAmount, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan return line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ReturnedQuantities suma devuelta por línea original, solo devoluciones completadas.
func (r *ReturnRepo) ReturnedQuantities(ctx context.Context, tenantID, parentID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rl.original_line_id, SUM(rl.returned_quantity)
		FROM return_lines rl
		JOIN return_documents r ON r.id = rl.return_id
		WHERE r.tenant_id = $1 AND r.parent_id = $2 AND r.status = $3
		GROUP BY rl.original_line_id`, tenantID, parentID, entity.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("returned quantities: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var lineID string
		var qty decimal.Decimal
		if err := rows.Scan(&lineID, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[lineID] = qty
	}
	return out, rows.Err()
}

// NumberExists indica si el número de devolución ya está usado.
func (r *ReturnRepo) NumberExists(ctx context.Context, tenantID string, returnType entity.ReturnType, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM return_documents WHERE tenant_id = $1 AND return_type = $2 AND number = $3)`,
		tenantID, string(returnType), number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("return number exists: %w", err)
	}
	return exists, nil
}

// MaxNumberWithPrefix mayor número de devolución con el prefijo.
func (r *ReturnRepo) MaxNumberWithPrefix(ctx context.Context, tenantID string, returnType entity.ReturnType, prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(ctx, `
		SELECT number FROM return_documents
		WHERE tenant_id = $1 AND return_type = $2 AND number LIKE $3
		ORDER BY length(number) DESC, number DESC
		LIMIT 1`, tenantID, string(returnType), likePrefix(prefix)).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("max return number: %w", err)
	}
	return number, nil
}
