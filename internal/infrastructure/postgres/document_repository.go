package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo ventas y compras con sus líneas (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, tenant_id, doc_type, number, party_name, party_contact,
	subtotal, discount_amount, gst_amount, total_amount, round_off, payment_mode, status, tax_suppressed, notes,
	is_locked, locked_reason, locked_by, locked_at, edit_count, last_edited_at, last_edited_by,
	cancel_reason, cancelled_at, cancelled_by, created_by, created_at, updated_at`

const lineColumns = `id, document_id, tenant_id, position, product_id, product_name, sku, unit,
	quantity, unit_price, discount_amount, gst_rate, gst_amount, line_subtotal, line_total`

// Create inserta la cabecera. La violación del índice único de número se
// traduce en domain.ErrDuplicateNumber para que el llamador reintente.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.TenantID, string(d.Type), d.Number, d.PartyName, d.PartyContact,
		d.Subtotal, d.DiscountAmount, d.GSTAmount, d.TotalAmount, d.RoundOff, d.PaymentMode, d.Status, d.TaxSuppressed, d.Notes,
		d.IsLocked, d.LockedReason, d.LockedBy, d.LockedAt, d.EditCount, d.LastEditedAt, d.LastEditedBy,
		d.CancelReason, d.CancelledAt, d.CancelledBy, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// CreateLine inserta una línea del documento.
func (r *DocumentRepo) CreateLine(ctx context.Context, l *entity.LineItem) error {
	query := `
		INSERT INTO document_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.DocumentID, l.TenantID, l.Position, l.ProductID, l.ProductName, l.SKU, l.Unit,
		l.Quantity, l.UnitPrice, l.DiscountAmount, l.GSTRate, l.GSTAmount, l.LineSubtotal, l.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

// GetByID documento del tenant y tipo; nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE tenant_id = $1 AND doc_type = $2 AND id = $3`,
		tenantID, docType, id)
}

// GetForUpdate igual que GetByID con bloqueo de fila.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE tenant_id = $1 AND doc_type = $2 AND id = $3 FOR UPDATE`,
		tenantID, docType, id)
}

func (r *DocumentRepo) get(ctx context.Context, query, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error) {
	var d entity.Document
	var t string
	err := r.q.QueryRow(ctx, query, tenantID, string(docType), id).Scan(
		&d.ID, &d.TenantID, &t, &d.Number, &d.PartyName, &d.PartyContact,
		&d.Subtotal, &d.DiscountAmount, &d.GSTAmount, &d.TotalAmount, &d.RoundOff, &d.PaymentMode, &d.Status, &d.TaxSuppressed, &d.Notes,
		&d.IsLocked, &d.LockedReason, &d.LockedBy, &d.LockedAt, &d.EditCount, &d.LastEditedAt, &d.LastEditedBy,
		&d.CancelReason, &d.CancelledAt, &d.CancelledBy, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.Type = entity.DocumentType(t)
	return &d, nil
}

// Update reescribe los campos mutables de la cabecera (totales, estado, bloqueo, edición, anulación).
func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents
		SET party_name = $3, party_contact = $4,
		    subtotal = $5, discount_amount = $6, gst_amount = $7, total_amount = $8, round_off = $9,
		    payment_mode = $10, status = $11, tax_suppressed = $12, notes = $13,
		    is_locked = $14, locked_reason = $15, locked_by = $16, locked_at = $17,
		    edit_count = $18, last_edited_at = $19, last_edited_by = $20,
		    cancel_reason = $21, cancelled_at = $22, cancelled_by = $23, updated_at = $24
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		d.TenantID, d.ID, d.PartyName, d.PartyContact,
		d.Subtotal, d.DiscountAmount, d.GSTAmount, d.TotalAmount, d.RoundOff,
		d.PaymentMode, d.Status, d.TaxSuppressed, d.Notes,
		d.IsLocked, d.LockedReason, d.LockedBy, d.LockedAt,
		d.EditCount, d.LastEditedAt, d.LastEditedBy,
		d.CancelReason, d.CancelledAt, d.CancelledBy, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("document", d.ID)
	}
	return nil
}

// ListLines líneas del documento por posición.
func (r *DocumentRepo) ListLines(ctx context.Context, tenantID, documentID string) ([]*entity.LineItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+lineColumns+` FROM document_lines WHERE tenant_id = $1 AND document_id = $2 ORDER BY position`,
		tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.TenantID, &l.Position, &l.ProductID, &l.ProductName, &l.SKU, &l.Unit,
			&l.Quantity, &l.UnitPrice, &l.DiscountAmount, &l.GSTRate, &l.GSTAmount, &l.LineSubtotal, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// DeleteLines borra las líneas para reemplazarlas en una edición. Las
// referencias desde return_lines se verifican al commit (FK diferida).
func (r *DocumentRepo) DeleteLines(ctx context.Context, tenantID, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE tenant_id = $1 AND document_id = $2`, tenantID, documentID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return nil
}

// NumberExists indica si el número ya está usado por el tenant en ese tipo.
func (r *DocumentRepo) NumberExists(ctx context.Context, tenantID string, docType entity.DocumentType, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE tenant_id = $1 AND doc_type = $2 AND number = $3)`,
		tenantID, string(docType), number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("document number exists: %w", err)
	}
	return exists, nil
}

// MaxNumberWithPrefix mayor número con el prefijo; ordena por largo y luego texto
// para que un consecutivo de más dígitos quede arriba.
func (r *DocumentRepo) MaxNumberWithPrefix(ctx context.Context, tenantID string, docType entity.DocumentType, prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(ctx, `
		SELECT number FROM documents
		WHERE tenant_id = $1 AND doc_type = $2 AND number LIKE $3
		ORDER BY length(number) DESC, number DESC
		LIMIT 1`, tenantID, string(docType), likePrefix(prefix)).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("max document number: %w", err)
	}
	return number, nil
}
