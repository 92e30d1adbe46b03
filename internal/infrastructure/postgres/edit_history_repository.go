package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.EditHistoryRepository = (*EditHistoryRepo)(nil)

// EditHistoryRepo historial de ediciones; append-only.
type EditHistoryRepo struct {
	q Querier
}

// NewEditHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEditHistoryRepository(q Querier) *EditHistoryRepo {
	return &EditHistoryRepo{q: q}
}

// Append inserta el registro. Un edit_number repetido es domain.ErrDuplicate.
func (r *EditHistoryRepo) Append(ctx context.Context, rec *entity.EditHistoryRecord) error {
	query := `
		INSERT INTO edit_history (id, tenant_id, transaction_type, transaction_id, edit_number,
			edited_by, reason, changes_summary, original_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.TenantID, string(rec.TransactionType), rec.TransactionID, rec.EditNumber,
		rec.EditedBy, rec.Reason, rec.ChangesSummary, string(rec.OriginalData), rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert edit history: %w", err)
	}
	return nil
}

// ListByTransaction registros del documento en orden de edit_number.
func (r *EditHistoryRepo) ListByTransaction(ctx context.Context, tenantID string, docType entity.DocumentType, transactionID string) ([]*entity.EditHistoryRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, transaction_type, transaction_id, edit_number,
		       edited_by, reason, changes_summary, original_data::text, created_at
		FROM edit_history
		WHERE tenant_id = $1 AND transaction_type = $2 AND transaction_id = $3
		ORDER BY edit_number`, tenantID, string(docType), transactionID)
	if err != nil {
		return nil, fmt.Errorf("list edit history: %w", err)
	}
	defer rows.Close()
	var out []*entity.EditHistoryRecord
	for rows.Next() {
		var rec entity.EditHistoryRecord
		var t, data string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &t, &rec.TransactionID, &rec.EditNumber,
			&rec.EditedBy, &rec.Reason, &rec.ChangesSummary, &data, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edit history: %w", err)
		}
		rec.TransactionType = entity.DocumentType(t)
		rec.OriginalData = []byte(data)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
