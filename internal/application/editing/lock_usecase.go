package editing

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// Lock marca el documento como bloqueado. Solo owner o admin; no depende de la antigüedad ni del estado.
func (uc *EditUseCase) Lock(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string, in dto.LockRequest) (*dto.DocumentResponse, error) {
	if !actor.IsAdministrator() {
		return nil, fmt.Errorf("%w: solo owner o admin pueden bloquear documentos", domain.ErrForbidden)
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.setLock(ctx, actor, docType, id, func(doc *entity.Document) {
		now := uc.now()
		doc.IsLocked = true
		doc.LockedReason = in.Reason
		doc.LockedBy = actor.UserID
		doc.LockedAt = &now
		doc.UpdatedAt = now
	}, "documento bloqueado")
}

// Unlock quita el bloqueo. Solo owner o admin.
func (uc *EditUseCase) Unlock(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string) (*dto.DocumentResponse, error) {
	if !actor.IsAdministrator() {
		return nil, fmt.Errorf("%w: solo owner o admin pueden desbloquear documentos", domain.ErrForbidden)
	}
	return uc.setLock(ctx, actor, docType, id, func(doc *entity.Document) {
		doc.IsLocked = false
		doc.LockedReason = ""
		doc.LockedBy = ""
		doc.LockedAt = nil
		doc.UpdatedAt = uc.now()
	}, "documento desbloqueado")
}

func (uc *EditUseCase) setLock(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string, mutate func(*entity.Document), msg string) (*dto.DocumentResponse, error) {
	var resp *dto.DocumentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		doc, err := r.Documents.GetForUpdate(ctx, actor.TenantID, docType, id)
		if err != nil {
			return domain.Storage("get document", err)
		}
		if doc == nil {
			return domain.NotFound(string(docType), id)
		}
		mutate(doc)
		if err := r.Documents.Update(ctx, doc); err != nil {
			return domain.Storage("update document", err)
		}
		lines, err := r.Documents.ListLines(ctx, actor.TenantID, doc.ID)
		if err != nil {
			return domain.Storage("list lines", err)
		}
		resp = dto.FromDocument(doc, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor_id", actor.UserID).
		Str("document_id", resp.ID).
		Str("number", resp.Number).
		Msg(msg)
	return resp, nil
}

// ListEditHistory historial de ediciones en orden de edit_number con el snapshot decodificado.
func (uc *EditUseCase) ListEditHistory(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string) ([]dto.EditHistoryResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, actor.TenantID, docType, id)
	if err != nil {
		return nil, domain.Storage("get document", err)
	}
	if doc == nil {
		return nil, domain.NotFound(string(docType), id)
	}
	records, err := uc.repos.EditHistory.ListByTransaction(ctx, actor.TenantID, docType, id)
	if err != nil {
		return nil, domain.Storage("list edit history", err)
	}
	out := make([]dto.EditHistoryResponse, 0, len(records))
	for _, rec := range records {
		snap, err := entity.DecodeSnapshot(rec.OriginalData)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", rec.EditNumber, err)
		}
		out = append(out, dto.EditHistoryResponse{
			ID:             rec.ID,
			EditNumber:     rec.EditNumber,
			EditedBy:       rec.EditedBy,
			Reason:         rec.Reason,
			ChangesSummary: rec.ChangesSummary,
			Original:       &snap,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return out, nil
}
