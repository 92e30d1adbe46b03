// Package editing edición auditada y bloqueo administrativo de documentos ya publicados.
package editing

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/billing"
	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/application/settings"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/editability"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// EditUseCase evalúa la editabilidad, edita, bloquea y desbloquea documentos.
type EditUseCase struct {
	tx       ports.TxRunner
	repos    repository.Repos
	ledger   *inventory.Ledger
	settings *settings.Resolver
	now      ports.Clock
	log      *logger.Logger
}

// NewEditUseCase construye el caso de uso.
func NewEditUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	ledger *inventory.Ledger,
	resolver *settings.Resolver,
	now ports.Clock,
	log *logger.Logger,
) *EditUseCase {
	if now == nil {
		now = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EditUseCase{
		tx:       tx,
		repos:    repos,
		ledger:   ledger,
		settings: resolver,
		now:      now,
		log:      log.Component("editing"),
	}
}

// PreviewEditability evalúa, sin modificar nada, si el actor puede editar el documento.
func (uc *EditUseCase) PreviewEditability(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string) (*dto.EditabilityResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, actor.TenantID, docType, id)
	if err != nil {
		return nil, domain.Storage("get document", err)
	}
	if doc == nil {
		return nil, domain.NotFound(string(docType), id)
	}
	eff, err := uc.settings.Resolve(ctx, uc.repos.Settings, actor.TenantID)
	if err != nil {
		return nil, err
	}
	returned, err := uc.repos.Returns.ReturnedQuantities(ctx, actor.TenantID, doc.ID)
	if err != nil {
		return nil, domain.Storage("returned quantities", err)
	}
	decision := editability.Evaluate(doc, actor, uc.now(), eff.Editability, hasReturns(returned))

	resp := &dto.EditabilityResponse{
		DocumentID:  doc.ID,
		Editable:    decision.Allowed(),
		Restriction: string(decision.Kind),
		Reason:      decision.Reason,
	}
	if decision.HasReturns {
		lines, err := uc.repos.Documents.ListLines(ctx, actor.TenantID, doc.ID)
		if err != nil {
			return nil, domain.Storage("list lines", err)
		}
		for _, l := range lines {
			if q := returned[l.ID]; q.IsPositive() {
				resp.ReturnedLines = append(resp.ReturnedLines, dto.ReturnedLineWarning{
					LineID:           l.ID,
					ProductID:        l.ProductID,
					ProductName:      l.ProductName,
					Quantity:         l.Quantity,
					ReturnedQuantity: q,
				})
			}
		}
	}
	return resp, nil
}

func hasReturns(returned map[string]decimal.Decimal) bool {
	for _, q := range returned {
		if q.IsPositive() {
			return true
		}
	}
	return false
}

// EditTransaction reemplaza cabecera y líneas de un documento publicado en una sola transacción:
// reevalúa la editabilidad, guarda el snapshot previo, revierte el stock anterior,
// reemplaza las líneas, postea las nuevas y actualiza la cabecera.
func (uc *EditUseCase) EditTransaction(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string, in dto.EditDocumentRequest) (*dto.DocumentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var (
		resp       *dto.DocumentResponse
		editNumber int
	)
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		doc, err := r.Documents.GetForUpdate(ctx, actor.TenantID, docType, id)
		if err != nil {
			return domain.Storage("get document", err)
		}
		if doc == nil {
			return domain.NotFound(string(docType), id)
		}
		eff, err := uc.settings.Resolve(ctx, r.Settings, actor.TenantID)
		if err != nil {
			return err
		}
		returned, err := r.Returns.ReturnedQuantities(ctx, actor.TenantID, doc.ID)
		if err != nil {
			return domain.Storage("returned quantities", err)
		}
		now := uc.now()

		// 1) editabilidad dentro de la misma transacción que la escritura
		decision := editability.Evaluate(doc, actor, now, eff.Editability, hasReturns(returned))
		if err := decision.Err(); err != nil {
			return err
		}

		newStatus, err := editStatus(doc, in.Status, decision.HasReturns)
		if err != nil {
			return err
		}
		oldLines, err := r.Documents.ListLines(ctx, actor.TenantID, doc.ID)
		if err != nil {
			return domain.Storage("list lines", err)
		}
		if err := checkKeptLines(oldLines, in.Lines, returned); err != nil {
			return err
		}
		newLines, amounts, err := billing.BuildLines(ctx, r.Products, actor.TenantID, docType, in.Lines, in.TaxSuppressed)
		if err != nil {
			return err
		}
		totals, err := billing.ComputeTotals(amounts, pricing.Discount{Amount: in.DiscountAmount, Percent: in.DiscountPercent}, eff.Rounder)
		if err != nil {
			return err
		}

		before := *doc
		after := *doc
		after.PartyName = in.PartyName
		after.PartyContact = in.PartyContact
		after.PaymentMode = in.PaymentMode
		after.TaxSuppressed = in.TaxSuppressed
		after.Notes = in.Notes
		after.Status = newStatus
		billing.ApplyTotals(&after, totals)

		// 2) snapshot previo
		snapshot, err := entity.EncodeSnapshot(entity.NewSnapshot(&before, oldLines))
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		editNumber = doc.EditCount + 1
		if err := r.EditHistory.Append(ctx, &entity.EditHistoryRecord{
			ID:              uuid.New().String(),
			TenantID:        actor.TenantID,
			TransactionType: docType,
			TransactionID:   doc.ID,
			EditNumber:      editNumber,
			EditedBy:        actor.UserID,
			Reason:          in.Reason,
			ChangesSummary:  summarize(&before, &after, len(oldLines), len(newLines)),
			OriginalData:    snapshot,
			CreatedAt:       now,
		}); err != nil {
			return domain.Storage("append edit history", err)
		}

		// 3) bloquear productos viejos y nuevos en orden de id
		preStock, err := stockOf(ctx, r, actor.TenantID, oldLines, newLines)
		if err != nil {
			return err
		}
		reverse := func() error {
			if !before.AffectsStock() {
				return nil
			}
			_, err := uc.ledger.Reverse(ctx, r, inventory.ReverseInput{
				TenantID:     actor.TenantID,
				DocumentID:   doc.ID,
				DocumentType: docType,
				Actor:        actor.UserID,
				Note:         fmt.Sprintf("edición #%d de %s", editNumber, doc.Number),
				Lines:        oldLines,
			})
			return err
		}
		var warnings []dto.LowStockWarning
		post := func() error {
			if !after.AffectsStock() {
				return nil
			}
			var err error
			warnings, err = billing.PostDocument(ctx, uc.ledger, r, &after, newLines, actor.UserID, eff.AllowNegativeStock)
			return err
		}

		// 4) reemplazar líneas
		if err := r.Documents.DeleteLines(ctx, actor.TenantID, doc.ID); err != nil {
			return domain.Storage("delete lines", err)
		}
		if err := billing.PersistLines(ctx, r.Documents, doc, newLines); err != nil {
			return err
		}

		// 5) créditos antes que débitos: en ventas primero la reversión, en compras primero lo nuevo
		steps := []func() error{reverse, post}
		if docType.StockSign().IsPositive() {
			steps = []func() error{post, reverse}
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		allowNegative := eff.AllowNegativeStock && docType == entity.DocumentBill
		if err := checkFinalStock(ctx, r, actor.TenantID, preStock, allowNegative); err != nil {
			return err
		}

		// 6) cabecera
		after.EditCount = editNumber
		after.LastEditedAt = &now
		after.LastEditedBy = actor.UserID
		after.UpdatedAt = now
		if err := r.Documents.Update(ctx, &after); err != nil {
			return domain.Storage("update document", err)
		}
		resp = dto.FromDocument(&after, newLines)
		resp.LowStock = warnings
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
		Int("edit_number", editNumber).
		Msg("documento editado")
	return resp, nil
}

// editStatus estado resultante. Las ventas siguen completadas; las compras
// pueden pasar entre draft y completed salvo que tengan devoluciones.
func editStatus(doc *entity.Document, requested string, withReturns bool) (string, error) {
	if requested == "" {
		return doc.Status, nil
	}
	if doc.Type == entity.DocumentBill && requested != entity.StatusCompleted {
		return "", domain.Invalid("status", "una venta editada debe quedar completed")
	}
	if requested == entity.StatusDraft && withReturns {
		return "", domain.Invalid("status", "una compra con devoluciones no puede volver a borrador")
	}
	return requested, nil
}

// checkKeptLines valida los line_id enviados: deben pertenecer al documento, no
// repetirse, y toda línea con devoluciones debe conservarse con el mismo
// producto y una cantidad no menor a lo ya devuelto.
func checkKeptLines(oldLines []*entity.LineItem, reqs []dto.LineRequest, returned map[string]decimal.Decimal) error {
	byID := make(map[string]*entity.LineItem, len(oldLines))
	for _, l := range oldLines {
		byID[l.ID] = l
	}
	kept := make(map[string]dto.LineRequest, len(reqs))
	for i, req := range reqs {
		if req.LineID == "" {
			continue
		}
		orig, ok := byID[req.LineID]
		if !ok {
			return domain.NotFound("line", req.LineID)
		}
		if _, dup := kept[req.LineID]; dup {
			return domain.Invalid(fmt.Sprintf("lines[%d].line_id", i), "línea repetida")
		}
		if req.ProductID != orig.ProductID && returned[orig.ID].IsPositive() {
			return domain.Invalid(fmt.Sprintf("lines[%d].product_id", i), "no se puede cambiar el producto de una línea con devoluciones")
		}
		kept[req.LineID] = req
	}
	for _, l := range oldLines {
		q := returned[l.ID]
		if !q.IsPositive() {
			continue
		}
		req, ok := kept[l.ID]
		if !ok {
			return domain.Invalid("lines", fmt.Sprintf("la línea %s tiene devoluciones y no puede eliminarse", l.ID))
		}
		if req.Quantity.LessThan(q) {
			return domain.Invalid("lines", fmt.Sprintf("la línea %s no puede quedar con menos de %s (ya devuelto)", l.ID, q.String()))
		}
	}
	return nil
}

// stockOf stock previo a la edición de cada producto afectado.
func stockOf(ctx context.Context, r repository.Repos, tenantID string, groups ...[]*entity.LineItem) (map[string]*entity.Product, error) {
	var ids []string
	for _, lines := range groups {
		ids = append(ids, billing.ProductIDs(lines)...)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := r.Products.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return nil, domain.Storage("lock product", err)
		}
		if p == nil {
			return nil, domain.NotFound("product", id)
		}
		out[id] = p
	}
	return out, nil
}

// checkFinalStock rechaza la edición si deja algún producto en negativo y peor que antes.
func checkFinalStock(ctx context.Context, r repository.Repos, tenantID string, pre map[string]*entity.Product, allowNegative bool) error {
	if allowNegative {
		return nil
	}
	for id, before := range pre {
		p, err := r.Products.GetByID(ctx, tenantID, id)
		if err != nil {
			return domain.Storage("get product", err)
		}
		if p == nil {
			return domain.NotFound("product", id)
		}
		if p.StockQuantity.IsNegative() && p.StockQuantity.LessThan(before.StockQuantity) {
			return &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   before.StockQuantity,
				Requested:   before.StockQuantity.Sub(p.StockQuantity),
			}
		}
	}
	return nil
}
