package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/numbering"
	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/application/settings"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// DocumentUseCase crea, anula y consulta ventas (Bill) y compras (Purchase).
// Cada operación de escritura es una única transacción: número, líneas,
// cabecera y asientos de stock se confirman juntos o no se confirma nada.
type DocumentUseCase struct {
	tx        ports.TxRunner
	repos     repository.Repos
	ledger    *inventory.Ledger
	allocator *numbering.Allocator
	committer *numbering.Committer
	settings  *settings.Resolver
	now       ports.Clock
	log       *logger.Logger
}

// NewDocumentUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewDocumentUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	ledger *inventory.Ledger,
	allocator *numbering.Allocator,
	committer *numbering.Committer,
	resolver *settings.Resolver,
	now ports.Clock,
	log *logger.Logger,
) *DocumentUseCase {
	if now == nil {
		now = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentUseCase{
		tx:        tx,
		repos:     repos,
		ledger:    ledger,
		allocator: allocator,
		committer: committer,
		settings:  resolver,
		now:       now,
		log:       log.Component("billing"),
	}
}

// CreateBill registra una venta completada y debita el stock de cada línea.
func (uc *DocumentUseCase) CreateBill(ctx context.Context, actor entity.Actor, in dto.DocumentRequest) (*dto.DocumentResponse, error) {
	return uc.create(ctx, actor, entity.DocumentBill, in)
}

// CreatePurchase registra una compra. Solo las completadas acreditan stock; un borrador no postea nada.
func (uc *DocumentUseCase) CreatePurchase(ctx context.Context, actor entity.Actor, in dto.DocumentRequest) (*dto.DocumentResponse, error) {
	return uc.create(ctx, actor, entity.DocumentPurchase, in)
}

func (uc *DocumentUseCase) create(ctx context.Context, actor entity.Actor, docType entity.DocumentType, in dto.DocumentRequest) (*dto.DocumentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	status, err := initialStatus(docType, in.Status)
	if err != nil {
		return nil, err
	}
	for i, l := range in.Lines {
		if l.LineID != "" {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].line_id", i), "solo se admite al editar")
		}
	}

	var resp *dto.DocumentResponse
	err = uc.committer.Commit(ctx, actor.TenantID, docType.Series(), func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			eff, err := uc.settings.Resolve(ctx, r.Settings, actor.TenantID)
			if err != nil {
				return err
			}
			// 1) número
			number, err := uc.allocator.Allocate(ctx, r.Series, actor.TenantID, docType.Series(),
				numbering.DocumentRegistry(r.Documents, actor.TenantID, docType))
			if err != nil {
				return err
			}
			// 2) líneas y 3) totales
			lines, amounts, err := BuildLines(ctx, r.Products, actor.TenantID, docType, in.Lines, in.TaxSuppressed)
			if err != nil {
				return err
			}
			totals, err := ComputeTotals(amounts, pricing.Discount{Amount: in.DiscountAmount, Percent: in.DiscountPercent}, eff.Rounder)
			if err != nil {
				return err
			}
			now := uc.now()
			doc := &entity.Document{
				ID:            uuid.New().String(),
				TenantID:      actor.TenantID,
				Type:          docType,
				Number:        number,
				PartyName:     in.PartyName,
				PartyContact:  in.PartyContact,
				PaymentMode:   in.PaymentMode,
				Status:        status,
				TaxSuppressed: in.TaxSuppressed,
				Notes:         in.Notes,
				CreatedBy:     actor.UserID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			ApplyTotals(doc, totals)

			// 4) cabecera y líneas
			if err := r.Documents.Create(ctx, doc); err != nil {
				if errors.Is(err, domain.ErrDuplicateNumber) {
					return err
				}
				return domain.Storage("insert document", err)
			}
			if err := PersistLines(ctx, r.Documents, doc, lines); err != nil {
				return err
			}

			// 5) stock
			var warnings []dto.LowStockWarning
			if doc.AffectsStock() {
				warnings, err = PostDocument(ctx, uc.ledger, r, doc, lines, actor.UserID, eff.AllowNegativeStock)
				if err != nil {
					return err
				}
			}
			resp = dto.FromDocument(doc, lines)
			resp.LowStock = warnings
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor_id", actor.UserID).
		Str("document_id", resp.ID).
		Str("type", resp.Type).
		Str("number", resp.Number).
		Str("total", resp.TotalAmount.String()).
		Msg("documento creado")
	for _, w := range resp.LowStock {
		uc.log.Warn().
			Str("tenant_id", actor.TenantID).
			Str("product_id", w.ProductID).
			Str("stock", w.StockQuantity.String()).
			Str("min", w.MinStockLevel.String()).
			Msg("stock por debajo del mínimo")
	}
	return resp, nil
}

func initialStatus(docType entity.DocumentType, requested string) (string, error) {
	switch {
	case requested == "" || requested == entity.StatusCompleted:
		return entity.StatusCompleted, nil
	case requested == entity.StatusDraft && docType == entity.DocumentPurchase:
		return entity.StatusDraft, nil
	default:
		return "", domain.Invalid("status", "estado no permitido para "+string(docType))
	}
}

// CancelBill anula una venta completada y devuelve su stock.
func (uc *DocumentUseCase) CancelBill(ctx context.Context, actor entity.Actor, id string, in dto.CancelRequest) (*dto.DocumentResponse, error) {
	return uc.cancel(ctx, actor, entity.DocumentBill, id, in)
}

// CancelPurchase anula una compra completada y retira su stock.
func (uc *DocumentUseCase) CancelPurchase(ctx context.Context, actor entity.Actor, id string, in dto.CancelRequest) (*dto.DocumentResponse, error) {
	return uc.cancel(ctx, actor, entity.DocumentPurchase, id, in)
}

// cancel solo parte de completed: anular dos veces no encuentra el documento
// en el conjunto de completados y no revierte dos veces. Las cantidades ya
// devueltas no se revierten de nuevo. Un documento bloqueado solo lo anula un administrador.
func (uc *DocumentUseCase) cancel(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string, in dto.CancelRequest) (*dto.DocumentResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var resp *dto.DocumentResponse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		doc, err := r.Documents.GetForUpdate(ctx, actor.TenantID, docType, id)
		if err != nil {
			return domain.Storage("get document", err)
		}
		if doc == nil || doc.Status != entity.StatusCompleted {
			return domain.NotFound("completed "+string(docType), id)
		}
		if doc.IsLocked && !actor.IsAdministrator() {
			return &domain.EditabilityError{Restriction: "locked", Reason: "documento bloqueado: solo un administrador puede anularlo"}
		}
		returned, err := r.Returns.ReturnedQuantities(ctx, actor.TenantID, doc.ID)
		if err != nil {
			return domain.Storage("returned quantities", err)
		}
		if _, err := uc.ledger.Reverse(ctx, r, inventory.ReverseInput{
			TenantID:     actor.TenantID,
			DocumentID:   doc.ID,
			DocumentType: docType,
			Actor:        actor.UserID,
			Note:         "anulación " + doc.Number,
			Exclude:      returned,
		}); err != nil {
			return err
		}
		now := uc.now()
		doc.Status = entity.StatusCancelled
		doc.CancelReason = in.Reason
		doc.CancelledAt = &now
		doc.CancelledBy = actor.UserID
		doc.UpdatedAt = now
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
		Str("reason", in.Reason).
		Msg("documento anulado")
	return resp, nil
}

// GetDocument devuelve el documento del tenant con sus líneas.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, actor entity.Actor, docType entity.DocumentType, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.repos.Documents.GetByID(ctx, actor.TenantID, docType, id)
	if err != nil {
		return nil, domain.Storage("get document", err)
	}
	if doc == nil {
		return nil, domain.NotFound(string(docType), id)
	}
	lines, err := uc.repos.Documents.ListLines(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Storage("list lines", err)
	}
	return dto.FromDocument(doc, lines), nil
}
