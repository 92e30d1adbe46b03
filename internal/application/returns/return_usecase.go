// Package returns devoluciones parciales de ventas y compras.
package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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

// ReturnUseCase crea devoluciones acotadas por lo ya devuelto de cada línea.
type ReturnUseCase struct {
	tx        ports.TxRunner
	repos     repository.Repos
	ledger    *inventory.Ledger
	allocator *numbering.Allocator
	committer *numbering.Committer
	settings  *settings.Resolver
	now       ports.Clock
	log       *logger.Logger
}

// NewReturnUseCase construye el caso de uso.
func NewReturnUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	ledger *inventory.Ledger,
	allocator *numbering.Allocator,
	committer *numbering.Committer,
	resolver *settings.Resolver,
	now ports.Clock,
	log *logger.Logger,
) *ReturnUseCase {
	if now == nil {
		now = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReturnUseCase{
		tx:        tx,
		repos:     repos,
		ledger:    ledger,
		allocator: allocator,
		committer: committer,
		settings:  resolver,
		now:       now,
		log:       log.Component("returns"),
	}
}

// CreateSalesReturn devolución de cliente: acredita stock.
func (uc *ReturnUseCase) CreateSalesReturn(ctx context.Context, actor entity.Actor, billID string, in dto.ReturnRequest) (*dto.ReturnResponse, error) {
	return uc.create(ctx, actor, entity.ReturnSales, billID, in)
}

// CreatePurchaseReturn devolución a proveedor: debita stock sin permitir negativos.
func (uc *ReturnUseCase) CreatePurchaseReturn(ctx context.Context, actor entity.Actor, purchaseID string, in dto.ReturnRequest) (*dto.ReturnResponse, error) {
	return uc.create(ctx, actor, entity.ReturnPurchase, purchaseID, in)
}

func (uc *ReturnUseCase) create(ctx context.Context, actor entity.Actor, rt entity.ReturnType, parentID string, in dto.ReturnRequest) (*dto.ReturnResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d].quantity", i)
		if !l.Quantity.IsPositive() {
			return nil, domain.Invalid(field, "debe ser mayor que cero")
		}
		if err := pricing.CheckScale(field, l.Quantity, pricing.QuantityPlaces); err != nil {
			return nil, err
		}
	}
	parentType := rt.ParentType()

	var resp *dto.ReturnResponse
	err := uc.committer.Commit(ctx, actor.TenantID, rt.Series(), func(ctx context.Context) error {
		return uc.tx.Run(ctx, func(r repository.Repos) error {
			parent, err := r.Documents.GetForUpdate(ctx, actor.TenantID, parentType, parentID)
			if err != nil {
				return domain.Storage("get document", err)
			}
			if parent == nil {
				return domain.NotFound(string(parentType), parentID)
			}
			if parent.Status != entity.StatusCompleted {
				return domain.Invalid("parent", "solo se admiten devoluciones sobre documentos completados")
			}
			eff, err := uc.settings.Resolve(ctx, r.Settings, actor.TenantID)
			if err != nil {
				return err
			}

			originals, err := r.Documents.ListLines(ctx, actor.TenantID, parent.ID)
			if err != nil {
				return domain.Storage("list lines", err)
			}
			byID := make(map[string]*entity.LineItem, len(originals))
			for _, l := range originals {
				byID[l.ID] = l
			}
			done, headerDone, err := refunded(ctx, r.Returns, actor.TenantID, parent.ID)
			if err != nil {
				return err
			}

			retID := uuid.New().String()
			lines := make([]*entity.ReturnLine, 0, len(in.Lines))
			var subtotal, gst decimal.Decimal
			for _, req := range in.Lines {
				orig, ok := byID[req.LineID]
				if !ok {
					return domain.NotFound("line", req.LineID)
				}
				prior := done[orig.ID]
				if prior.quantity.Add(req.Quantity).GreaterThan(orig.Quantity) {
					return &domain.OverReturnError{
						LineID:          orig.ID,
						Original:        orig.Quantity,
						AlreadyReturned: prior.quantity,
						Requested:       req.Quantity,
					}
				}
				share := shareOf(orig, prior, req.Quantity)
				done[orig.ID] = prior.plus(share)

				lines = append(lines, &entity.ReturnLine{
					ID:               uuid.New().String(),
					ReturnID:         retID,
					OriginalLineID:   orig.ID,
					ProductID:        orig.ProductID,
					ProductName:      orig.ProductName,
					ReturnedQuantity: req.Quantity,
					UnitPrice:        orig.UnitPrice,
					DiscountAmount:   share.discount,
					GSTRate:          orig.GSTRate,
					GSTAmount:        share.gst,
					LineTotal:        share.subtotal.Sub(share.discount).Add(share.gst),
				})
				subtotal = subtotal.Add(share.subtotal.Sub(share.discount))
				gst = gst.Add(share.gst)
			}

			// Descuento de cabecera proporcional; la devolución que agota el documento se lleva el resto.
			discount := pricing.Proportional(parent.DiscountAmount, subtotal, parent.Subtotal)
			if fullyReturned(originals, done) {
				discount = parent.DiscountAmount.Sub(headerDone)
			}
			beforeRound := subtotal.Sub(discount).Add(gst)
			total := eff.Rounder.Round(beforeRound)

			number, err := uc.allocator.Allocate(ctx, r.Series, actor.TenantID, rt.Series(),
				numbering.ReturnRegistry(r.Returns, actor.TenantID, rt))
			if err != nil {
				return err
			}
			now := uc.now()
			ret := &entity.ReturnDocument{
				ID:             retID,
				TenantID:       actor.TenantID,
				Type:           rt,
				Number:         number,
				ParentID:       parent.ID,
				Reason:         in.Reason,
				Subtotal:       subtotal,
				DiscountAmount: discount,
				GSTAmount:      gst,
				TotalAmount:    total,
				RoundOff:       total.Sub(beforeRound),
				Status:         entity.StatusCompleted,
				CreatedBy:      actor.UserID,
				CreatedAt:      now,
			}
			if err := r.Returns.Create(ctx, ret); err != nil {
				if errors.Is(err, domain.ErrDuplicateNumber) {
					return err
				}
				return domain.Storage("insert return", err)
			}
			ids := make([]string, 0, len(lines))
			for _, l := range lines {
				ids = append(ids, l.ProductID)
			}
			if err := uc.ledger.LockProducts(ctx, r, actor.TenantID, ids); err != nil {
				return err
			}
			sign := rt.StockSign()
			for _, l := range lines {
				if err := r.Returns.CreateLine(ctx, l); err != nil {
					return domain.Storage("insert return line", err)
				}
				if _, err := uc.ledger.Post(ctx, r, inventory.PostInput{
					TenantID:      actor.TenantID,
					ProductID:     l.ProductID,
					Delta:         l.ReturnedQuantity.Mul(sign),
					Type:          entity.MovementReturn,
					ReferenceID:   ret.ID,
					ReferenceType: string(rt),
					Note:          fmt.Sprintf("%s sobre %s", ret.Number, parent.Number),
					Actor:         actor.UserID,
				}); err != nil {
					return err
				}
			}
			resp = dto.FromReturn(ret, lines)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", actor.TenantID).
		Str("actor_id", actor.UserID).
		Str("return_id", resp.ID).
		Str("type", resp.Type).
		Str("number", resp.Number).
		Str("parent_id", parentID).
		Msg("devolución creada")
	return resp, nil
}

// ListByParent devoluciones registradas sobre un documento.
func (uc *ReturnUseCase) ListByParent(ctx context.Context, actor entity.Actor, parentID string) ([]*dto.ReturnResponse, error) {
	rets, err := uc.repos.Returns.ListByParent(ctx, actor.TenantID, parentID)
	if err != nil {
		return nil, domain.Storage("list returns", err)
	}
	out := make([]*dto.ReturnResponse, 0, len(rets))
	for _, ret := range rets {
		lines, err := uc.repos.Returns.ListLines(ctx, actor.TenantID, ret.ID)
		if err != nil {
			return nil, domain.Storage("list return lines", err)
		}
		out = append(out, dto.FromReturn(ret, lines))
	}
	return out, nil
}
