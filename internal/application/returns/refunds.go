package returns

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// refund cantidad e importes devueltos de una línea original.
// subtotal es bruto, antes del descuento de línea.
type refund struct {
	quantity decimal.Decimal
	subtotal decimal.Decimal
	discount decimal.Decimal
	gst      decimal.Decimal
}

func (f refund) plus(o refund) refund {
	return refund{
		quantity: f.quantity.Add(o.quantity),
		subtotal: f.subtotal.Add(o.subtotal),
		discount: f.discount.Add(o.discount),
		gst:      f.gst.Add(o.gst),
	}
}

// refunded acumula por línea original lo devuelto en devoluciones completadas
// y el descuento de cabecera ya reintegrado.
func refunded(ctx context.Context, rets repository.ReturnRepository, tenantID, parentID string) (map[string]refund, decimal.Decimal, error) {
	docs, err := rets.ListByParent(ctx, tenantID, parentID)
	if err != nil {
		return nil, decimal.Zero, domain.Storage("list returns", err)
	}
	out := make(map[string]refund)
	header := decimal.Zero
	for _, ret := range docs {
		if ret.Status != entity.StatusCompleted {
			continue
		}
		header = header.Add(ret.DiscountAmount)
		lines, err := rets.ListLines(ctx, tenantID, ret.ID)
		if err != nil {
			return nil, decimal.Zero, domain.Storage("list return lines", err)
		}
		for _, l := range lines {
			out[l.OriginalLineID] = out[l.OriginalLineID].plus(refund{
				quantity: l.ReturnedQuantity,
				subtotal: l.LineTotal.Add(l.DiscountAmount).Sub(l.GSTAmount),
				discount: l.DiscountAmount,
				gst:      l.GSTAmount,
			})
		}
	}
	return out, header, nil
}

// shareOf importes de devolver qty de orig. La devolución que agota la línea
// se lleva lo que queda sin reintegrar: la suma devuelta iguala lo cobrado.
func shareOf(orig *entity.LineItem, prior refund, qty decimal.Decimal) refund {
	if prior.quantity.Add(qty).Equal(orig.Quantity) {
		return refund{
			quantity: qty,
			subtotal: orig.LineSubtotal.Sub(prior.subtotal),
			discount: orig.DiscountAmount.Sub(prior.discount),
			gst:      orig.GSTAmount.Sub(prior.gst),
		}
	}
	return refund{
		quantity: qty,
		subtotal: pricing.Proportional(orig.LineSubtotal, qty, orig.Quantity),
		discount: pricing.Proportional(orig.DiscountAmount, qty, orig.Quantity),
		gst:      pricing.Proportional(orig.GSTAmount, qty, orig.Quantity),
	}
}

// fullyReturned indica si todas las líneas del documento quedaron devueltas por completo.
func fullyReturned(originals []*entity.LineItem, done map[string]refund) bool {
	for _, l := range originals {
		if !done[l.ID].quantity.Equal(l.Quantity) {
			return false
		}
	}
	return true
}
