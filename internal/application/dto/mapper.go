package dto

import "github.com/jhoicas/pos-ledger/internal/domain/entity"

// FromDocument arma la respuesta de un documento y sus líneas.
func FromDocument(doc *entity.Document, lines []*entity.LineItem) *DocumentResponse {
	resp := &DocumentResponse{
		ID:             doc.ID,
		Type:           string(doc.Type),
		Number:         doc.Number,
		PartyName:      doc.PartyName,
		PartyContact:   doc.PartyContact,
		Subtotal:       doc.Subtotal,
		DiscountAmount: doc.DiscountAmount,
		GSTAmount:      doc.GSTAmount,
		RoundOff:       doc.RoundOff,
		TotalAmount:    doc.TotalAmount,
		PaymentMode:    doc.PaymentMode,
		Status:         doc.Status,
		TaxSuppressed:  doc.TaxSuppressed,
		Notes:          doc.Notes,
		IsLocked:       doc.IsLocked,
		LockedReason:   doc.LockedReason,
		LockedBy:       doc.LockedBy,
		EditCount:      doc.EditCount,
		LastEditedAt:   doc.LastEditedAt,
		LastEditedBy:   doc.LastEditedBy,
		CancelReason:   doc.CancelReason,
		CancelledAt:    doc.CancelledAt,
		CreatedBy:      doc.CreatedBy,
		CreatedAt:      doc.CreatedAt,
		Lines:          make([]LineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, LineResponse{
			ID:             l.ID,
			Position:       l.Position,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			SKU:            l.SKU,
			Unit:           l.Unit,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			GSTRate:        l.GSTRate,
			GSTAmount:      l.GSTAmount,
			LineSubtotal:   l.LineSubtotal,
			LineTotal:      l.LineTotal,
		})
	}
	return resp
}

// FromReturn arma la respuesta de una devolución.
func FromReturn(ret *entity.ReturnDocument, lines []*entity.ReturnLine) *ReturnResponse {
	resp := &ReturnResponse{
		ID:             ret.ID,
		Type:           string(ret.Type),
		Number:         ret.Number,
		ParentID:       ret.ParentID,
		Reason:         ret.Reason,
		Subtotal:       ret.Subtotal,
		DiscountAmount: ret.DiscountAmount,
		GSTAmount:      ret.GSTAmount,
		RoundOff:       ret.RoundOff,
		TotalAmount:    ret.TotalAmount,
		Status:         ret.Status,
		CreatedBy:      ret.CreatedBy,
		CreatedAt:      ret.CreatedAt,
		Lines:          make([]ReturnLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, ReturnLineResponse{
			ID:               l.ID,
			OriginalLineID:   l.OriginalLineID,
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			ReturnedQuantity: l.ReturnedQuantity,
			UnitPrice:        l.UnitPrice,
			DiscountAmount:   l.DiscountAmount,
			GSTRate:          l.GSTRate,
			GSTAmount:        l.GSTAmount,
			LineTotal:        l.LineTotal,
		})
	}
	return resp
}

// FromLedgerEntries convierte asientos del libro.
func FromLedgerEntries(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:             e.ID,
			Seq:            e.Seq,
			Type:           string(e.Type),
			ReferenceID:    e.ReferenceID,
			ReferenceType:  e.ReferenceType,
			QuantityChange: e.QuantityChange,
			QuantityBefore: e.QuantityBefore,
			QuantityAfter:  e.QuantityAfter,
			Note:           e.Note,
			CreatedBy:      e.CreatedBy,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}
