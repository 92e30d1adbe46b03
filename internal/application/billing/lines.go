package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// BuildLines valida cada línea, carga el producto del tenant y calcula sus montos.
// Las líneas quedan sin DocumentID; el llamador lo asigna al persistir.
// Si la línea trae LineID se conserva como ID (ediciones).
func BuildLines(ctx context.Context, products repository.ProductRepository, tenantID string, docType entity.DocumentType, reqs []dto.LineRequest, taxSuppressed bool) ([]*entity.LineItem, []pricing.LineAmounts, error) {
	if len(reqs) == 0 {
		return nil, nil, domain.Invalid("lines", "el documento debe tener al menos una línea")
	}
	lines := make([]*entity.LineItem, 0, len(reqs))
	amounts := make([]pricing.LineAmounts, 0, len(reqs))
	for i, req := range reqs {
		field := func(name string) string { return fmt.Sprintf("lines[%d].%s", i, name) }
		if req.ProductID == "" {
			return nil, nil, domain.Invalid(field("product_id"), "requerido")
		}
		if !req.Quantity.IsPositive() {
			return nil, nil, domain.Invalid(field("quantity"), "debe ser mayor que cero")
		}
		if req.DiscountAmount.IsNegative() || req.DiscountPercent.IsNegative() {
			return nil, nil, domain.Invalid(field("discount"), "no puede ser negativo")
		}
		if req.DiscountPercent.GreaterThan(hundred) {
			return nil, nil, domain.Invalid(field("discount_percent"), "no puede superar 100")
		}
		if err := checkLineScale(field, req); err != nil {
			return nil, nil, err
		}

		product, err := products.GetByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return nil, nil, domain.Storage("get product", err)
		}
		if product == nil {
			return nil, nil, domain.NotFound("product", req.ProductID)
		}

		unitPrice := product.SellingPrice
		if docType == entity.DocumentPurchase {
			unitPrice = product.CostPrice
		}
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		if unitPrice.IsNegative() {
			return nil, nil, domain.Invalid(field("unit_price"), "no puede ser negativo")
		}
		gstRate := product.GSTRate
		if req.GSTRate != nil {
			gstRate = *req.GSTRate
		}
		if gstRate.IsNegative() {
			return nil, nil, domain.Invalid(field("gst_rate"), "no puede ser negativo")
		}

		a := pricing.ComputeLine(pricing.LineInput{
			Quantity:      req.Quantity,
			UnitPrice:     unitPrice,
			Discount:      pricing.Discount{Amount: req.DiscountAmount, Percent: req.DiscountPercent},
			GSTRate:       gstRate,
			TaxSuppressed: taxSuppressed,
		})
		if a.Discount.GreaterThan(a.Subtotal) {
			return nil, nil, domain.Invalid(field("discount_amount"), "no puede superar el subtotal de la línea")
		}

		id := req.LineID
		if id == "" {
			id = uuid.New().String()
		}
		lines = append(lines, &entity.LineItem{
			ID:             id,
			TenantID:       tenantID,
			Position:       i + 1,
			ProductID:      product.ID,
			ProductName:    product.Name,
			SKU:            product.SKU,
			Unit:           product.Unit,
			Quantity:       req.Quantity,
			UnitPrice:      unitPrice,
			DiscountAmount: a.Discount,
			GSTRate:        gstRate,
			GSTAmount:      a.GST,
			LineSubtotal:   a.Subtotal,
			LineTotal:      a.Total,
		})
		amounts = append(amounts, a)
	}
	return lines, amounts, nil
}

func checkLineScale(field func(string) string, req dto.LineRequest) error {
	if err := pricing.CheckScale(field("quantity"), req.Quantity, pricing.QuantityPlaces); err != nil {
		return err
	}
	if req.UnitPrice != nil {
		if err := pricing.CheckScale(field("unit_price"), *req.UnitPrice, pricing.MoneyPlaces); err != nil {
			return err
		}
	}
	if req.GSTRate != nil {
		if err := pricing.CheckScale(field("gst_rate"), *req.GSTRate, pricing.RatePlaces); err != nil {
			return err
		}
	}
	if err := pricing.CheckScale(field("discount_amount"), req.DiscountAmount, pricing.MoneyPlaces); err != nil {
		return err
	}
	return pricing.CheckScale(field("discount_percent"), req.DiscountPercent, pricing.RatePlaces)
}

// ComputeTotals agrega las líneas y valida el descuento del documento.
func ComputeTotals(amounts []pricing.LineAmounts, discount pricing.Discount, r pricing.Rounder) (pricing.Totals, error) {
	if discount.Amount.IsNegative() || discount.Percent.IsNegative() {
		return pricing.Totals{}, domain.Invalid("discount", "no puede ser negativo")
	}
	if discount.Percent.GreaterThan(hundred) {
		return pricing.Totals{}, domain.Invalid("discount_percent", "no puede superar 100")
	}
	if err := pricing.CheckScale("discount_amount", discount.Amount, pricing.MoneyPlaces); err != nil {
		return pricing.Totals{}, err
	}
	if err := pricing.CheckScale("discount_percent", discount.Percent, pricing.RatePlaces); err != nil {
		return pricing.Totals{}, err
	}
	t := pricing.ComputeTotals(amounts, discount, r)
	if t.Discount.GreaterThan(t.Subtotal) {
		return pricing.Totals{}, domain.Invalid("discount_amount", "no puede superar el subtotal")
	}
	return t, nil
}

// ApplyTotals copia los totales a la cabecera.
func ApplyTotals(doc *entity.Document, t pricing.Totals) {
	doc.Subtotal = t.Subtotal
	doc.DiscountAmount = t.Discount
	doc.GSTAmount = t.GST
	doc.RoundOff = t.RoundOff
	doc.TotalAmount = t.Total
}

// PersistLines inserta las líneas asignándoles el documento.
func PersistLines(ctx context.Context, docs repository.DocumentRepository, doc *entity.Document, lines []*entity.LineItem) error {
	for _, l := range lines {
		l.DocumentID = doc.ID
		l.TenantID = doc.TenantID
		if err := docs.CreateLine(ctx, l); err != nil {
			return domain.Storage("insert line", err)
		}
	}
	return nil
}

// ProductIDs productos referenciados por las líneas.
func ProductIDs(lines []*entity.LineItem) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// PostDocument postea un asiento por línea: débito para ventas (sale), crédito
// para compras (purchase). allowNegative solo aplica a ventas. Devuelve los
// productos que quedaron por debajo de su mínimo.
func PostDocument(ctx context.Context, ledger *inventory.Ledger, r repository.Repos, doc *entity.Document, lines []*entity.LineItem, actor string, allowNegative bool) ([]dto.LowStockWarning, error) {
	if err := ledger.LockProducts(ctx, r, doc.TenantID, ProductIDs(lines)); err != nil {
		return nil, err
	}
	sign := doc.Type.StockSign()
	low := make(map[string]dto.LowStockWarning)
	seen := make(map[string]bool)
	var order []string
	for _, l := range lines {
		p, err := ledger.Post(ctx, r, inventory.PostInput{
			TenantID:      doc.TenantID,
			ProductID:     l.ProductID,
			Delta:         l.Quantity.Mul(sign),
			Type:          doc.Type.MovementType(),
			ReferenceID:   doc.ID,
			ReferenceType: string(doc.Type),
			Note:          doc.Number,
			Actor:         actor,
			AllowNegative: allowNegative && doc.Type == entity.DocumentBill,
		})
		if err != nil {
			return nil, err
		}
		if doc.Type != entity.DocumentBill {
			continue
		}
		if !seen[p.Product.ID] {
			seen[p.Product.ID] = true
			order = append(order, p.Product.ID)
		}
		low[p.Product.ID] = dto.LowStockWarning{
			ProductID:     p.Product.ID,
			ProductName:   p.Product.Name,
			StockQuantity: p.Product.StockQuantity,
			MinStockLevel: p.Product.MinStockLevel,
		}
		if !p.Product.BelowMinimum() {
			delete(low, p.Product.ID)
		}
	}
	var warnings []dto.LowStockWarning
	for _, id := range order {
		if w, ok := low[id]; ok {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}
