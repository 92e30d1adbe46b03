package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// ReferenceAdjustment reference_type de los asientos de ajuste manual y stock inicial.
const ReferenceAdjustment = "adjustment"

// ProductUseCase catálogo de productos. El stock nunca se escribe directo:
// el inicial y los ajustes pasan por el libro.
type ProductUseCase struct {
	tx       ports.TxRunner
	products repository.ProductRepository
	ledger   *Ledger
	now      ports.Clock
	log      *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx ports.TxRunner, products repository.ProductRepository, ledger *Ledger, now ports.Clock, log *logger.Logger) *ProductUseCase {
	if now == nil {
		now = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{tx: tx, products: products, ledger: ledger, now: now, log: log.Component("catalog")}
}

// Create da de alta el producto y postea el stock inicial como ajuste.
func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if actor.IsOperator() {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	for field, v := range map[string]decimal.Decimal{
		"cost_price": in.CostPrice, "selling_price": in.SellingPrice, "gst_rate": in.GSTRate,
		"min_stock_level": in.MinStockLevel, "opening_stock": in.OpeningStock,
	} {
		if v.IsNegative() {
			return nil, domain.Invalid(field, "no puede ser negativo")
		}
	}
	if in.GSTRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.Invalid("gst_rate", "debe estar entre 0 y 100")
	}
	for field, c := range map[string]struct {
		v      decimal.Decimal
		places int32
	}{
		"cost_price":      {in.CostPrice, pricing.MoneyPlaces},
		"selling_price":   {in.SellingPrice, pricing.MoneyPlaces},
		"gst_rate":        {in.GSTRate, pricing.RatePlaces},
		"min_stock_level": {in.MinStockLevel, pricing.QuantityPlaces},
		"opening_stock":   {in.OpeningStock, pricing.QuantityPlaces},
	} {
		if err := pricing.CheckScale(field, c.v, c.places); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		TenantID:      actor.TenantID,
		Name:          in.Name,
		SKU:           in.SKU,
		Unit:          in.Unit,
		CostPrice:     in.CostPrice,
		SellingPrice:  in.SellingPrice,
		GSTRate:       in.GSTRate,
		MinStockLevel: in.MinStockLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, product); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrDuplicate
			}
			return domain.Storage("create product", err)
		}
		if !in.OpeningStock.IsPositive() {
			return nil
		}
		posting, err := uc.ledger.Post(ctx, r, PostInput{
			TenantID:      actor.TenantID,
			ProductID:     product.ID,
			Delta:         in.OpeningStock,
			Type:          entity.MovementAdjustment,
			ReferenceID:   product.ID,
			ReferenceType: ReferenceAdjustment,
			Note:          "stock inicial",
			Actor:         actor.UserID,
		})
		if err != nil {
			return err
		}
		product = posting.Product
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("product_id", product.ID).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Storage("get product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product", id)
	}
	return toProductResponse(product), nil
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.products.List(ctx, actor.TenantID, limit, offset)
	if err != nil {
		return nil, domain.Storage("list products", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Adjust postea un ajuste manual (conteo físico, merma). Un débito mayor al stock falla.
func (uc *ProductUseCase) Adjust(ctx context.Context, actor entity.Actor, id string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if actor.IsOperator() {
		return nil, domain.ErrForbidden
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Quantity.IsZero() {
		return nil, domain.Invalid("quantity", "el ajuste no puede ser cero")
	}
	var product *entity.Product
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		posting, err := uc.ledger.Post(ctx, r, PostInput{
			TenantID:      actor.TenantID,
			ProductID:     id,
			Delta:         in.Quantity,
			Type:          entity.MovementAdjustment,
			ReferenceID:   uuid.New().String(),
			ReferenceType: ReferenceAdjustment,
			Note:          in.Reason,
			Actor:         actor.UserID,
		})
		if err != nil {
			return err
		}
		product = posting.Product
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("product_id", id).Str("delta", in.Quantity.String()).Msg("ajuste de stock")
	return toProductResponse(product), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Unit:          p.Unit,
		CostPrice:     p.CostPrice,
		SellingPrice:  p.SellingPrice,
		GSTRate:       p.GSTRate,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.BelowMinimum(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
