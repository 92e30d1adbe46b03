package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

var manager = entity.Actor{TenantID: tenant, UserID: "u1", Role: entity.RoleManager}

func newCatalog() (*memory.Store, *inventory.ProductUseCase, *inventory.AuditUseCase) {
	s := memory.New()
	l := inventory.NewLedger(fixedClock)
	return s, inventory.NewProductUseCase(s, s.Repos().Products, l, fixedClock, nil),
		inventory.NewAuditUseCase(s, s.Repos().Products, s.Repos().Ledger)
}

func TestProductCreate_StockInicialPorElLibro(t *testing.T) {
	s, uc, audit := newCatalog()
	ctx := context.Background()

	p, err := uc.Create(ctx, manager, dto.CreateProductRequest{Name: "Harina", SKU: "H1", SellingPrice: d("3.5"), OpeningStock: d("40")})
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(d("40")))
	assert.True(t, s.Stock(tenant, p.ID).Equal(d("40")))

	entries, err := audit.ProductLedger(ctx, tenant, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementAdjustment, entries[0].Type)
	assert.True(t, entries[0].QuantityBefore.IsZero())

	rec, err := audit.ReconcileProduct(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestProductCreate_Validaciones(t *testing.T) {
	s, uc, _ := newCatalog()
	ctx := context.Background()

	_, err := uc.Create(ctx, manager, dto.CreateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, manager, dto.CreateProductRequest{Name: "X", OpeningStock: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, manager, dto.CreateProductRequest{Name: "X", GSTRate: d("120")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cashier := entity.Actor{TenantID: tenant, UserID: "c", Role: entity.RoleCashier}
	_, err = uc.Create(ctx, cashier, dto.CreateProductRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(ctx, manager, dto.CreateProductRequest{Name: "A", SKU: "S"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, manager, dto.CreateProductRequest{Name: "B", SKU: "S", OpeningStock: d("5")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 0, s.LedgerLen())
}

func TestProductAdjust(t *testing.T) {
	s, uc, _ := newCatalog()
	ctx := context.Background()
	p, err := uc.Create(ctx, manager, dto.CreateProductRequest{Name: "Harina", OpeningStock: d("10"), MinStockLevel: d("5")})
	require.NoError(t, err)

	out, err := uc.Adjust(ctx, manager, p.ID, dto.AdjustStockRequest{Quantity: d("-7"), Reason: "conteo físico"})
	require.NoError(t, err)
	assert.True(t, out.StockQuantity.Equal(d("3")))
	assert.True(t, out.LowStock)

	_, err = uc.Adjust(ctx, manager, p.ID, dto.AdjustStockRequest{Quantity: d("-4"), Reason: "merma"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = uc.Adjust(ctx, manager, p.ID, dto.AdjustStockRequest{Quantity: d("0"), Reason: "nada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Adjust(ctx, manager, "no-existe", dto.AdjustStockRequest{Quantity: d("1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 2, s.LedgerLen())
	assert.True(t, s.Stock(tenant, p.ID).Equal(d("3")))
}

func TestProductList_PorTenant(t *testing.T) {
	_, uc, _ := newCatalog()
	ctx := context.Background()
	for _, name := range []string{"Café", "Arroz", "Leche"} {
		_, err := uc.Create(ctx, manager, dto.CreateProductRequest{Name: name})
		require.NoError(t, err)
	}
	other := entity.Actor{TenantID: "t2", UserID: "x", Role: entity.RoleOwner}
	_, err := uc.Create(ctx, other, dto.CreateProductRequest{Name: "Ajeno"})
	require.NoError(t, err)

	page, err := uc.List(ctx, manager, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Arroz", page.Items[0].Name)
	assert.Equal(t, "Café", page.Items[1].Name)

	page, err = uc.List(ctx, manager, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Leche", page.Items[0].Name)

	_, err = uc.GetByID(ctx, other, page.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_RechazaDecimalesFueraDeEscala(t *testing.T) {
	s, uc, _ := newCatalog()
	ctx := context.Background()

	for field, req := range map[string]dto.CreateProductRequest{
		"selling_price":   {Name: "X", SellingPrice: d("3.555")},
		"cost_price":      {Name: "X", CostPrice: d("0.001")},
		"gst_rate":        {Name: "X", GSTRate: d("5.125")},
		"opening_stock":   {Name: "X", OpeningStock: d("1.0005")},
		"min_stock_level": {Name: "X", MinStockLevel: d("0.0004")},
	} {
		_, err := uc.Create(ctx, manager, req)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
	assert.Equal(t, 0, s.LedgerLen())

	p, err := uc.Create(ctx, manager, dto.CreateProductRequest{Name: "Harina", OpeningStock: d("10")})
	require.NoError(t, err)
	_, err = uc.Adjust(ctx, manager, p.ID, dto.AdjustStockRequest{Quantity: d("-1.0005"), Reason: "conteo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, s.Stock(tenant, p.ID).Equal(d("10")))
	assert.Equal(t, 1, s.LedgerLen())
}
