package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/billing"
	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/numbering"
	"github.com/jhoicas/pos-ledger/internal/application/settings"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func now() time.Time { return time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC) }

var (
	cashier = entity.Actor{TenantID: tenant, UserID: "cajero", Role: entity.RoleCashier}
	admin   = entity.Actor{TenantID: tenant, UserID: "admin", Role: entity.RoleAdmin}
)

type harness struct {
	store *memory.Store
	uc    *billing.DocumentUseCase
}

func newHarness() *harness {
	s := memory.New()
	s.AddProduct(entity.Product{
		ID: "p", TenantID: tenant, Name: "Aceite", SKU: "ACE-1", Unit: "und",
		CostPrice: d("40"), SellingPrice: d("50"), GSTRate: d("18"), StockQuantity: d("100"),
	})
	s.AddProduct(entity.Product{
		ID: "q", TenantID: tenant, Name: "Sal", CostPrice: d("5"), SellingPrice: d("9.30"),
		GSTRate: d("12"), StockQuantity: d("20"), MinStockLevel: d("15"),
	})
	uc := billing.NewDocumentUseCase(
		s, s.Repos(),
		inventory.NewLedger(now),
		numbering.NewAllocator(0, now, nil),
		numbering.NewCommitter(nil, 3, nil),
		settings.NewResolver(settings.Defaults{}),
		now, nil,
	)
	return &harness{store: s, uc: uc}
}

func billOf(lines ...dto.LineRequest) dto.DocumentRequest {
	return dto.DocumentRequest{PartyName: "Cliente", PaymentMode: "cash", Lines: lines}
}

func line(product, qty string) dto.LineRequest {
	return dto.LineRequest{ProductID: product, Quantity: d(qty)}
}

func TestCreateBill_EjemploCompleto(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "10")))
	require.NoError(t, err)

	assert.Equal(t, "INV-20260402-0001", bill.Number)
	assert.Equal(t, entity.StatusCompleted, bill.Status)
	require.Len(t, bill.Lines, 1)
	assert.True(t, bill.Lines[0].LineSubtotal.Equal(d("500")))
	assert.True(t, bill.Lines[0].GSTAmount.Equal(d("90")))
	assert.True(t, bill.Lines[0].LineTotal.Equal(d("590")))
	assert.True(t, bill.Subtotal.Equal(d("500")))
	assert.True(t, bill.GSTAmount.Equal(d("90")))
	assert.True(t, bill.TotalAmount.Equal(d("590")))
	assert.True(t, bill.RoundOff.IsZero())

	assert.True(t, h.store.Stock(tenant, "p").Equal(d("90")))
	entries, err := h.store.Repos().Ledger.ListByProduct(ctx, tenant, "p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].QuantityChange.Equal(d("-10")))
	assert.True(t, entries[0].QuantityBefore.Equal(d("100")))
	assert.True(t, entries[0].QuantityAfter.Equal(d("90")))
	assert.Equal(t, entity.MovementSale, entries[0].Type)
	assert.Equal(t, bill.ID, entries[0].ReferenceID)
}

func TestCancelBill_RestauraStockYNoAnulaDosVeces(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "10"), line("q", "3")))
	require.NoError(t, err)

	cancelled, err := h.uc.CancelBill(ctx, cashier, bill.ID, dto.CancelRequest{Reason: "error de caja"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
	assert.True(t, h.store.Stock(tenant, "q").Equal(d("20")))

	entries, err := h.store.Repos().Ledger.ListByProduct(ctx, tenant, "p")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].QuantityChange.Equal(d("10")))
	assert.True(t, entries[1].QuantityBefore.Equal(d("90")))
	assert.True(t, entries[1].QuantityAfter.Equal(d("100")))
	assert.Equal(t, entity.MovementReturn, entries[1].Type)

	_, err = h.uc.CancelBill(ctx, cashier, bill.ID, dto.CancelRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 4, h.store.LedgerLen())
}

func TestCreateBill_StockInsuficienteEsAtomico(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.uc.CreateBill(ctx, cashier, billOf(line("q", "5"), line("p", "60"), line("p", "50")))
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "p", ise.ProductID)
	assert.True(t, ise.Available.Equal(d("40")))

	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
	assert.True(t, h.store.Stock(tenant, "q").Equal(d("20")))
	assert.Equal(t, 0, h.store.LedgerLen())
	assert.Equal(t, 0, h.store.DocumentCount())

	// el contador tampoco avanzó
	bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "1")))
	require.NoError(t, err)
	assert.Equal(t, "INV-20260402-0001", bill.Number)
}

func TestCreateBill_NumerosUnicosEnConcurrencia(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "1")))
			if err != nil {
				errs <- err
				return
			}
			numbers <- bill.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("createBill: %v", err)
	}
	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "número repetido %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("80")))
}

func TestCreateBill_ReintentaTrasConflictoDeIndiceUnico(t *testing.T) {
	h := newHarness()
	h.store.InjectNumberConflicts(2)

	bill, err := h.uc.CreateBill(context.Background(), cashier, billOf(line("p", "1")))
	require.NoError(t, err)
	assert.NotEmpty(t, bill.Number)
	assert.Equal(t, 1, h.store.LedgerLen())
}

func TestCreateBill_ConflictosPersistentesAgotanLaAsignacion(t *testing.T) {
	h := newHarness()
	h.store.InjectNumberConflicts(10)

	_, err := h.uc.CreateBill(context.Background(), cashier, billOf(line("p", "1")))
	assert.ErrorIs(t, err, domain.ErrAllocationExhausted)
	assert.Equal(t, 0, h.store.LedgerLen())
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
}

func TestCreateBill_Validaciones(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	cases := []struct {
		name string
		req  dto.DocumentRequest
		want error
	}{
		{"sin líneas", dto.DocumentRequest{}, domain.ErrInvalidInput},
		{"cantidad cero", billOf(line("p", "0")), domain.ErrInvalidInput},
		{"cantidad negativa", billOf(line("p", "-1")), domain.ErrInvalidInput},
		{"producto inexistente", billOf(line("zz", "1")), domain.ErrNotFound},
		{"descuento mayor al subtotal", dto.DocumentRequest{DiscountAmount: d("9999"), Lines: []dto.LineRequest{line("p", "1")}}, domain.ErrInvalidInput},
		{"venta como borrador", dto.DocumentRequest{Status: entity.StatusDraft, Lines: []dto.LineRequest{line("p", "1")}}, domain.ErrInvalidInput},
		{"modo de pago desconocido", dto.DocumentRequest{PaymentMode: "trueque", Lines: []dto.LineRequest{line("p", "1")}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.uc.CreateBill(ctx, cashier, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, h.store.DocumentCount())
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
}

func TestCreateBill_AdvierteStockBajo(t *testing.T) {
	h := newHarness()
	bill, err := h.uc.CreateBill(context.Background(), cashier, billOf(line("q", "6")))
	require.NoError(t, err)
	require.Len(t, bill.LowStock, 1)
	assert.Equal(t, "q", bill.LowStock[0].ProductID)
	assert.True(t, bill.LowStock[0].StockQuantity.Equal(d("14")))
}

func TestCreateBill_RedondeoYDescuentoDeDocumento(t *testing.T) {
	h := newHarness()
	// 1 × 9.30 con 12%: 9.30 + 1.12 = 10.42 -> 10
	bill, err := h.uc.CreateBill(context.Background(), cashier, billOf(line("q", "1")))
	require.NoError(t, err)
	assert.True(t, bill.TotalAmount.Equal(d("10")))
	assert.True(t, bill.RoundOff.Equal(d("-0.42")))

	h.store.SetSettings(entity.TenantSettings{TenantID: tenant, RoundingMode: "cent"})
	req := billOf(line("p", "2"))
	req.DiscountPercent = d("10")
	bill, err = h.uc.CreateBill(context.Background(), cashier, req)
	require.NoError(t, err)
	// 100 - 10 + 18 = 108
	assert.True(t, bill.DiscountAmount.Equal(d("10")))
	assert.True(t, bill.TotalAmount.Equal(d("108")))
	assert.True(t, bill.Subtotal.Sub(bill.DiscountAmount).Add(bill.GSTAmount).Add(bill.RoundOff).Equal(bill.TotalAmount))
}

func TestCreatePurchase_BorradorNoPosteaYCompletadaAcredita(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	draft, err := h.uc.CreatePurchase(ctx, admin, dto.DocumentRequest{PartyName: "Proveedor", Status: entity.StatusDraft, Lines: []dto.LineRequest{line("p", "30")}})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, draft.Status)
	assert.Equal(t, "PUR-20260402-0001", draft.Number)
	assert.True(t, draft.Lines[0].UnitPrice.Equal(d("40")))
	assert.Equal(t, 0, h.store.LedgerLen())

	purchase, err := h.uc.CreatePurchase(ctx, admin, dto.DocumentRequest{PartyName: "Proveedor", Lines: []dto.LineRequest{line("p", "30")}})
	require.NoError(t, err)
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("130")))

	_, err = h.uc.CancelPurchase(ctx, admin, draft.ID, dto.CancelRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.uc.CancelPurchase(ctx, admin, purchase.ID, dto.CancelRequest{Reason: "proveedor equivocado"})
	require.NoError(t, err)
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
}

func TestCancelPurchase_SinStockParaRetirar(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	purchase, err := h.uc.CreatePurchase(ctx, admin, dto.DocumentRequest{Lines: []dto.LineRequest{line("q", "10")}})
	require.NoError(t, err)
	_, err = h.uc.CreateBill(ctx, cashier, billOf(line("q", "25")))
	require.NoError(t, err)

	_, err = h.uc.CancelPurchase(ctx, admin, purchase.ID, dto.CancelRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	got, err := h.uc.GetDocument(ctx, admin, entity.DocumentPurchase, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, got.Status)
}

func TestCancelBill_BloqueadoSoloAdministrador(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "2")))
	require.NoError(t, err)

	repos := h.store.Repos()
	doc, err := repos.Documents.GetByID(ctx, tenant, entity.DocumentBill, bill.ID)
	require.NoError(t, err)
	doc.IsLocked = true
	require.NoError(t, repos.Documents.Update(ctx, doc))

	_, err = h.uc.CancelBill(ctx, cashier, bill.ID, dto.CancelRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotEditable)

	_, err = h.uc.CancelBill(ctx, admin, bill.ID, dto.CancelRequest{Reason: "x"})
	require.NoError(t, err)
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
}

func TestGetDocument_AisladoPorTenant(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bill, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "1")))
	require.NoError(t, err)

	got, err := h.uc.GetDocument(ctx, cashier, entity.DocumentBill, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Number, got.Number)

	other := entity.Actor{TenantID: "t2", UserID: "x", Role: entity.RoleOwner}
	_, err = h.uc.GetDocument(ctx, other, entity.DocumentBill, bill.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.uc.GetDocument(ctx, cashier, entity.DocumentPurchase, bill.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBill_RechazaDecimalesQueLaBaseRedondearia(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	price := d("10.999")
	rate := d("5.555")
	cases := map[string]dto.DocumentRequest{
		"lines[0].quantity":         billOf(line("p", "1.0005")),
		"lines[1].quantity":         billOf(line("q", "1"), line("p", "0.0004")),
		"lines[0].unit_price":       billOf(dto.LineRequest{ProductID: "p", Quantity: d("1"), UnitPrice: &price}),
		"lines[0].gst_rate":         billOf(dto.LineRequest{ProductID: "p", Quantity: d("1"), GSTRate: &rate}),
		"lines[0].discount_amount":  billOf(dto.LineRequest{ProductID: "p", Quantity: d("1"), DiscountAmount: d("0.001")}),
		"lines[0].discount_percent": billOf(dto.LineRequest{ProductID: "p", Quantity: d("1"), DiscountPercent: d("1.234")}),
		"discount_amount":           {Lines: []dto.LineRequest{line("p", "1")}, DiscountAmount: d("0.005")},
	}
	for field, req := range cases {
		_, err := h.uc.CreateBill(ctx, cashier, req)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
	assert.True(t, h.store.Stock(tenant, "p").Equal(d("100")))
	assert.Equal(t, 0, h.store.LedgerLen())

	b, err := h.uc.CreateBill(ctx, cashier, billOf(line("p", "1.500")))
	require.NoError(t, err)
	assert.True(t, b.Lines[0].Quantity.Equal(d("1.5")))
}

// lockRecorder registra el orden en que se bloquean los productos.
type lockRecorder struct {
	repository.ProductRepository
	order []string
}

func (r *lockRecorder) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	r.order = append(r.order, id)
	return r.ProductRepository.GetForUpdate(ctx, tenantID, id)
}

func TestPostDocument_BloqueaProductosEnOrden(t *testing.T) {
	h := newHarness()
	ledger := inventory.NewLedger(now)
	doc := &entity.Document{ID: "doc-1", TenantID: tenant, Type: entity.DocumentBill, Number: "BILL-1"}
	lines := []*entity.LineItem{
		{ID: "l1", ProductID: "q", Quantity: d("1")},
		{ID: "l2", ProductID: "p", Quantity: d("1")},
		{ID: "l3", ProductID: "q", Quantity: d("2")},
	}
	rec := &lockRecorder{}
	err := h.store.Run(context.Background(), func(r repository.Repos) error {
		rec.ProductRepository = r.Products
		r.Products = rec
		_, err := billing.PostDocument(context.Background(), ledger, r, doc, lines, "u1", false)
		return err
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rec.order), 2)
	assert.Equal(t, []string{"p", "q"}, rec.order[:2])
	assert.True(t, h.store.Stock(tenant, "q").Equal(d("17")))
}
