package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/internal/infrastructure/memory"
)

const tenant = "t1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixedClock() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func newStore(stock string) *memory.Store {
	s := memory.New()
	s.AddProduct(entity.Product{ID: "p1", TenantID: tenant, Name: "Arroz", StockQuantity: d(stock)})
	return s
}

func post(t *testing.T, s *memory.Store, l *inventory.Ledger, in inventory.PostInput) (*inventory.Posting, error) {
	t.Helper()
	var out *inventory.Posting
	err := s.Run(context.Background(), func(r repository.Repos) error {
		var err error
		out, err = l.Post(context.Background(), r, in)
		return err
	})
	return out, err
}

func TestPost_DebitoRegistraAntesYDespues(t *testing.T) {
	s := newStore("100")
	l := inventory.NewLedger(fixedClock)

	p, err := post(t, s, l, inventory.PostInput{
		TenantID: tenant, ProductID: "p1", Delta: d("-10"),
		Type: entity.MovementSale, ReferenceID: "b1", ReferenceType: entity.ReferenceBill, Actor: "u1",
	})
	require.NoError(t, err)
	assert.True(t, p.Entry.QuantityBefore.Equal(d("100")))
	assert.True(t, p.Entry.QuantityAfter.Equal(d("90")))
	assert.True(t, p.Entry.QuantityChange.Equal(d("-10")))
	assert.Equal(t, int64(1), p.Entry.Seq)
	assert.True(t, s.Stock(tenant, "p1").Equal(d("90")))
}

func TestPost_StockInsuficienteNoEscribeNada(t *testing.T) {
	s := newStore("5")
	l := inventory.NewLedger(fixedClock)

	_, err := post(t, s, l, inventory.PostInput{TenantID: tenant, ProductID: "p1", Delta: d("-6"), Type: entity.MovementSale})
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(d("5")))
	assert.True(t, ise.Requested.Equal(d("6")))
	assert.Equal(t, "Arroz", ise.ProductName)

	assert.True(t, s.Stock(tenant, "p1").Equal(d("5")))
	assert.Equal(t, 0, s.LedgerLen())
}

func TestPost_NegativoPermitidoExplicitamente(t *testing.T) {
	s := newStore("5")
	l := inventory.NewLedger(fixedClock)

	p, err := post(t, s, l, inventory.PostInput{TenantID: tenant, ProductID: "p1", Delta: d("-6"), Type: entity.MovementSale, AllowNegative: true})
	require.NoError(t, err)
	assert.True(t, p.Entry.QuantityAfter.Equal(d("-1")))
}

func TestPost_ProductoDeOtroTenant(t *testing.T) {
	s := newStore("5")
	l := inventory.NewLedger(fixedClock)

	_, err := post(t, s, l, inventory.PostInput{TenantID: "otro", ProductID: "p1", Delta: d("1"), Type: entity.MovementPurchase})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPost_DeltaCeroEsInvalido(t *testing.T) {
	s := newStore("5")
	_, err := post(t, s, inventory.NewLedger(fixedClock), inventory.PostInput{TenantID: tenant, ProductID: "p1", Type: entity.MovementAdjustment})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReverse_NiegaCadaLineaYExcluyeDevuelto(t *testing.T) {
	s := newStore("100")
	l := inventory.NewLedger(fixedClock)
	ctx := context.Background()

	err := s.Run(ctx, func(r repository.Repos) error {
		doc := &entity.Document{ID: "b1", TenantID: tenant, Type: entity.DocumentBill, Number: "INV-1", Status: entity.StatusCompleted}
		require.NoError(t, r.Documents.Create(ctx, doc))
		require.NoError(t, r.Documents.CreateLine(ctx, &entity.LineItem{ID: "l1", DocumentID: "b1", TenantID: tenant, Position: 1, ProductID: "p1", Quantity: d("10")}))
		_, err := l.Post(ctx, r, inventory.PostInput{TenantID: tenant, ProductID: "p1", Delta: d("-10"), Type: entity.MovementSale, ReferenceID: "b1", ReferenceType: entity.ReferenceBill})
		return err
	})
	require.NoError(t, err)

	var postings []*inventory.Posting
	err = s.Run(ctx, func(r repository.Repos) error {
		var err error
		postings, err = l.Reverse(ctx, r, inventory.ReverseInput{
			TenantID: tenant, DocumentID: "b1", DocumentType: entity.DocumentBill,
			Exclude: map[string]decimal.Decimal{"l1": d("4")},
		})
		return err
	})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, entity.MovementReturn, postings[0].Entry.Type)
	assert.Equal(t, "b1", postings[0].Entry.ReferenceID)
	assert.True(t, postings[0].Entry.QuantityChange.Equal(d("6")))
	assert.True(t, s.Stock(tenant, "p1").Equal(d("96")))
}

func TestReconcileProduct_ReproduceElStock(t *testing.T) {
	s := newStore("10")
	l := inventory.NewLedger(fixedClock)
	for _, delta := range []string{"5", "-3", "-2", "7"} {
		_, err := post(t, s, l, inventory.PostInput{TenantID: tenant, ProductID: "p1", Delta: d(delta), Type: entity.MovementAdjustment})
		require.NoError(t, err)
	}
	repos := s.Repos()
	audit := inventory.NewAuditUseCase(s, repos.Products, repos.Ledger)

	rec, err := audit.ReconcileProduct(context.Background(), tenant, "p1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 4, rec.Entries)
	assert.True(t, rec.Replayed.Equal(d("17")))
	assert.True(t, rec.Current.Equal(d("17")))

	entries, err := audit.ProductLedger(context.Background(), tenant, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].QuantityBefore.Equal(entries[i-1].QuantityAfter))
		assert.Greater(t, entries[i].Seq, entries[i-1].Seq)
	}
}

func TestReplay_DetectaCadenaRota(t *testing.T) {
	entries := []*entity.LedgerEntry{
		{Seq: 1, QuantityBefore: d("10"), QuantityChange: d("-2"), QuantityAfter: d("8")},
		{Seq: 2, QuantityBefore: d("9"), QuantityChange: d("-1"), QuantityAfter: d("8")},
	}
	rec := inventory.Replay(entries)
	assert.Equal(t, int64(2), rec.BrokenAtSeq)
}
