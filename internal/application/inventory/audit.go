package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// AuditUseCase consultas de auditoría sobre el libro de stock (solo lectura).
type AuditUseCase struct {
	tx       ports.TxRunner
	products repository.ProductRepository
	ledger   repository.StockLedgerRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(tx ports.TxRunner, products repository.ProductRepository, ledger repository.StockLedgerRepository) *AuditUseCase {
	return &AuditUseCase{tx: tx, products: products, ledger: ledger}
}

// ProductLedger devuelve los asientos del producto en orden de escritura.
func (uc *AuditUseCase) ProductLedger(ctx context.Context, tenantID, productID string) ([]*entity.LedgerEntry, error) {
	product, err := uc.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, domain.Storage("get product", err)
	}
	if product == nil {
		return nil, domain.NotFound("product", productID)
	}
	entries, err := uc.ledger.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, domain.Storage("list ledger", err)
	}
	return entries, nil
}

// Reconciliation resultado de reproducir el libro de un producto.
type Reconciliation struct {
	ProductID  string
	Entries    int
	Replayed   decimal.Decimal // stock obtenido al reproducir los asientos
	Current    decimal.Decimal // stock_quantity actual
	Consistent bool
	// BrokenAtSeq primer asiento cuyo before no sigue al after anterior (0 si ninguno).
	BrokenAtSeq int64
}

// ReconcileProduct reproduce los asientos desde el quantity_before del primero y
// compara el resultado con el stock actual. Producto y asientos se leen en una
// transacción con la fila del producto bloqueada: ningún posteo se intercala.
func (uc *AuditUseCase) ReconcileProduct(ctx context.Context, tenantID, productID string) (*Reconciliation, error) {
	var (
		product *entity.Product
		entries []*entity.LedgerEntry
	)
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		product, err = r.Products.GetForUpdate(ctx, tenantID, productID)
		if err != nil {
			return domain.Storage("lock product", err)
		}
		if product == nil {
			return domain.NotFound("product", productID)
		}
		entries, err = r.Ledger.ListByProduct(ctx, tenantID, productID)
		if err != nil {
			return domain.Storage("list ledger", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rec := Replay(entries)
	rec.ProductID = productID
	rec.Current = product.StockQuantity
	if len(entries) == 0 {
		rec.Replayed = product.StockQuantity
	}
	rec.Consistent = rec.BrokenAtSeq == 0 && rec.Replayed.Equal(rec.Current)
	return rec, nil
}

// Replay recorre los asientos en orden y verifica la cadena before/after.
func Replay(entries []*entity.LedgerEntry) *Reconciliation {
	rec := &Reconciliation{Entries: len(entries)}
	if len(entries) == 0 {
		return rec
	}
	running := entries[0].QuantityBefore
	for _, e := range entries {
		if rec.BrokenAtSeq == 0 && (!e.QuantityBefore.Equal(running) || !e.QuantityAfter.Equal(e.QuantityBefore.Add(e.QuantityChange))) {
			rec.BrokenAtSeq = e.Seq
		}
		running = running.Add(e.QuantityChange)
	}
	rec.Replayed = running
	return rec
}
