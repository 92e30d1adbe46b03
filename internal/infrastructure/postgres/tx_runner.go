package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de fn se devuelven sin envolver para que el llamador vea su tipo.
func (r *TxRunner) Run(ctx context.Context, fn func(repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.Storage("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Storage("commit transaction", err)
	}
	return nil
}

// NewRepos arma todos los repositorios sobre q (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Products:    NewProductRepository(q),
		Ledger:      NewStockLedgerRepository(q),
		Documents:   NewDocumentRepository(q),
		Returns:     NewReturnRepository(q),
		EditHistory: NewEditHistoryRepository(q),
		Series:      NewNumberSeriesRepository(q),
		Settings:    NewTenantSettingsRepository(q),
	}
}
