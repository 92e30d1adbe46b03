package ports

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a ella.
// Si fn devuelve error (incluidos errores de dominio) se hace Rollback completo.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}

// AllocationGuard lock consultivo por (tenant, serie) alrededor de la asignación
// de consecutivos. Reduce colisiones; el índice único sigue siendo la garantía.
type AllocationGuard interface {
	Acquire(ctx context.Context, tenantID, series string) (release func(), err error)
}

// NoopGuard guard que no bloquea nada (sin Redis configurado).
type NoopGuard struct{}

// Acquire no hace nada.
func (NoopGuard) Acquire(context.Context, string, string) (func(), error) {
	return func() {}, nil
}

// Clock fuente de la hora actual; se inyecta para poder fijarla en tests.
type Clock func() time.Time

// SystemClock hora del sistema en UTC.
func SystemClock() time.Time { return time.Now().UTC() }
