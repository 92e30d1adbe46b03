package numbering

import (
	"context"
	"errors"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// DefaultInsertRetries reintentos de la transacción completa ante número duplicado.
const DefaultInsertRetries = 3

// Committer ejecuta la transacción que asigna el número e inserta el documento.
type Committer struct {
	guard   ports.AllocationGuard
	retries int
	log     *logger.Logger
}

// NewCommitter construye el Committer. guard nil equivale a NoopGuard.
func NewCommitter(guard ports.AllocationGuard, retries int, log *logger.Logger) *Committer {
	if guard == nil {
		guard = ports.NoopGuard{}
	}
	if retries <= 0 {
		retries = DefaultInsertRetries
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Committer{guard: guard, retries: retries, log: log}
}

// Commit toma el lock consultivo de la serie y ejecuta run. Si el insert choca con
// el índice único (domain.ErrDuplicateNumber) repite run completo; como la
// transacción anterior hizo rollback, no hay efectos parciales.
func (c *Committer) Commit(ctx context.Context, tenantID, series string, run func(ctx context.Context) error) error {
	release, err := c.guard.Acquire(ctx, tenantID, series)
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Str("series", series).Msg("lock de consecutivo no disponible, se continúa sin él")
		release = func() {}
	}
	defer release()

	for attempt := 1; attempt <= c.retries; attempt++ {
		err := run(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			return err
		}
		c.log.Debug().Int("attempt", attempt).Str("tenant_id", tenantID).Str("series", series).Msg("número duplicado al insertar, reintentando")
	}
	return &domain.AllocationExhaustedError{Series: series, Attempts: c.retries}
}
