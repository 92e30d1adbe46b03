// Package numbering asigna consecutivos únicos por tenant y serie dentro de la
// transacción del documento.
package numbering

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	dnum "github.com/jhoicas/pos-ledger/internal/domain/numbering"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// DefaultMaxAttempts intentos por asignación.
const DefaultMaxAttempts = 100

// Registry consulta de números ya usados en la tabla del tipo de documento.
type Registry interface {
	Exists(ctx context.Context, number string) (bool, error)
	MaxWithPrefix(ctx context.Context, prefix string) (string, error)
}

// Allocator genera el siguiente número a partir de la serie del tenant.
type Allocator struct {
	maxAttempts int
	now         ports.Clock
	log         *logger.Logger
}

// NewAllocator construye el asignador. maxAttempts <= 0 usa DefaultMaxAttempts.
func NewAllocator(maxAttempts int, now ports.Clock, log *logger.Logger) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if now == nil {
		now = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Allocator{maxAttempts: maxAttempts, now: now, log: log}
}

// Allocate lee la serie con bloqueo, renderiza candidatos incrementando el contador
// hasta encontrar uno libre y guarda el contador. La verificación es consultiva:
// el índice único del insert del documento es el árbitro final.
// Si la plantilla no parsea o la serie no se puede leer, usa el formato por defecto
// escaneando el mayor número del día.
func (a *Allocator) Allocate(ctx context.Context, series repository.NumberSeriesRepository, tenantID, seriesName string, reg Registry) (string, error) {
	now := a.now()
	s, err := series.GetForUpdate(ctx, tenantID, seriesName)
	if err != nil {
		a.log.Warn().Err(err).Str("tenant_id", tenantID).Str("series", seriesName).Msg("lectura de serie falló, usando formato por defecto")
		return a.fallback(ctx, entity.DefaultPrefix(seriesName), seriesName, reg)
	}
	if s == nil {
		s = &entity.NumberSeries{
			TenantID:     tenantID,
			Series:       seriesName,
			Prefix:       entity.DefaultPrefix(seriesName),
			Pattern:      entity.DefaultNumberPattern,
			NextSequence: 1,
		}
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = entity.DefaultPrefix(seriesName)
	}
	pattern, err := dnum.Parse(s.Pattern)
	if err != nil {
		a.log.Warn().Err(err).Str("tenant_id", tenantID).Str("series", seriesName).Msg("plantilla inválida, usando formato por defecto")
		return a.fallback(ctx, prefix, seriesName, reg)
	}

	seq := s.NextSequence
	if seq < 1 {
		seq = 1
	}
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate := pattern.Render(prefix, seq, now)
		seq++
		exists, err := reg.Exists(ctx, candidate)
		if err != nil {
			return "", domain.Storage("check number", err)
		}
		if exists {
			continue
		}
		s.NextSequence = seq
		if err := series.Save(ctx, s); err != nil {
			return "", domain.Storage("save number series", err)
		}
		return candidate, nil
	}
	return "", &domain.AllocationExhaustedError{Series: seriesName, Attempts: a.maxAttempts}
}

func (a *Allocator) fallback(ctx context.Context, prefix, seriesName string, reg Registry) (string, error) {
	now := a.now()
	highest, err := reg.MaxWithPrefix(ctx, dnum.DailyPrefix(prefix, now))
	if err != nil {
		return "", domain.Storage("scan numbers", err)
	}
	seq := dnum.ParseFallbackSequence(highest, prefix, now) + 1
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate := dnum.FallbackNumber(prefix, seq, now)
		seq++
		exists, err := reg.Exists(ctx, candidate)
		if err != nil {
			return "", domain.Storage("check number", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &domain.AllocationExhaustedError{Series: seriesName, Attempts: a.maxAttempts}
}

// DocumentRegistry números de ventas o compras de un tenant.
func DocumentRegistry(docs repository.DocumentRepository, tenantID string, docType entity.DocumentType) Registry {
	return documentRegistry{docs: docs, tenantID: tenantID, docType: docType}
}

type documentRegistry struct {
	docs     repository.DocumentRepository
	tenantID string
	docType  entity.DocumentType
}

func (r documentRegistry) Exists(ctx context.Context, number string) (bool, error) {
	return r.docs.NumberExists(ctx, r.tenantID, r.docType, number)
}

func (r documentRegistry) MaxWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.docs.MaxNumberWithPrefix(ctx, r.tenantID, r.docType, prefix)
}

// ReturnRegistry números de devoluciones de un tenant.
func ReturnRegistry(returns repository.ReturnRepository, tenantID string, returnType entity.ReturnType) Registry {
	return returnRegistry{returns: returns, tenantID: tenantID, returnType: returnType}
}

type returnRegistry struct {
	returns    repository.ReturnRepository
	tenantID   string
	returnType entity.ReturnType
}

func (r returnRegistry) Exists(ctx context.Context, number string) (bool, error) {
	return r.returns.NumberExists(ctx, r.tenantID, r.returnType, number)
}

func (r returnRegistry) MaxWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.returns.MaxNumberWithPrefix(ctx, r.tenantID, r.returnType, prefix)
}
