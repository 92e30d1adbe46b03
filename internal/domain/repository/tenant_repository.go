package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// NumberSeriesRepository contador durable de consecutivos por tenant y serie.
type NumberSeriesRepository interface {
	// GetForUpdate bloquea la fila del contador; nil, nil si la serie no existe aún.
	GetForUpdate(ctx context.Context, tenantID, series string) (*entity.NumberSeries, error)
	// Save inserta o actualiza la serie.
	Save(ctx context.Context, s *entity.NumberSeries) error
}

// TenantSettingsRepository configuración del tenant; nil, nil si no hay fila.
type TenantSettingsRepository interface {
	Get(ctx context.Context, tenantID string) (*entity.TenantSettings, error)
}
