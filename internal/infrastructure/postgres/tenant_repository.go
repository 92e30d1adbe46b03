package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var (
	_ repository.NumberSeriesRepository   = (*NumberSeriesRepo)(nil)
	_ repository.TenantSettingsRepository = (*TenantSettingsRepo)(nil)
)

// NumberSeriesRepo contadores de consecutivos por tenant y serie.
type NumberSeriesRepo struct {
	q Querier
}

// NewNumberSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNumberSeriesRepository(q Querier) *NumberSeriesRepo {
	return &NumberSeriesRepo{q: q}
}

// GetForUpdate lee y bloquea la fila del contador; nil si la serie aún no existe.
// La lectura corre bajo un savepoint: si falla, el llamador puede seguir usando la transacción.
func (r *NumberSeriesRepo) GetForUpdate(ctx context.Context, tenantID, series string) (*entity.NumberSeries, error) {
	var (
		s     entity.NumberSeries
		found bool
	)
	err := withSavepoint(ctx, r.q, func(q Querier) error {
		err := q.QueryRow(ctx, `
			SELECT tenant_id, series, prefix, pattern, next_sequence
			FROM number_series WHERE tenant_id = $1 AND series = $2 FOR UPDATE`, tenantID, series).
			Scan(&s.TenantID, &s.Series, &s.Prefix, &s.Pattern, &s.NextSequence)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get number series: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &s, nil
}

// Save inserta o actualiza la serie.
func (r *NumberSeriesRepo) Save(ctx context.Context, s *entity.NumberSeries) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO number_series (tenant_id, series, prefix, pattern, next_sequence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, series) DO UPDATE
		SET prefix = EXCLUDED.prefix, pattern = EXCLUDED.pattern, next_sequence = EXCLUDED.next_sequence`,
		s.TenantID, s.Series, s.Prefix, s.Pattern, s.NextSequence)
	if err != nil {
		return fmt.Errorf("save number series: %w", err)
	}
	return nil
}

// TenantSettingsRepo configuración por tenant.
type TenantSettingsRepo struct {
	q Querier
}

// NewTenantSettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantSettingsRepository(q Querier) *TenantSettingsRepo {
	return &TenantSettingsRepo{q: q}
}

// Get configuración del tenant; nil si no hay fila.
func (r *TenantSettingsRepo) Get(ctx context.Context, tenantID string) (*entity.TenantSettings, error) {
	var s entity.TenantSettings
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, tax_lock_days, operator_edit_window_hours, allow_negative_stock, rounding_mode
		FROM tenant_settings WHERE tenant_id = $1`, tenantID).
		Scan(&s.TenantID, &s.TaxLockDays, &s.OperatorEditWindowHours, &s.AllowNegativeStock, &s.RoundingMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant settings: %w", err)
	}
	return &s, nil
}

// Save inserta o reemplaza la configuración del tenant.
func (r *TenantSettingsRepo) Save(ctx context.Context, s *entity.TenantSettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tenant_settings (tenant_id, tax_lock_days, operator_edit_window_hours, allow_negative_stock, rounding_mode)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE
		SET tax_lock_days = EXCLUDED.tax_lock_days,
		    operator_edit_window_hours = EXCLUDED.operator_edit_window_hours,
		    allow_negative_stock = EXCLUDED.allow_negative_stock,
		    rounding_mode = EXCLUDED.rounding_mode`,
		s.TenantID, s.TaxLockDays, s.OperatorEditWindowHours, s.AllowNegativeStock, s.RoundingMode)
	if err != nil {
		return fmt.Errorf("save tenant settings: %w", err)
	}
	return nil
}
