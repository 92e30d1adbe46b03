// Package settings combina los defaults del proceso con la configuración
// persistida de cada tenant.
package settings

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/editability"
	"github.com/jhoicas/pos-ledger/internal/domain/pricing"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	"github.com/jhoicas/pos-ledger/pkg/config"
)

// Defaults valores del proceso (config.LedgerConfig).
type Defaults struct {
	TaxLockDays             int
	OperatorEditWindowHours int
	RoundingMode            string
}

// FromConfig toma los defaults de la configuración cargada.
func FromConfig(cfg config.LedgerConfig) Defaults {
	return Defaults{
		TaxLockDays:             cfg.TaxLockDays,
		OperatorEditWindowHours: cfg.OperatorEditWindowHours,
		RoundingMode:            cfg.RoundingMode,
	}
}

// Effective configuración vigente para una operación.
type Effective struct {
	Rounder            pricing.Rounder
	AllowNegativeStock bool
	Editability        editability.Policy
}

// Resolver resuelve la configuración efectiva de un tenant.
type Resolver struct {
	defaults Defaults
}

// NewResolver construye el resolver. Valores cero en d toman los defaults del dominio.
func NewResolver(d Defaults) *Resolver {
	base := editability.DefaultPolicy()
	if d.TaxLockDays <= 0 {
		d.TaxLockDays = base.TaxLockDays
	}
	if d.OperatorEditWindowHours <= 0 {
		d.OperatorEditWindowHours = int(base.OperatorWindow / time.Hour)
	}
	if d.RoundingMode == "" {
		d.RoundingMode = pricing.RoundUnit
	}
	return &Resolver{defaults: d}
}

// Resolve lee tenant_settings (si existe) y aplica sus sobreescrituras.
func (r *Resolver) Resolve(ctx context.Context, repo repository.TenantSettingsRepository, tenantID string) (*Effective, error) {
	ts, err := repo.Get(ctx, tenantID)
	if err != nil {
		return nil, domain.Storage("get tenant settings", err)
	}
	policy := editability.PolicyFor(editability.Policy{
		TaxLockDays:    r.defaults.TaxLockDays,
		OperatorWindow: time.Duration(r.defaults.OperatorEditWindowHours) * time.Hour,
	}, ts)

	mode := r.defaults.RoundingMode
	allowNegative := false
	if ts != nil {
		if ts.RoundingMode != "" {
			mode = ts.RoundingMode
		}
		allowNegative = ts.AllowNegativeStock
	}
	rounder, err := pricing.NewRounder(mode)
	if err != nil {
		return nil, domain.Invalid("rounding_mode", err.Error())
	}
	return &Effective{Rounder: rounder, AllowNegativeStock: allowNegative, Editability: policy}, nil
}
