package numbering_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/numbering"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

const tenant = "t1"

func today() time.Time { return time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC) }

// fakeSeries contador en memoria; failGet simula una lectura corrupta.
type fakeSeries struct {
	rows    map[string]*entity.NumberSeries
	failGet error
	saves   int
}

func (f *fakeSeries) GetForUpdate(_ context.Context, tenantID, series string) (*entity.NumberSeries, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	if s, ok := f.rows[tenantID+"/"+series]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSeries) Save(_ context.Context, s *entity.NumberSeries) error {
	f.saves++
	cp := *s
	f.rows[s.TenantID+"/"+s.Series] = &cp
	return nil
}

type fakeRegistry struct {
	used map[string]bool
}

func (f *fakeRegistry) Exists(_ context.Context, number string) (bool, error) {
	return f.used[number], nil
}

func (f *fakeRegistry) MaxWithPrefix(_ context.Context, prefix string) (string, error) {
	best := ""
	for n := range f.used {
		if len(n) >= len(prefix) && n[:len(prefix)] == prefix && (len(n) > len(best) || (len(n) == len(best) && n > best)) {
			best = n
		}
	}
	return best, nil
}

func newSeries() *fakeSeries {
	return &fakeSeries{rows: map[string]*entity.NumberSeries{}}
}

func TestAllocate_SerieNuevaUsaDefaults(t *testing.T) {
	series := newSeries()
	reg := &fakeRegistry{used: map[string]bool{}}
	a := numbering.NewAllocator(0, today, nil)

	n, err := a.Allocate(context.Background(), series, tenant, entity.SeriesBill, reg)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260214-0001", n)
	assert.Equal(t, int64(2), series.rows[tenant+"/bill"].NextSequence)
}

func TestAllocate_SaltaNumerosUsados(t *testing.T) {
	series := newSeries()
	series.rows[tenant+"/bill"] = &entity.NumberSeries{TenantID: tenant, Series: "bill", Prefix: "F", Pattern: "{PREFIX}{YEAR}-{SEQUENCE3}", NextSequence: 7}
	reg := &fakeRegistry{used: map[string]bool{"F2026-007": true, "F2026-008": true}}
	a := numbering.NewAllocator(0, today, nil)

	n, err := a.Allocate(context.Background(), series, tenant, entity.SeriesBill, reg)
	require.NoError(t, err)
	assert.Equal(t, "F2026-009", n)
	assert.Equal(t, int64(10), series.rows[tenant+"/bill"].NextSequence)
}

func TestAllocate_AgotaIntentos(t *testing.T) {
	series := newSeries()
	used := map[string]bool{}
	for _, n := range []string{"INV-20260214-0001", "INV-20260214-0002", "INV-20260214-0003"} {
		used[n] = true
	}
	a := numbering.NewAllocator(3, today, nil)

	_, err := a.Allocate(context.Background(), series, tenant, entity.SeriesBill, &fakeRegistry{used: used})
	require.Error(t, err)
	var ae *domain.AllocationExhaustedError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 3, ae.Attempts)
	assert.Equal(t, 0, series.saves)
}

func TestAllocate_PlantillaCorruptaUsaFormatoPorDefecto(t *testing.T) {
	series := newSeries()
	series.rows[tenant+"/purchase"] = &entity.NumberSeries{TenantID: tenant, Series: "purchase", Prefix: "PUR", Pattern: "{PREFIX}-{NOPE}", NextSequence: 50}
	reg := &fakeRegistry{used: map[string]bool{"PUR-20260214-0041": true, "PUR-20260213-0099": true}}
	a := numbering.NewAllocator(0, today, nil)

	n, err := a.Allocate(context.Background(), series, tenant, entity.SeriesPurchase, reg)
	require.NoError(t, err)
	assert.Equal(t, "PUR-20260214-0042", n)
	assert.Equal(t, 0, series.saves)
}

func TestAllocate_LecturaFallidaUsaFormatoPorDefecto(t *testing.T) {
	series := newSeries()
	series.failGet = errors.New("row corrupted")
	a := numbering.NewAllocator(0, today, nil)

	n, err := a.Allocate(context.Background(), series, tenant, entity.SeriesSalesReturn, &fakeRegistry{used: map[string]bool{}})
	require.NoError(t, err)
	assert.Equal(t, "SR-20260214-0001", n)
}
