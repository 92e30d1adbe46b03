package numbering_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/numbering"
	"github.com/jhoicas/pos-ledger/internal/domain"
)

type countingGuard struct {
	acquired, released int
	err                error
}

func (g *countingGuard) Acquire(context.Context, string, string) (func(), error) {
	if g.err != nil {
		return nil, g.err
	}
	g.acquired++
	return func() { g.released++ }, nil
}

func TestCommit_ReintentaAnteNumeroDuplicado(t *testing.T) {
	guard := &countingGuard{}
	c := numbering.NewCommitter(guard, 3, nil)
	calls := 0

	err := c.Commit(context.Background(), tenant, "bill", func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrDuplicateNumber
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, guard.acquired)
	assert.Equal(t, 1, guard.released)
}

func TestCommit_AgotaReintentos(t *testing.T) {
	c := numbering.NewCommitter(nil, 2, nil)
	err := c.Commit(context.Background(), tenant, "bill", func(context.Context) error {
		return domain.ErrDuplicateNumber
	})
	assert.ErrorIs(t, err, domain.ErrAllocationExhausted)
}

func TestCommit_OtrosErroresNoSeReintentan(t *testing.T) {
	c := numbering.NewCommitter(nil, 5, nil)
	calls := 0
	err := c.Commit(context.Background(), tenant, "bill", func(context.Context) error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls)
}

func TestCommit_GuardCaidoNoBloquea(t *testing.T) {
	guard := &countingGuard{err: errors.New("redis down")}
	c := numbering.NewCommitter(guard, 1, nil)
	calls := 0
	err := c.Commit(context.Background(), tenant, "bill", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
