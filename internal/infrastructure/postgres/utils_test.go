package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/pkg/config"
)

func TestWithSavepoint_ErrorNoAbortaLaTransaccion(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 2})
	require.NoError(t, err)
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	err = withSavepoint(ctx, tx, func(q Querier) error {
		_, err := q.Exec(ctx, "SELECT 1/0")
		return err
	})
	require.Error(t, err)

	var n int
	require.NoError(t, tx.QueryRow(ctx, "SELECT 1").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithSavepoint_FueraDeTransaccion(t *testing.T) {
	called := false
	err := withSavepoint(context.Background(), nil, func(Querier) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
