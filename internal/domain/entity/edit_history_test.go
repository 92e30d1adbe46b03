package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func TestSnapshot_ConservaDocumentoYLineas(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := &entity.Document{
		ID:          "doc-1",
		Type:        entity.DocumentBill,
		Number:      "INV-20260301-0001",
		Subtotal:    decimal.NewFromInt(500),
		GSTAmount:   decimal.NewFromInt(90),
		TotalAmount: decimal.NewFromInt(590),
		Status:      entity.StatusCompleted,
		CreatedAt:   created,
	}
	lines := []*entity.LineItem{{
		ID:        "line-1",
		ProductID: "p1",
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.NewFromInt(50),
		GSTRate:   decimal.NewFromInt(18),
		LineTotal: decimal.NewFromInt(590),
	}}

	data, err := entity.EncodeSnapshot(entity.NewSnapshot(doc, lines))
	require.NoError(t, err)

	got, err := entity.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, entity.SnapshotVersion, got.Version)
	assert.Equal(t, "INV-20260301-0001", got.Document.Number)
	assert.True(t, got.Document.TotalAmount.Equal(decimal.NewFromInt(590)))
	assert.True(t, got.Document.CreatedAt.Equal(created))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "line-1", got.Lines[0].ID)
	assert.True(t, got.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))
}

func TestDecodeSnapshot_VersionDesconocida(t *testing.T) {
	_, err := entity.DecodeSnapshot([]byte(`{"version":99,"document":{}}`))
	assert.Error(t, err)
}
