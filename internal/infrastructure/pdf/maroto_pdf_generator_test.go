package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestGenerateKardexPDF(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	item := &entity.Item{ID: "7f1c2d1e-0000-4000-8000-000000000001", Name: "Potato", Store: 100, Release: 30, TotalCount: 70}
	rows := []appinventory.KardexRow{
		{Movement: &entity.MovementEntry{
			ID: "m1", Classification: inventory.ClassificationStore, Quantity: 100,
			UnitPrice: decimal.NewFromInt(1000), TotalPrice: decimal.NewFromInt(100000), CreatedAt: now,
		}, Balance: 100},
		{Movement: &entity.MovementEntry{
			ID: "m2", Classification: inventory.ClassificationRelease, Quantity: 30, Memo: "venta",
			UnitPrice: decimal.Zero, TotalPrice: decimal.Zero, CreatedAt: now,
		}, Balance: 70},
	}

	out, err := NewMarotoPDFGenerator().GenerateKardexPDF(context.Background(), item, rows)
	require.NoError(t, err)
	require.True(t, len(out) > 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "0", formatQty(0))
	assert.Equal(t, "100.000", formatQty(100000))
	assert.Equal(t, "-1.500", formatQty(-1500))
}
