package inventory_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestAggregate_ApplyYReverse(t *testing.T) {
	base := inventory.Aggregate{Store: 100, Release: 30, TotalCount: 70}

	cases := []struct {
		name    string
		effect  inventory.Effect
		applied inventory.Aggregate
		reverse inventory.Aggregate
	}{
		{
			name:    "entrada",
			effect:  inventory.Effect{Classification: inventory.ClassificationStore, Quantity: 10},
			applied: inventory.Aggregate{Store: 110, Release: 30, TotalCount: 80},
			reverse: inventory.Aggregate{Store: 90, Release: 30, TotalCount: 60},
		},
		{
			name:    "salida",
			effect:  inventory.Effect{Classification: inventory.ClassificationRelease, Quantity: 20},
			applied: inventory.Aggregate{Store: 100, Release: 50, TotalCount: 50},
			reverse: inventory.Aggregate{Store: 100, Release: 10, TotalCount: 90},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := base.Apply(tc.effect)
			require.NoError(t, err)
			assert.Equal(t, tc.applied, got)
			assert.Equal(t, tc.reverse, base.Reverse(tc.effect))
			assert.Equal(t, inventory.Aggregate{Store: 100, Release: 30, TotalCount: 70}, base,
				"Apply y Reverse no deben mutar el receptor")
		})
	}
}

func TestAggregate_ApplySalidaExcedeTotal(t *testing.T) {
	base := inventory.Aggregate{Store: 100, Release: 30, TotalCount: 70}

	got, err := base.Apply(inventory.Effect{Classification: inventory.ClassificationRelease, Quantity: 1000})
	assert.ErrorIs(t, err, domain.ErrStockUnderflow)
	assert.Equal(t, base, got, "ante underflow se devuelve el agregado original")
}

func TestAggregate_ApplyFueraDeRango(t *testing.T) {
	base := inventory.Aggregate{Store: 100, Release: 50, TotalCount: 50}

	cases := []struct {
		name   string
		base   inventory.Aggregate
		effect inventory.Effect
	}{
		{
			name:   "entrada desborda store",
			base:   base,
			effect: inventory.Effect{Classification: inventory.ClassificationStore, Quantity: math.MaxInt64 - 60},
		},
		{
			name:   "entrada máxima sobre existencias",
			base:   inventory.Aggregate{Store: 10, TotalCount: 10},
			effect: inventory.Effect{Classification: inventory.ClassificationStore, Quantity: math.MaxInt64},
		},
		{
			name:   "salida desborda release",
			base:   inventory.Aggregate{Store: math.MaxInt64, Release: 10, TotalCount: math.MaxInt64 - 10},
			effect: inventory.Effect{Classification: inventory.ClassificationRelease, Quantity: math.MaxInt64},
		},
		{
			name:   "cantidad negativa",
			base:   base,
			effect: inventory.Effect{Classification: inventory.ClassificationStore, Quantity: -1},
		},
		{
			name:   "clasificación desconocida",
			base:   base,
			effect: inventory.Effect{Classification: "TRANSFER", Quantity: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.base.Apply(tc.effect)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.NotErrorIs(t, err, domain.ErrStockUnderflow)
			assert.Equal(t, tc.base, got)
		})
	}
}

func TestAggregate_ApplyEnElLimite(t *testing.T) {
	got, err := inventory.Aggregate{Store: 10, TotalCount: 10}.Apply(
		inventory.Effect{Classification: inventory.ClassificationStore, Quantity: math.MaxInt64 - 10})
	require.NoError(t, err)
	assert.Equal(t, inventory.Aggregate{Store: math.MaxInt64, TotalCount: math.MaxInt64}, got)
	assert.True(t, got.Consistent())
}

func TestAggregate_ApplyLuegoReverseEsIdentidad(t *testing.T) {
	base := inventory.Aggregate{Store: 5, Release: 2, TotalCount: 3}
	for _, e := range []inventory.Effect{
		{Classification: inventory.ClassificationStore, Quantity: 7},
		{Classification: inventory.ClassificationRelease, Quantity: 3},
		{Classification: inventory.ClassificationRelease, Quantity: 0},
	} {
		applied, err := base.Apply(e)
		require.NoError(t, err)
		assert.Equal(t, base, applied.Reverse(e))
		assert.True(t, applied.Consistent())
	}
}

func TestAggregate_ReverseNoValidaPiso(t *testing.T) {
	base := inventory.Aggregate{Store: 100, Release: 50, TotalCount: 50}
	got := base.Reverse(inventory.Effect{Classification: inventory.ClassificationStore, Quantity: 100})
	assert.Equal(t, inventory.Aggregate{Store: 0, Release: 50, TotalCount: -50}, got)
	assert.False(t, got.Consistent())
}

func TestShift_RespetaSigno(t *testing.T) {
	base := inventory.Aggregate{}
	e := inventory.Effect{Classification: inventory.ClassificationStore, Quantity: 4}

	up, err := inventory.Shift(base, e, inventory.SignApply)
	require.NoError(t, err)
	assert.Equal(t, int64(4), up.TotalCount)

	down, err := inventory.Shift(up, e, inventory.SignReverse)
	require.NoError(t, err)
	assert.Equal(t, base, down)

	_, err = inventory.Shift(base, e, inventory.Sign(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEffect_Validate(t *testing.T) {
	assert.NoError(t, inventory.Effect{Classification: inventory.ClassificationStore, Quantity: 0}.Validate())
	assert.ErrorIs(t, inventory.Effect{Classification: "TRANSFER", Quantity: 1}.Validate(), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.Effect{Classification: inventory.ClassificationRelease, Quantity: -1}.Validate(), domain.ErrInvalidInput)
}

func TestParseClassification(t *testing.T) {
	c, err := inventory.ParseClassification("RELEASE")
	require.NoError(t, err)
	assert.Equal(t, inventory.ClassificationRelease, c)

	_, err = inventory.ParseClassification("release")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotalPrice(t *testing.T) {
	total, err := inventory.TotalPrice(100, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(100000)))

	_, err = inventory.TotalPrice(1, decimal.RequireFromString("10.5"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el precio unitario debe ser entero")

	_, err = inventory.TotalPrice(1, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.TotalPrice(math.MaxInt64, decimal.NewFromInt(2))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el total no debe desbordar BIGINT")
}

func TestAggregate_AddNoValidaPiso(t *testing.T) {
	got := inventory.Aggregate{}.Add(inventory.Effect{Classification: inventory.ClassificationRelease, Quantity: 3})
	assert.Equal(t, inventory.Aggregate{Store: 0, Release: 3, TotalCount: -3}, got)
}
