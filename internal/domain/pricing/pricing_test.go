package pricing

import (
	"testing"

	"photo_commerce/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCalculate_IncrementalBuckets(t *testing.T) {
	// [{1-10, $5}, {11-20, $4}], default $6, qty 15:
	// 10x500 + 5x400 = 7000, flat 15x600 = 9000, savings 2000.
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 500},
		{MinQty: 11, MaxQty: intPtr(20), UnitPriceCents: 400},
	}

	q := Calculate(15, tiers, 600)

	assert.Equal(t, int64(7000), q.TotalCents)
	assert.Equal(t, int64(9000), q.FlatTotalCents)
	assert.Equal(t, int64(2000), q.SavingsCents)

	require.Len(t, q.Breakdown, 2)
	assert.Equal(t, "1-10", q.Breakdown[0].Label)
	assert.Equal(t, 10, q.Breakdown[0].Qty)
	assert.Equal(t, int64(5000), q.Breakdown[0].SubtotalCents)
	assert.Equal(t, "11-20", q.Breakdown[1].Label)
	assert.Equal(t, 5, q.Breakdown[1].Qty)
	assert.Equal(t, int64(2000), q.Breakdown[1].SubtotalCents)
}

func TestCalculate_GapFallsBackToDefault(t *testing.T) {
	// Schedule only covers 1-5; items 6-8 must be charged at the default,
	// not zero and not an error.
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(5), UnitPriceCents: 300},
	}

	q := Calculate(8, tiers, 600)

	assert.Equal(t, int64(5*300+3*600), q.TotalCents)
	require.Len(t, q.Breakdown, 2)
	assert.Equal(t, StandardLabel, q.Breakdown[1].Label)
	assert.Equal(t, 3, q.Breakdown[1].Qty)
	assert.Equal(t, int64(600), q.Breakdown[1].UnitPriceCents)
}

func TestCalculate_ZeroQuantity(t *testing.T) {
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 500},
	}

	q := Calculate(0, tiers, 600)

	assert.Equal(t, int64(0), q.TotalCents)
	assert.Equal(t, int64(0), q.SavingsCents)
	assert.Empty(t, q.Breakdown)
}

func TestCalculate_NoSchedule(t *testing.T) {
	q := Calculate(7, nil, 450)

	assert.Equal(t, int64(3150), q.TotalCents)
	assert.Equal(t, int64(3150), q.FlatTotalCents)
	assert.Equal(t, int64(0), q.SavingsCents)
	assert.Empty(t, q.Breakdown)
}

func TestCalculate_UnboundedTier(t *testing.T) {
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 500},
		{MinQty: 11, UnitPriceCents: 350},
	}

	q := Calculate(40, tiers, 600)

	assert.Equal(t, int64(10*500+30*350), q.TotalCents)
	require.Len(t, q.Breakdown, 2)
	assert.Equal(t, "11+", q.Breakdown[1].Label)
	assert.Equal(t, 30, q.Breakdown[1].Qty)
}

func TestCalculate_TierBeyondQuantityNeverReached(t *testing.T) {
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 500},
		{MinQty: 11, MaxQty: intPtr(20), UnitPriceCents: 400},
	}

	q := Calculate(3, tiers, 600)

	assert.Equal(t, int64(1500), q.TotalCents)
	require.Len(t, q.Breakdown, 1)
}

func TestCalculate_TiersAboveDefaultNeverNegativeSavings(t *testing.T) {
	tiers := models.TierSchedule{
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 900},
	}

	q := Calculate(5, tiers, 600)

	assert.Equal(t, int64(4500), q.TotalCents)
	assert.Equal(t, int64(0), q.SavingsCents)
}

func TestCalculate_UnsortedScheduleIsSortedFirst(t *testing.T) {
	tiers := models.TierSchedule{
		{MinQty: 11, MaxQty: intPtr(20), UnitPriceCents: 400},
		{MinQty: 1, MaxQty: intPtr(10), UnitPriceCents: 500},
	}

	q := Calculate(15, tiers, 600)

	assert.Equal(t, int64(7000), q.TotalCents)
	assert.Equal(t, "1-10", q.Breakdown[0].Label)
}
