package listings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPercentage(t *testing.T) {
	cases := []struct {
		rate, pct, want float64
	}{
		{100, 10, 110},
		{50, 10, 55},
		{100, -10, 90},
		{100, 0, 100},
		{19.99, 10, 21.99},    // 21.989 rounds up
		{33.33, 15, 38.33},    // 38.3295 rounds up
		{0.01, 50, 0.02},      // 0.015 rounds half away from zero
		{249.50, -25, 187.13}, // 187.125 rounds half away from zero
	}
	for _, c := range cases {
		assert.InDeltaf(t, c.want, applyPercentage(c.rate, c.pct), 1e-9, "rate=%v pct=%v", c.rate, c.pct)
	}
}

// The ledger owns the stock invariant, so it rejects non-positive quantities
// itself rather than trusting callers to validate. A negative quantity would
// otherwise pass `stock >= $2` and grow stock through the reserve path.
func TestLedgerRejectsNonPositiveQuantity(t *testing.T) {
	l := &Ledger{}

	_, err := l.Reserve(context.Background(), "l1", 0)
	assert.ErrorIs(t, err, ErrBadQuantity)
	_, err = l.Reserve(context.Background(), "l1", -3)
	assert.ErrorIs(t, err, ErrBadQuantity)

	assert.ErrorIs(t, l.Release(context.Background(), "l1", 0), ErrBadQuantity)
	assert.ErrorIs(t, l.Release(context.Background(), "l1", -3), ErrBadQuantity)
}

func TestBulkAdjustRateRejectsBadAdjustment(t *testing.T) {
	l := &Ledger{}
	delta, pct := 5.0, 10.0

	_, err := l.BulkAdjustRate(context.Background(), "s1", MaterialLeather, RateAdjustment{})
	assert.ErrorIs(t, err, ErrBadAdjustment, "neither delta nor percent")

	_, err = l.BulkAdjustRate(context.Background(), "s1", MaterialLeather, RateAdjustment{Delta: &delta, Percent: &pct})
	assert.ErrorIs(t, err, ErrBadAdjustment, "both delta and percent")
}
