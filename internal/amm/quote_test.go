package amm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapdeck/internal/fixedpoint"
)

func fp(v int64) fixedpoint.FixedPoint { return fixedpoint.New(v) }

func TestAmountOutKnownValues(t *testing.T) {
	// floor(1000*997*2_000_000 / (1_000_000*1000 + 1000*997)) = 1992.
	out := AmountOut(fp(1000), fp(1_000_000), fp(2_000_000))
	assert.Equal(t, "1992", out.String())

	// Balanced pool, tiny trade: just under 1:1 after the 0.3% fee.
	out = AmountOut(fp(1000), fp(1_000_000_000), fp(1_000_000_000))
	assert.Equal(t, "996", out.String())
}

func TestAmountOutDegenerateInputs(t *testing.T) {
	assert.True(t, AmountOut(fixedpoint.Zero, fp(1000), fp(1000)).IsZero())
	assert.True(t, AmountOut(fp(-5), fp(1000), fp(1000)).IsZero())
	assert.True(t, AmountOut(fp(100), fixedpoint.Zero, fp(1000)).IsZero())
	assert.True(t, AmountOut(fp(100), fp(1000), fixedpoint.Zero).IsZero())
}

func TestAmountOutNeverDrainsReserve(t *testing.T) {
	reserveIn, reserveOut := fp(1_000_000), fp(2_000_000)

	// Even an absurdly large input cannot reach the output reserve.
	for _, in := range []int64{1, 1000, 1_000_000, 1_000_000_000, 1_000_000_000_000} {
		out := AmountOut(fp(in), reserveIn, reserveOut)
		assert.True(t, out.LessThan(reserveOut), "input %d drained the pool", in)
	}
}

func TestAmountOutMonotonic(t *testing.T) {
	reserveIn, reserveOut := fp(1_000_000_000), fp(3_000_000_000)

	prev := fixedpoint.Zero
	for _, in := range []int64{100, 1000, 10_000, 100_000, 1_000_000} {
		out := AmountOut(fp(in), reserveIn, reserveOut)
		assert.True(t, out.Cmp(prev) >= 0, "output decreased at input %d", in)
		prev = out
	}
}

func TestAmountInKnownValuesAndGuards(t *testing.T) {
	// floor(1_000_000*1992*1000 / ((2_000_000-1992)*997)) + 1 = 1000.
	in := AmountIn(fp(1992), fp(1_000_000), fp(2_000_000))
	assert.Equal(t, "1000", in.String())

	assert.True(t, AmountIn(fixedpoint.Zero, fp(1000), fp(1000)).IsZero())
	assert.True(t, AmountIn(fp(100), fixedpoint.Zero, fp(1000)).IsZero())
	// Asking for the whole reserve or more is unpayable.
	assert.True(t, AmountIn(fp(2_000_000), fp(1_000_000), fp(2_000_000)).IsZero())
	assert.True(t, AmountIn(fp(3_000_000), fp(1_000_000), fp(2_000_000)).IsZero())
}

func TestAmountInIsInverseOfAmountOut(t *testing.T) {
	reserveIn, reserveOut := fp(1_000_000_000), fp(2_500_000_000)

	for _, target := range []int64{1000, 123_456, 10_000_000, 900_000_000} {
		in := AmountIn(fp(target), reserveIn, reserveOut)
		require.True(t, in.IsPositive())

		// Paying the computed input must yield at least the target, and the
		// +1 on the input keeps the overshoot within a few base units.
		got := AmountOut(in, reserveIn, reserveOut)
		assert.True(t, got.Cmp(fp(target)) >= 0, "target %d: got %s", target, got)
		diff := got.Sub(fp(target))
		assert.True(t, diff.LessThan(fp(5)), "target %d overshoots by %s", target, diff)
	}
}

func TestPriceImpactSmallTradeIsNegligible(t *testing.T) {
	// 1e9 base units against 1e15 reserves barely moves the pool; the fee
	// keeps the asset1 -> asset0 impact just above zero.
	imp := PriceImpact(false, fp(1_000_000_000), fp(1_000_000_000_000_000), fp(1_000_000_000_000_000), 9, 9)
	assert.Equal(t, "<0.01", imp.Display())
	assert.True(t, imp.Percent.IsPositive())
}

func TestPriceImpactLargeTrade(t *testing.T) {
	// Trading 10% of the input reserve moves the price visibly.
	imp := PriceImpact(false, fp(100_000_000), fp(1_000_000_000), fp(1_000_000_000), 9, 9)
	assert.True(t, imp.Percent.GreaterThan(fixedpoint.MustFromString("5")),
		"impact %s should exceed 5%%", imp.Percent)
	assert.NotEqual(t, "<0.01", imp.Display())
}

func TestPriceImpactAsset0DirectionConvention(t *testing.T) {
	// The asset0 -> asset1 branch prices execution as input per output, so a
	// balanced pool reads as negative percent and collapses to the "<0.01"
	// display.
	imp := PriceImpact(true, fp(1_000_000), fp(1_000_000_000), fp(1_000_000_000), 9, 9)
	assert.True(t, imp.Percent.IsNegative())
	assert.Equal(t, "<0.01", imp.Display())
}

func TestPriceImpactDirectionsUseTheirOwnMidPrice(t *testing.T) {
	r0, r1 := fp(1_000_000_000), fp(4_000_000_000)
	in := fp(10_000_000)

	fwd := PriceImpact(true, in, r0, r1, 9, 9)
	back := PriceImpact(false, in, r0, r1, 9, 9)

	assert.Equal(t, "4", fwd.MidPrice.String())
	assert.Equal(t, "0.25", back.MidPrice.String())
}

func TestPriceImpactDegenerateInputs(t *testing.T) {
	imp := PriceImpact(true, fixedpoint.Zero, fp(1000), fp(1000), 9, 9)
	assert.True(t, imp.Percent.IsZero())

	imp = PriceImpact(true, fp(100), fixedpoint.Zero, fp(1000), 9, 9)
	assert.True(t, imp.Percent.IsZero())
}

func TestImpactDisplayThreshold(t *testing.T) {
	assert.Equal(t, "<0.01", Impact{Percent: fixedpoint.MustFromString("0.009")}.Display())
	assert.Equal(t, "0.01", Impact{Percent: fixedpoint.MustFromString("0.0199")}.Display())
	assert.Equal(t, "12.34", Impact{Percent: fixedpoint.MustFromString("12.3456")}.Display())
}

func TestSlippageBounds(t *testing.T) {
	halfPercent := fixedpoint.MustFromString("0.005")

	// 1992 * 0.995 = 1982.04, truncated to 1982.
	assert.Equal(t, "1982", MinimumReceived(fp(1992), halfPercent).String())
	// 1000 * 1.005 = 1005.
	assert.Equal(t, "1005", MaximumInput(fp(1000), halfPercent).String())

	// Zero tolerance passes the quote through unchanged.
	assert.Equal(t, "1992", MinimumReceived(fp(1992), fixedpoint.Zero).String())
}
