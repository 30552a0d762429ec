package amm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swapdeck/internal/fixedpoint"
)

func TestLiquidityMintedFirstDeposit(t *testing.T) {
	// sqrt(1e9 * 4e9) = 2e9, minus the 1000 locked shares.
	minted := LiquidityMinted(fp(1_000_000_000), fp(4_000_000_000), fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero)
	assert.Equal(t, "1999999000", minted.String())

	// A non-perfect square floors before the lock is subtracted.
	minted = LiquidityMinted(fp(10), fp(1_000_000), fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero)
	// sqrt(10_000_000) = 3162 -> 2162 after the lock.
	assert.Equal(t, "2162", minted.String())
}

func TestLiquidityMintedFirstDepositBelowLock(t *testing.T) {
	// A deposit whose root cannot cover the locked shares mints nothing.
	minted := LiquidityMinted(fp(1000), fp(1000), fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero)
	assert.True(t, minted.IsZero())

	// One share above the lock.
	minted = LiquidityMinted(fp(1_002_001), fp(1), fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero)
	assert.Equal(t, "1", minted.String())
}

func TestLiquidityMintedExistingPool(t *testing.T) {
	r0, r1, supply := fp(1000), fp(2000), fp(1000)

	// l0 = floor(100*997/1000 * 1000/1000) = 99
	// l1 = floor(100*997/1000 * 1000/2000) = 49; the limiting side wins.
	minted := LiquidityMinted(fp(100), fp(100), r0, r1, supply)
	assert.Equal(t, "49", minted.String())

	// A ratio-matched deposit is limited equally on both sides.
	minted = LiquidityMinted(fp(100), fp(200), r0, r1, supply)
	assert.Equal(t, "99", minted.String())
}

func TestLiquidityMintedDegeneratePool(t *testing.T) {
	// Supply without reserves (or vice versa) is corrupt state; mint nothing.
	assert.True(t, LiquidityMinted(fp(100), fp(100), fixedpoint.Zero, fp(1000), fp(1000)).IsZero())
	assert.True(t, LiquidityMinted(fp(100), fp(100), fp(1000), fixedpoint.Zero, fp(1000)).IsZero())
	assert.True(t, LiquidityMinted(fp(100), fp(100), fp(1000), fp(1000), fixedpoint.Zero).IsZero())
}

func TestRemoveAmountsProRata(t *testing.T) {
	// Burning 100 of 1000 shares redeems 10% of each reserve, no fee.
	a0, a1 := RemoveAmounts(fp(1000), fp(2000), fp(100), fp(1000))
	assert.Equal(t, "100", a0.String())
	assert.Equal(t, "200", a1.String())

	// Burning everything redeems everything.
	a0, a1 = RemoveAmounts(fp(1000), fp(2000), fp(1000), fp(1000))
	assert.Equal(t, "1000", a0.String())
	assert.Equal(t, "2000", a1.String())
}

func TestRemoveAmountsFloorsTheShare(t *testing.T) {
	// 1 of 3000 shares is 3 basis points; both payouts floor.
	a0, a1 := RemoveAmounts(fp(10_000), fp(20_000), fp(1), fp(3000))
	assert.Equal(t, "3", a0.String())
	assert.Equal(t, "6", a1.String())
}

func TestRemoveAmountsZeroGuards(t *testing.T) {
	for _, tt := range []struct {
		name               string
		r0, r1, burn, tot  int64
	}{
		{"zero reserve0", 0, 2000, 100, 1000},
		{"zero reserve1", 1000, 0, 100, 1000},
		{"zero supply", 1000, 2000, 100, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a0, a1 := RemoveAmounts(fp(tt.r0), fp(tt.r1), fp(tt.burn), fp(tt.tot))
			assert.True(t, a0.IsZero())
			assert.True(t, a1.IsZero())
		})
	}
}

func TestQuoteDeposit(t *testing.T) {
	// Counterpart follows the reserve ratio exactly.
	assert.Equal(t, "200", QuoteDeposit(fp(100), fp(1000), fp(2000)).String())
	assert.Equal(t, "50", QuoteDeposit(fp(100), fp(2000), fp(1000)).String())

	// Truncation, not rounding.
	assert.Equal(t, "66", QuoteDeposit(fp(100), fp(3000), fp(2000)).String())

	assert.True(t, QuoteDeposit(fixedpoint.Zero, fp(1000), fp(2000)).IsZero())
	assert.True(t, QuoteDeposit(fp(100), fixedpoint.Zero, fp(2000)).IsZero())
}
