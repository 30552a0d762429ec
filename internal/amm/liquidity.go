package amm

import (
	"swapdeck/internal/fixedpoint"
)

// MinimumLiquidityLock is the share amount permanently burned when a pool is
// created, mirroring the contract's guard against rounding exploits on an
// empty pool.
var MinimumLiquidityLock = fixedpoint.New(1000)

var shareScale = fixedpoint.New(10000)

// LiquidityMinted returns the liquidity shares credited for depositing
// (amount0, amount1) into a pool with the given canonical reserves and share
// supply.
//
// First deposit (supply and both reserves zero) mints
// floor(sqrt(amount0*amount1)) - MinimumLiquidityLock; a deposit too small to
// cover the lock mints zero. Subsequent deposits are credited for the
// limiting side only: both amounts carry the 997/1000 fee, and the minted
// shares are min(amount0Fee*supply/reserve0, amount1Fee*supply/reserve1).
// Callers should pin the counterpart amount via QuoteDeposit so a ratio
// mismatch truncates visibly instead of silently.
func LiquidityMinted(amount0, amount1, reserve0, reserve1, totalSupply fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	if totalSupply.IsZero() && reserve0.IsZero() && reserve1.IsZero() {
		root := amount0.Mul(amount1).Sqrt()
		if root.Cmp(MinimumLiquidityLock) <= 0 {
			return fixedpoint.Zero
		}
		return root.Sub(MinimumLiquidityLock)
	}
	if reserve0.IsZero() || reserve1.IsZero() || totalSupply.IsZero() {
		return fixedpoint.Zero
	}

	amount0WithFee := amount0.Mul(feeMul)
	amount1WithFee := amount1.Mul(feeMul)
	liquidity0 := amount0WithFee.Mul(totalSupply).Quo(reserve0.Mul(feeDen))
	liquidity1 := amount1WithFee.Mul(totalSupply).Quo(reserve1.Mul(feeDen))
	return fixedpoint.Min(liquidity0, liquidity1)
}

// RemoveAmounts returns the pro-rata redemption for burning liquidityBurned
// shares. The share of the pool is carried in basis points (x10000) so the
// intermediate division loses no more than the contract itself does. No fee
// applies on withdrawal. Any zero among the reserves or the total supply
// yields (0, 0).
func RemoveAmounts(reserve0, reserve1, liquidityBurned, totalLiquidity fixedpoint.FixedPoint) (amount0, amount1 fixedpoint.FixedPoint) {
	if reserve0.IsZero() || reserve1.IsZero() || totalLiquidity.IsZero() {
		return fixedpoint.Zero, fixedpoint.Zero
	}
	share := liquidityBurned.Mul(shareScale).Quo(totalLiquidity)
	amount0 = reserve0.Mul(share).Quo(shareScale)
	amount1 = reserve1.Mul(share).Quo(shareScale)
	return amount0, amount1
}

// QuoteDeposit returns the counterpart amount that keeps a deposit at the
// pool's current ratio: amountA * reserveB / reserveA. Zero reserves yield
// zero.
func QuoteDeposit(amountA, reserveA, reserveB fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	if amountA.Sign() <= 0 || reserveA.IsZero() || reserveB.IsZero() {
		return fixedpoint.Zero
	}
	return amountA.Mul(reserveB).Quo(reserveA)
}
