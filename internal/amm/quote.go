// Package amm implements the constant-product swap and liquidity-share math
// of the on-chain pool contracts. All functions are pure and operate on
// base-unit integer amounts; they return zero for degenerate market state
// (empty reserves, dust inputs) instead of failing, so callers can render a
// "no liquidity" state without special-casing.
//
// The 0.3% pool fee is applied exactly once, on the input side, across every
// computation here. Quotes, price impact and minted shares must all agree on
// that point or the displayed figures drift from what the contract enforces.
package amm

import (
	"swapdeck/internal/fixedpoint"
)

var (
	feeMul = fixedpoint.New(997)
	feeDen = fixedpoint.New(1000)
	one    = fixedpoint.New(1)
	hundit = fixedpoint.New(100)
)

// AmountOut returns the output amount for swapping amountIn against the given
// reserves: floor(aInFee * reserveOut / (reserveIn*1000 + aInFee)) with
// aInFee = amountIn*997. Zero reserves or a non-positive input yield zero.
func AmountOut(amountIn, reserveIn, reserveOut fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	if amountIn.Sign() <= 0 || reserveIn.IsZero() || reserveOut.IsZero() {
		return fixedpoint.Zero
	}
	amountInWithFee := amountIn.Mul(feeMul)
	numerator := amountInWithFee.Mul(reserveOut)
	denominator := reserveIn.Mul(feeDen).Add(amountInWithFee)
	return numerator.Quo(denominator)
}

// AmountIn returns the input required to receive amountOut:
// floor(reserveIn*amountOut*1000 / ((reserveOut-amountOut)*997)) + 1.
// Zero reserves, a non-positive target, or a target at or beyond the output
// reserve (the pool cannot be drained) yield zero.
func AmountIn(amountOut, reserveIn, reserveOut fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	if amountOut.Sign() <= 0 || reserveIn.IsZero() || reserveOut.IsZero() {
		return fixedpoint.Zero
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return fixedpoint.Zero
	}
	numerator := reserveIn.Mul(amountOut).Mul(feeDen)
	denominator := reserveOut.Sub(amountOut).Mul(feeMul)
	return numerator.Quo(denominator).Add(one)
}

// Impact describes how far a trade's execution price sits from the pre-trade
// mid-price. Percent keeps full precision for slippage checks; Display is for
// the UI only.
type Impact struct {
	// Percent is (midPrice - executionPrice) / midPrice * 100.
	Percent fixedpoint.FixedPoint
	// MidPrice is the reserve ratio before the trade, in base units.
	MidPrice fixedpoint.FixedPoint
	// ExecutionPrice is the effective human-readable price of this trade:
	// output per input, adjusted for both assets' decimals.
	ExecutionPrice fixedpoint.FixedPoint
}

// displayFloor is the threshold below which impact renders as "<0.01".
var displayFloor = fixedpoint.MustFromString("0.01")

// Display renders the percentage for the UI, collapsing negligible impact
// to "<0.01". The numeric Percent stays available for threshold checks.
func (i Impact) Display() string {
	if i.Percent.LessThan(displayFloor) {
		return "<0.01"
	}
	return i.Percent.Truncate(2).String()
}

// PriceImpact computes the mid-price deviation for a trade of amountIn (base
// units of the from-asset) against canonical reserves. The two directions are
// not symmetric: the contract front runs the same formulas, so both branches
// are kept exactly as the chain-side convention has them rather than derived
// from one another.
func PriceImpact(fromIsAsset0 bool, amountIn, reserve0, reserve1 fixedpoint.FixedPoint, fromDecimals, toDecimals uint8) Impact {
	if amountIn.Sign() <= 0 || reserve0.IsZero() || reserve1.IsZero() {
		return Impact{}
	}

	fee := fixedpoint.New(3).Div(feeDen)
	amountInWithFee := amountIn.Mul(one.Sub(fee))

	var idealOut, midPrice, executionPrice fixedpoint.FixedPoint
	if fromIsAsset0 {
		// asset0 -> asset1
		idealOut = amountInWithFee.Mul(reserve1).Div(reserve0.Add(amountInWithFee))
		midPrice = reserve1.Div(reserve0)
		executionPrice = amountIn.Div(idealOut)
	} else {
		// asset1 -> asset0
		idealOut = amountInWithFee.Mul(reserve0).Div(reserve1.Add(amountInWithFee))
		midPrice = reserve0.Div(reserve1)
		executionPrice = idealOut.Div(amountIn)
	}
	if idealOut.IsZero() || midPrice.IsZero() {
		return Impact{}
	}

	percent := midPrice.Sub(executionPrice).Div(midPrice).Mul(hundit)

	// Human-readable execution price: output per input unit.
	humanIn := fixedpoint.FormatUnits(amountIn, fromDecimals)
	humanOut := fixedpoint.FormatUnits(idealOut, toDecimals)
	return Impact{
		Percent:        percent,
		MidPrice:       midPrice,
		ExecutionPrice: humanOut.Div(humanIn),
	}
}

// MinimumReceived applies a slippage tolerance (a fraction, 0.005 = 0.5%) to
// a quoted output. The result is the revert guard the swap call carries, so
// the UI figure and the submitted bound must come from this one place.
func MinimumReceived(quotedOut, slippage fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	return quotedOut.Mul(one.Sub(slippage)).Truncate(0)
}

// MaximumInput is the upper input bound for an exact-output swap under the
// same tolerance.
func MaximumInput(quotedIn, slippage fixedpoint.FixedPoint) fixedpoint.FixedPoint {
	return quotedIn.Mul(one.Add(slippage)).Truncate(0)
}
