package quoter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"swapdeck/internal/amm"
	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
)

// DepositQuote estimates an add-liquidity operation. The counterpart amount
// is pinned to the pool ratio before the mint estimate runs, so the user
// never submits a mismatched ratio and gets silently credited for less.
type DepositQuote struct {
	// AmountA and AmountB are base units in the user's (a, b) order.
	AmountA fixedpoint.FixedPoint
	AmountB fixedpoint.FixedPoint
	// OtherAmount is AmountB rendered for the form's derived field.
	OtherAmount string
	// Minted is the estimated liquidity shares, base units.
	Minted fixedpoint.FixedPoint
	// FirstDeposit is true when the pool is empty and the minimum liquidity
	// lock will be burned from the minted shares.
	FirstDeposit bool
}

// QuoteAddLiquidity estimates shares minted for a single-sided input of
// amountA (human readable, in a's units) with the counterpart derived from
// the current reserve ratio.
func (q *Quoter) QuoteAddLiquidity(ctx context.Context, amountA string, a, b asset.Asset) (DepositQuote, error) {
	baseA, err := fixedpoint.ParseUnits(amountA, a.Decimals)
	if err != nil {
		return DepositQuote{}, err
	}
	if baseA.Sign() <= 0 {
		return DepositQuote{}, nil
	}

	snap, err := ledger.TakeSnapshot(ctx, q.ledger, a.ID, b.ID)
	if err != nil {
		q.logger.Warn("snapshot read failed", zap.Error(err))
		return DepositQuote{}, err
	}

	asset0, _, err := asset.Sort(a, b)
	if err != nil {
		return DepositQuote{}, fmt.Errorf("sort assets: %w", err)
	}
	aIsAsset0 := asset0.ID == a.ID

	if !snap.HasLiquidity() {
		// Empty or missing pool: the caller supplies both amounts and the
		// first-deposit branch applies. Without a counterpart there is
		// nothing to derive.
		return DepositQuote{AmountA: baseA, FirstDeposit: true}, nil
	}

	reserveA, reserveB := snap.Reserves.InOut(aIsAsset0)
	baseB := amm.QuoteDeposit(baseA, reserveA, reserveB)

	amount0, amount1 := baseA, baseB
	if !aIsAsset0 {
		amount0, amount1 = baseB, baseA
	}
	minted := amm.LiquidityMinted(amount0, amount1,
		snap.Reserves.Reserve0, snap.Reserves.Reserve1, snap.TotalSupply)

	return DepositQuote{
		AmountA:     baseA,
		AmountB:     baseB,
		OtherAmount: fixedpoint.FormatUnits(baseB, b.Decimals).String(),
		Minted:      minted,
	}, nil
}

// EstimateFirstDeposit estimates shares for creating a pool from two explicit
// amounts (human readable). Result is zero if the deposit cannot cover the
// minimum liquidity lock.
func (q *Quoter) EstimateFirstDeposit(amountA, amountB string, a, b asset.Asset) (fixedpoint.FixedPoint, error) {
	baseA, err := fixedpoint.ParseUnits(amountA, a.Decimals)
	if err != nil {
		return fixedpoint.Zero, err
	}
	baseB, err := fixedpoint.ParseUnits(amountB, b.Decimals)
	if err != nil {
		return fixedpoint.Zero, err
	}
	asset0, _, err := asset.Sort(a, b)
	if err != nil {
		return fixedpoint.Zero, err
	}
	amount0, amount1 := baseA, baseB
	if asset0.ID != a.ID {
		amount0, amount1 = baseB, baseA
	}
	return amm.LiquidityMinted(amount0, amount1,
		fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero), nil
}

// RedeemQuote estimates a remove-liquidity operation, amounts in the user's
// (a, b) order.
type RedeemQuote struct {
	AmountA fixedpoint.FixedPoint
	AmountB fixedpoint.FixedPoint
	// Human-readable forms for display.
	DisplayA string
	DisplayB string
}

// QuoteRemoveLiquidity estimates the pro-rata redemption for burning the
// given share amount (human readable, share decimals are the default 9).
func (q *Quoter) QuoteRemoveLiquidity(ctx context.Context, liquidity string, a, b asset.Asset) (RedeemQuote, error) {
	burned, err := fixedpoint.ParseUnits(liquidity, asset.DefaultDecimals)
	if err != nil {
		return RedeemQuote{}, err
	}
	if burned.Sign() <= 0 {
		return RedeemQuote{}, nil
	}

	snap, err := ledger.TakeSnapshot(ctx, q.ledger, a.ID, b.ID)
	if err != nil {
		q.logger.Warn("snapshot read failed", zap.Error(err))
		return RedeemQuote{}, err
	}

	asset0, _, err := asset.Sort(a, b)
	if err != nil {
		return RedeemQuote{}, fmt.Errorf("sort assets: %w", err)
	}

	amount0, amount1 := amm.RemoveAmounts(
		snap.Reserves.Reserve0, snap.Reserves.Reserve1, burned, snap.TotalSupply)

	amountA, amountB := amount0, amount1
	if asset0.ID != a.ID {
		amountA, amountB = amount1, amount0
	}
	return RedeemQuote{
		AmountA:  amountA,
		AmountB:  amountB,
		DisplayA: fixedpoint.FormatUnits(amountA, a.Decimals).String(),
		DisplayB: fixedpoint.FormatUnits(amountB, b.Decimals).String(),
	}, nil
}
