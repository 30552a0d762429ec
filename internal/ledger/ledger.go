// Package ledger is the typed boundary to the on-chain pool contracts. The
// rest of the application never builds wire-level calls; it consumes the
// results exposed here, always in base-unit integer amounts and always with
// reserves in canonical asset order.
package ledger

import (
	"context"
	"errors"
	"time"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
)

var (
	// ErrPairNotFound reports a read against a pool that does not exist.
	ErrPairNotFound = errors.New("pair not found")
	// ErrSubmitRejected reports a transaction the user declined to sign.
	ErrSubmitRejected = errors.New("transaction rejected by user")
)

// PairID identifies a deployed pool contract.
type PairID string

// PairInfo is the existence check result for an asset pair.
type PairInfo struct {
	Exists bool
	PairID PairID
}

// Reserves is a snapshot of a pool's balances in canonical order.
type Reserves struct {
	Reserve0 fixedpoint.FixedPoint
	Reserve1 fixedpoint.FixedPoint
}

// Snapshot is a single consistent read of everything a quote needs. It is
// immutable for the duration of one computation pass and replaced wholesale
// on refresh, never patched in place.
type Snapshot struct {
	Pair        PairInfo
	Reserves    Reserves
	TotalSupply fixedpoint.FixedPoint
	TakenAt     time.Time
}

// TxStatus classifies a submitted transaction's outcome.
type TxStatus string

const (
	TxSuccess   TxStatus = "success"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

// TxReceipt is the result of a submission.
type TxReceipt struct {
	TxID   string
	Status TxStatus
}

// SwapOrder carries the engine-computed bounds for a swap call. For an
// exact-input swap AmountOutMin is the revert guard; for exact-output,
// AmountInMax. Both come from the amm package, never recomputed here.
type SwapOrder struct {
	PairID       PairID
	AssetIn      asset.ID
	AssetOut     asset.ID
	AmountIn     fixedpoint.FixedPoint
	AmountOut    fixedpoint.FixedPoint
	AmountOutMin fixedpoint.FixedPoint
	AmountInMax  fixedpoint.FixedPoint
	ExactInput   bool
	Deadline     time.Time
}

// AddLiquidityOrder carries a deposit with its slippage-bounded minimums.
type AddLiquidityOrder struct {
	PairID     PairID
	Amount0    fixedpoint.FixedPoint
	Amount1    fixedpoint.FixedPoint
	Amount0Min fixedpoint.FixedPoint
	Amount1Min fixedpoint.FixedPoint
	Deadline   time.Time
}

// RemoveLiquidityOrder burns shares against bounded redemption amounts.
type RemoveLiquidityOrder struct {
	PairID     PairID
	Liquidity  fixedpoint.FixedPoint
	Amount0Min fixedpoint.FixedPoint
	Amount1Min fixedpoint.FixedPoint
	Deadline   time.Time
}

// Ledger exposes pool state reads and transaction submission. Reads return
// point-in-time snapshots; the chain alone mutates reserves.
type Ledger interface {
	GetPair(ctx context.Context, a, b asset.ID) (PairInfo, error)
	GetReserves(ctx context.Context, pair PairID) (Reserves, error)
	GetTotalSupply(ctx context.Context, pair PairID) (fixedpoint.FixedPoint, error)
	BalanceOf(ctx context.Context, owner string, id asset.ID) (fixedpoint.FixedPoint, error)

	SubmitSwap(ctx context.Context, order SwapOrder) (TxReceipt, error)
	SubmitAddLiquidity(ctx context.Context, order AddLiquidityOrder) (TxReceipt, error)
	SubmitRemoveLiquidity(ctx context.Context, order RemoveLiquidityOrder) (TxReceipt, error)
}
