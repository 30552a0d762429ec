package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
)

// TakeSnapshot resolves the pair and reads reserves and total supply in one
// pass. A missing pair is not an error: the snapshot comes back with zero
// reserves and Exists=false so callers can surface a "no liquidity" state.
// The two reads behind an existing pair run concurrently.
func TakeSnapshot(ctx context.Context, l Ledger, a, b asset.ID) (Snapshot, error) {
	pair, err := l.GetPair(ctx, a, b)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get pair: %w", err)
	}
	snap := Snapshot{Pair: pair, TakenAt: time.Now()}
	if !pair.Exists {
		return snap, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reserves, err := l.GetReserves(gctx, pair.PairID)
		if err != nil {
			return fmt.Errorf("get reserves: %w", err)
		}
		snap.Reserves = reserves
		return nil
	})
	g.Go(func() error {
		supply, err := l.GetTotalSupply(gctx, pair.PairID)
		if err != nil {
			return fmt.Errorf("get total supply: %w", err)
		}
		snap.TotalSupply = supply
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// HasLiquidity reports whether the snapshot can feed the quote engines.
func (s Snapshot) HasLiquidity() bool {
	return s.Pair.Exists && !s.Reserves.Reserve0.IsZero() && !s.Reserves.Reserve1.IsZero()
}

// InOut remaps canonical reserves to the in/out sides of a trade whose input
// occupies the given canonical slot.
func (r Reserves) InOut(fromIsAsset0 bool) (reserveIn, reserveOut fixedpoint.FixedPoint) {
	if fromIsAsset0 {
		return r.Reserve0, r.Reserve1
	}
	return r.Reserve1, r.Reserve0
}
