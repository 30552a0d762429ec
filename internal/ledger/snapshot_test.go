package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapdeck/internal/fixedpoint"
)

// failingLedger wraps a MemLedger and fails selected reads.
type failingLedger struct {
	*MemLedger
	failReserves bool
}

var errRPC = errors.New("rpc unavailable")

func (f *failingLedger) GetReserves(ctx context.Context, pair PairID) (Reserves, error) {
	if f.failReserves {
		return Reserves{}, errRPC
	}
	return f.MemLedger.GetReserves(ctx, pair)
}

func TestTakeSnapshot(t *testing.T) {
	m, _ := seedLedger(t)

	snap, err := TakeSnapshot(context.Background(), m, testAsset0, testAsset1)
	require.NoError(t, err)

	assert.True(t, snap.Pair.Exists)
	assert.Equal(t, "1000000", snap.Reserves.Reserve0.String())
	assert.Equal(t, "2000000", snap.Reserves.Reserve1.String())
	assert.Equal(t, "1400000", snap.TotalSupply.String())
	assert.False(t, snap.TakenAt.IsZero())
	assert.True(t, snap.HasLiquidity())
}

func TestTakeSnapshotMissingPairIsNotAnError(t *testing.T) {
	m := NewMemLedger()

	snap, err := TakeSnapshot(context.Background(), m, testAsset0, testAsset1)
	require.NoError(t, err)

	assert.False(t, snap.Pair.Exists)
	assert.False(t, snap.HasLiquidity())
	assert.True(t, snap.Reserves.Reserve0.IsZero())
	assert.True(t, snap.TotalSupply.IsZero())
}

func TestTakeSnapshotPropagatesReadErrors(t *testing.T) {
	m, _ := seedLedger(t)
	f := &failingLedger{MemLedger: m, failReserves: true}

	_, err := TakeSnapshot(context.Background(), f, testAsset0, testAsset1)
	assert.ErrorIs(t, err, errRPC)
}

func TestHasLiquidityRequiresBothReserves(t *testing.T) {
	snap := Snapshot{
		Pair: PairInfo{Exists: true},
		Reserves: Reserves{
			Reserve0: fixedpoint.New(1000),
			Reserve1: fixedpoint.Zero,
		},
	}
	assert.False(t, snap.HasLiquidity())

	snap.Reserves.Reserve1 = fixedpoint.New(1)
	assert.True(t, snap.HasLiquidity())
}

func TestReservesInOut(t *testing.T) {
	r := Reserves{Reserve0: fixedpoint.New(10), Reserve1: fixedpoint.New(20)}

	in, out := r.InOut(true)
	assert.Equal(t, "10", in.String())
	assert.Equal(t, "20", out.String())

	in, out = r.InOut(false)
	assert.Equal(t, "20", in.String())
	assert.Equal(t, "10", out.String())
}
