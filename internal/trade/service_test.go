package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"swapdeck/internal/asset"
	"swapdeck/internal/events"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
	"swapdeck/internal/quoter"
	"swapdeck/internal/wallet"
)

var (
	tradeAsset0 = asset.Asset{
		ID:       asset.ID("0x0000000000000000000000000000000000000000000000000000000000000001"),
		Symbol:   "AAA",
		Decimals: 9,
	}
	tradeAsset1 = asset.Asset{
		ID:       asset.ID("0x00000000000000000000000000000000000000000000000000000000000000a5"),
		Symbol:   "BBB",
		Decimals: 9,
	}
)

func seedTradeLedger(t *testing.T) *ledger.MemLedger {
	t.Helper()
	led := ledger.NewMemLedger()
	led.SeedPool(tradeAsset0.ID, tradeAsset1.ID,
		fixedpoint.MustFromString("1000000"),
		fixedpoint.MustFromString("2000000"),
		fixedpoint.MustFromString("1400000"))
	return led
}

// txRecorder collects tx lifecycle events published by the service.
type txRecorder struct {
	mu     sync.Mutex
	events []events.TxEvent
}

func (r *txRecorder) Handle(_ context.Context, event events.Event) error {
	tx, ok := event.(events.TxEvent)
	if !ok {
		return nil
	}
	r.mu.Lock()
	r.events = append(r.events, tx)
	r.mu.Unlock()
	return nil
}

func (r *txRecorder) waitFor(t *testing.T, n int) []events.TxEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		got := len(r.events)
		r.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	require.GreaterOrEqual(t, len(r.events), n, "timed out waiting for tx events")
	out := make([]events.TxEvent, len(r.events))
	copy(out, r.events)
	return out
}

func newTestService(t *testing.T, led ledger.Ledger) (*Service, *txRecorder) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	bus := events.NewBus(logger, 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})

	rec := &txRecorder{}
	for _, et := range []events.EventType{events.TxConfirmed, events.TxFailed, events.TxCancelled, events.TxSubmitted} {
		bus.Subscribe(et, rec)
	}

	w := wallet.New(led, logger)
	w.Connect("demo-wallet")
	svc := New(Config{
		Ledger: led,
		Bus:    bus,
		Wallet: w,
		Logger: logger,
	})
	return svc, rec
}

func TestSwapCarriesQuotedBounds(t *testing.T) {
	led := seedTradeLedger(t)
	svc, rec := newTestService(t, led)

	quote := quoter.SwapQuote{
		ExactInput:      true,
		AmountIn:        fixedpoint.MustFromString("1000"),
		AmountOut:       fixedpoint.MustFromString("1992"),
		MinimumReceived: fixedpoint.MustFromString("1982"),
	}
	receipt, err := svc.Swap(context.Background(), tradeAsset0, tradeAsset1, quote)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxSuccess, receipt.Status)
	assert.NotEmpty(t, receipt.TxID)

	pair, err := led.GetPair(context.Background(), tradeAsset0.ID, tradeAsset1.ID)
	require.NoError(t, err)
	reserves, err := led.GetReserves(context.Background(), pair.PairID)
	require.NoError(t, err)
	assert.Equal(t, "1001000", reserves.Reserve0.String())
	assert.Equal(t, "1998008", reserves.Reserve1.String())

	got := rec.waitFor(t, 1)
	assert.Equal(t, events.TxConfirmed, got[0].Type())
	assert.Equal(t, "swap", got[0].Operation)
	assert.Equal(t, "AAA/BBB", got[0].PairLabel)
}

func TestSwapRevertGuardTriggersFailure(t *testing.T) {
	led := seedTradeLedger(t)
	svc, rec := newTestService(t, led)

	// MinimumReceived above what the pool can pay makes the submission revert.
	quote := quoter.SwapQuote{
		ExactInput:      true,
		AmountIn:        fixedpoint.MustFromString("1000"),
		AmountOut:       fixedpoint.MustFromString("1992"),
		MinimumReceived: fixedpoint.MustFromString("1993"),
	}
	receipt, err := svc.Swap(context.Background(), tradeAsset0, tradeAsset1, quote)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxFailed, receipt.Status)

	// Reserves stay untouched on a revert.
	pair, err := led.GetPair(context.Background(), tradeAsset0.ID, tradeAsset1.ID)
	require.NoError(t, err)
	reserves, err := led.GetReserves(context.Background(), pair.PairID)
	require.NoError(t, err)
	assert.Equal(t, "1000000", reserves.Reserve0.String())

	got := rec.waitFor(t, 1)
	assert.Equal(t, events.TxFailed, got[0].Type())
}

// rejectingLedger simulates a user declining the signature prompt.
type rejectingLedger struct {
	*ledger.MemLedger
}

func (r *rejectingLedger) SubmitSwap(_ context.Context, _ ledger.SwapOrder) (ledger.TxReceipt, error) {
	return ledger.TxReceipt{}, ledger.ErrSubmitRejected
}

func TestSwapRejectionClassifiedAsCancelled(t *testing.T) {
	led := &rejectingLedger{MemLedger: seedTradeLedger(t)}
	svc, _ := newTestService(t, led)

	quote := quoter.SwapQuote{
		ExactInput:      true,
		AmountIn:        fixedpoint.MustFromString("1000"),
		AmountOut:       fixedpoint.MustFromString("1992"),
		MinimumReceived: fixedpoint.MustFromString("1982"),
	}
	receipt, err := svc.Swap(context.Background(), tradeAsset0, tradeAsset1, quote)
	require.ErrorIs(t, err, ledger.ErrSubmitRejected)
	assert.Equal(t, ledger.TxCancelled, receipt.Status)
}

func TestSwapMissingPair(t *testing.T) {
	led := ledger.NewMemLedger()
	svc, _ := newTestService(t, led)

	_, err := svc.Swap(context.Background(), tradeAsset0, tradeAsset1, quoter.SwapQuote{})
	require.ErrorIs(t, err, ledger.ErrPairNotFound)
}

// capturingLedger records the orders it receives before delegating.
type capturingLedger struct {
	*ledger.MemLedger
	addOrder    ledger.AddLiquidityOrder
	removeOrder ledger.RemoveLiquidityOrder
}

func (c *capturingLedger) SubmitAddLiquidity(ctx context.Context, order ledger.AddLiquidityOrder) (ledger.TxReceipt, error) {
	c.addOrder = order
	return c.MemLedger.SubmitAddLiquidity(ctx, order)
}

func (c *capturingLedger) SubmitRemoveLiquidity(ctx context.Context, order ledger.RemoveLiquidityOrder) (ledger.TxReceipt, error) {
	c.removeOrder = order
	return c.MemLedger.SubmitRemoveLiquidity(ctx, order)
}

func TestAddLiquidityMapsUserOrderToCanonical(t *testing.T) {
	led := &capturingLedger{MemLedger: seedTradeLedger(t)}
	svc, rec := newTestService(t, led)

	// User enters the pair reversed: a=BBB, b=AAA. AmountA belongs to BBB and
	// must land in Amount1 of the canonical order.
	deposit := quoter.DepositQuote{
		AmountA: fixedpoint.MustFromString("200"),
		AmountB: fixedpoint.MustFromString("100"),
		Minted:  fixedpoint.MustFromString("139"),
	}
	slippage := fixedpoint.MustFromString("0.005")
	receipt, err := svc.AddLiquidity(context.Background(), tradeAsset1, tradeAsset0, deposit, slippage)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxSuccess, receipt.Status)

	assert.Equal(t, "100", led.addOrder.Amount0.String())
	assert.Equal(t, "200", led.addOrder.Amount1.String())
	// floor(100 * 0.995) and floor(200 * 0.995)
	assert.Equal(t, "99", led.addOrder.Amount0Min.String())
	assert.Equal(t, "199", led.addOrder.Amount1Min.String())
	assert.False(t, led.addOrder.Deadline.IsZero())

	got := rec.waitFor(t, 1)
	assert.Equal(t, events.TxConfirmed, got[0].Type())
	assert.Equal(t, "add_liquidity", got[0].Operation)
}

func TestRemoveLiquidityCarriesBounds(t *testing.T) {
	led := &capturingLedger{MemLedger: seedTradeLedger(t)}
	svc, _ := newTestService(t, led)

	redeem := quoter.RedeemQuote{
		AmountA: fixedpoint.MustFromString("100000"),
		AmountB: fixedpoint.MustFromString("200000"),
	}
	liquidity := fixedpoint.MustFromString("140000")
	slippage := fixedpoint.MustFromString("0.01")
	receipt, err := svc.RemoveLiquidity(context.Background(), tradeAsset0, tradeAsset1, liquidity, redeem, slippage)
	require.NoError(t, err)
	assert.Equal(t, ledger.TxSuccess, receipt.Status)

	assert.Equal(t, "140000", led.removeOrder.Liquidity.String())
	assert.Equal(t, "99000", led.removeOrder.Amount0Min.String())
	assert.Equal(t, "198000", led.removeOrder.Amount1Min.String())
}

func TestAddLiquidityIdenticalAssets(t *testing.T) {
	led := seedTradeLedger(t)
	led.SeedPool(tradeAsset0.ID, tradeAsset0.ID, fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero)
	svc, _ := newTestService(t, led)

	_, err := svc.AddLiquidity(context.Background(), tradeAsset0, tradeAsset0, quoter.DepositQuote{}, fixedpoint.Zero)
	require.Error(t, err)
}

func TestDefaultDeadlineApplied(t *testing.T) {
	led := &capturingLedger{MemLedger: seedTradeLedger(t)}
	svc, _ := newTestService(t, led)

	before := time.Now()
	_, err := svc.AddLiquidity(context.Background(), tradeAsset0, tradeAsset1, quoter.DepositQuote{
		AmountA: fixedpoint.MustFromString("100"),
		AmountB: fixedpoint.MustFromString("200"),
	}, fixedpoint.Zero)
	require.NoError(t, err)

	// New() falls back to a 15 minute deadline when none is configured.
	assert.WithinDuration(t, before.Add(15*time.Minute), led.addOrder.Deadline, 5*time.Second)
}
