// Package quoter wires live pool state and user keystrokes into the pure amm
// engines and publishes UI-ready results. It owns the debounce window, the
// request sequencing that keeps stale responses from overwriting newer ones,
// and the canonical-order remapping that every computation must re-derive.
package quoter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"swapdeck/internal/amm"
	"swapdeck/internal/asset"
	"swapdeck/internal/events"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
)

// Side names the two fields of the swap form.
type Side int

const (
	// SideFrom is the sell side; editing it quotes an exact-input swap.
	SideFrom Side = iota
	// SideTo is the buy side; editing it quotes an exact-output swap.
	SideTo
)

// Kind tags what an Update carries.
type Kind int

const (
	// KindSwap carries a swap quote.
	KindSwap Kind = iota
	// KindNoLiquidity signals the pair is missing or empty; the UI should
	// show a no-liquidity state, not a zero quote.
	KindNoLiquidity
	// KindPairState carries a fresh snapshot for a newly selected pair with
	// no quote attached, so the UI knows the pool state before any input.
	KindPairState
)

// SwapQuote is the ephemeral result of one quote computation. It is
// recomputed on every debounced edit or snapshot refresh and discarded once
// superseded.
type SwapQuote struct {
	ExactInput bool
	// AmountIn and AmountOut are base units.
	AmountIn  fixedpoint.FixedPoint
	AmountOut fixedpoint.FixedPoint
	// OtherAmount is the derived side, human readable.
	OtherAmount string
	Impact      amm.Impact
	// MinimumReceived / MaximumInput are the revert guards a submission
	// will carry; they are computed here and nowhere else.
	MinimumReceived fixedpoint.FixedPoint
	MaximumInput    fixedpoint.FixedPoint
}

// Update is what the quoter publishes to the UI layer.
type Update struct {
	Seq      uint64
	Side     Side
	Kind     Kind
	Quote    SwapQuote
	Snapshot ledger.Snapshot
}

// Options tunes the quoter; zero values fall back to defaults.
type Options struct {
	// Debounce is the quiet window after a keystroke before computing.
	Debounce time.Duration
	// Slippage is the tolerance fraction applied to quoted amounts.
	Slippage fixedpoint.FixedPoint
	// FetchTimeout bounds each snapshot read.
	FetchTimeout time.Duration
	// Buffer sizes the update channel.
	Buffer int
	// Bus, when set, receives a ReservesEvent for every fresh snapshot.
	Bus *events.Bus
}

const (
	defaultDebounce     = 400 * time.Millisecond
	defaultFetchTimeout = 10 * time.Second
	defaultBuffer       = 16
)

var defaultSlippage = fixedpoint.MustFromString("0.005")

// Quoter orchestrates quote computation for one swap form. All dependencies
// are injected; there is no ambient state, so it is unit-testable without a
// UI attached.
type Quoter struct {
	ledger ledger.Ledger
	logger *zap.Logger
	opts   Options

	mu        sync.Mutex
	fromAsset asset.Asset
	toAsset   asset.Asset
	pending   pendingInput
	timer     *time.Timer

	// seq invalidates in-flight work: a computation holds the value it was
	// started with and its result is dropped if a newer edit bumped it.
	seq atomic.Uint64

	updates chan Update
	wg      sync.WaitGroup
}

type pendingInput struct {
	side  Side
	value string
}

// New builds a Quoter around the given ledger.
func New(l ledger.Ledger, logger *zap.Logger, opts Options) *Quoter {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Slippage.IsZero() {
		opts.Slippage = defaultSlippage
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	return &Quoter{
		ledger:  l,
		logger:  logger.Named("quoter"),
		opts:    opts,
		updates: make(chan Update, opts.Buffer),
	}
}

// Updates is the stream of published results.
func (q *Quoter) Updates() <-chan Update { return q.updates }

// SetAssets selects the pair. The user-facing from/to order is independent of
// canonical order; the canonical sort happens inside each computation.
// Any in-flight work is invalidated.
func (q *Quoter) SetAssets(from, to asset.Asset) {
	q.mu.Lock()
	q.fromAsset = from
	q.toAsset = to
	if q.timer != nil {
		q.timer.Stop()
	}
	q.mu.Unlock()
	seq := q.seq.Add(1)

	// Fetch the pool state for the fresh selection right away so the UI can
	// tell "no input yet" apart from "no liquidity" before the first edit.
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.publishPairState(seq, from, to)
	}()
}

// Assets returns the current user-order selection.
func (q *Quoter) Assets() (from, to asset.Asset) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fromAsset, q.toAsset
}

// Slippage returns the configured tolerance fraction.
func (q *Quoter) Slippage() fixedpoint.FixedPoint { return q.opts.Slippage }

// SetAmount registers a keystroke on one side of the form. The raw value is
// the caller's to echo immediately; the derived side should display a loading
// placeholder until the corresponding Update arrives. The computation itself
// waits out the debounce window and is dropped if another edit lands first.
func (q *Quoter) SetAmount(side Side, value string) {
	seq := q.seq.Add(1)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = pendingInput{side: side, value: value}
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.opts.Debounce, func() {
		q.mu.Lock()
		in := q.pending
		from, to := q.fromAsset, q.toAsset
		q.mu.Unlock()

		if q.seq.Load() != seq {
			return // superseded while waiting
		}
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.compute(seq, in.side, in.value, from, to)
		}()
	})
}

// Refresh recomputes the last input against a fresh snapshot, e.g. after a
// state-changing transaction confirmed.
func (q *Quoter) Refresh() {
	q.mu.Lock()
	in := q.pending
	from, to := q.fromAsset, q.toAsset
	q.mu.Unlock()
	if in.value == "" {
		return
	}
	seq := q.seq.Add(1)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.compute(seq, in.side, in.value, from, to)
	}()
}

// Close waits out in-flight computations and closes the update stream.
func (q *Quoter) Close() {
	q.seq.Add(1)
	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.mu.Unlock()
	q.wg.Wait()
	close(q.updates)
}

func (q *Quoter) compute(seq uint64, side Side, value string, from, to asset.Asset) {
	ctx, cancel := context.WithTimeout(context.Background(), q.opts.FetchTimeout)
	defer cancel()

	update, ok := q.buildUpdate(ctx, seq, side, value, from, to)
	if !ok {
		return
	}
	// A newer edit may have landed while we were fetching; its result wins
	// by arrival order only if we drop ours here.
	if q.seq.Load() != seq {
		q.logger.Debug("discarding stale quote", zap.Uint64("seq", seq))
		return
	}
	select {
	case q.updates <- update:
	default:
		q.logger.Warn("update channel full, dropping quote", zap.Uint64("seq", seq))
	}
}

func (q *Quoter) publishPairState(seq uint64, from, to asset.Asset) {
	ctx, cancel := context.WithTimeout(context.Background(), q.opts.FetchTimeout)
	defer cancel()

	snap, err := ledger.TakeSnapshot(ctx, q.ledger, from.ID, to.ID)
	if err != nil {
		q.logger.Warn("snapshot read failed", zap.Error(err))
		return
	}
	q.publishSnapshot(snap)
	if q.seq.Load() != seq {
		return // an edit arrived before the fetch finished; its quote wins
	}
	select {
	case q.updates <- Update{Seq: seq, Kind: KindPairState, Snapshot: snap}:
	default:
		q.logger.Warn("update channel full, dropping pair state", zap.Uint64("seq", seq))
	}
}

// publishSnapshot mirrors fresh pool reads onto the event bus.
func (q *Quoter) publishSnapshot(snap ledger.Snapshot) {
	if q.opts.Bus == nil {
		return
	}
	if err := q.opts.Bus.Publish(events.NewReservesEvent(snap)); err != nil {
		q.logger.Debug("reserves event dropped", zap.Error(err))
	}
}

func (q *Quoter) buildUpdate(ctx context.Context, seq uint64, side Side, value string, from, to asset.Asset) (Update, bool) {
	amount, err := fixedpoint.ParseUnits(value, sideDecimals(side, from, to))
	if err != nil || amount.Sign() <= 0 {
		// Malformed or cleared input: nothing to quote.
		return Update{}, false
	}

	snap, err := ledger.TakeSnapshot(ctx, q.ledger, from.ID, to.ID)
	if err != nil {
		// Transient read failure degrades to a no-liquidity state; it must
		// never reach the render path as a failure.
		q.logger.Warn("snapshot read failed", zap.Error(err))
		return Update{Seq: seq, Side: side, Kind: KindNoLiquidity}, true
	}
	q.publishSnapshot(snap)
	if !snap.HasLiquidity() {
		return Update{Seq: seq, Side: side, Kind: KindNoLiquidity, Snapshot: snap}, true
	}

	asset0, _, err := asset.Sort(from, to)
	if err != nil {
		// Identical assets selected is a caller bug; log loudly and bail.
		q.logger.Error("invalid pair", zap.Error(err))
		return Update{}, false
	}
	fromIsAsset0 := asset0.ID == from.ID
	reserveIn, reserveOut := snap.Reserves.InOut(fromIsAsset0)

	quote := SwapQuote{ExactInput: side == SideFrom}
	if quote.ExactInput {
		quote.AmountIn = amount
		quote.AmountOut = amm.AmountOut(amount, reserveIn, reserveOut)
		quote.OtherAmount = fixedpoint.FormatUnits(quote.AmountOut, to.Decimals).String()
		quote.MinimumReceived = amm.MinimumReceived(quote.AmountOut, q.opts.Slippage)
	} else {
		quote.AmountOut = amount
		quote.AmountIn = amm.AmountIn(amount, reserveIn, reserveOut)
		quote.OtherAmount = fixedpoint.FormatUnits(quote.AmountIn, from.Decimals).String()
		quote.MaximumInput = amm.MaximumInput(quote.AmountIn, q.opts.Slippage)
		quote.MinimumReceived = quote.AmountOut
	}
	quote.Impact = amm.PriceImpact(fromIsAsset0, quote.AmountIn,
		snap.Reserves.Reserve0, snap.Reserves.Reserve1, from.Decimals, to.Decimals)

	return Update{Seq: seq, Side: side, Kind: KindSwap, Quote: quote, Snapshot: snap}, true
}

func sideDecimals(side Side, from, to asset.Asset) uint8 {
	if side == SideFrom {
		return from.Decimals
	}
	return to.Decimals
}
