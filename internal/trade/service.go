// Package trade turns confirmed quotes into submitted transactions and fans
// the outcomes out to notifications and the position store.
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"swapdeck/internal/amm"
	"swapdeck/internal/asset"
	"swapdeck/internal/events"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
	"swapdeck/internal/quoter"
	"swapdeck/internal/storage"
	"swapdeck/internal/storage/models"
	"swapdeck/internal/wallet"
)

// Service submits swap and liquidity transactions. The amounts and revert
// guards come from the quoter verbatim; recomputing them here would let the
// displayed figures and the on-chain bounds drift apart.
type Service struct {
	ledger   ledger.Ledger
	bus      *events.Bus
	store    storage.Storage // optional
	wallet   *wallet.Wallet
	logger   *zap.Logger
	deadline time.Duration
}

// Config wires a Service. Store may be nil when persistence is disabled.
type Config struct {
	Ledger   ledger.Ledger
	Bus      *events.Bus
	Store    storage.Storage
	Wallet   *wallet.Wallet
	Logger   *zap.Logger
	Deadline time.Duration
}

// New builds a trade service.
func New(cfg Config) *Service {
	if cfg.Deadline <= 0 {
		cfg.Deadline = 15 * time.Minute
	}
	return &Service{
		ledger:   cfg.Ledger,
		bus:      cfg.Bus,
		store:    cfg.Store,
		wallet:   cfg.Wallet,
		logger:   cfg.Logger.Named("trade"),
		deadline: cfg.Deadline,
	}
}

// Swap submits the quoted trade.
func (s *Service) Swap(ctx context.Context, from, to asset.Asset, quote quoter.SwapQuote) (ledger.TxReceipt, error) {
	pair, err := s.ledger.GetPair(ctx, from.ID, to.ID)
	if err != nil {
		return ledger.TxReceipt{}, fmt.Errorf("resolve pair: %w", err)
	}
	if !pair.Exists {
		return ledger.TxReceipt{}, ledger.ErrPairNotFound
	}

	order := ledger.SwapOrder{
		PairID:       pair.PairID,
		AssetIn:      from.ID,
		AssetOut:     to.ID,
		AmountIn:     quote.AmountIn,
		AmountOut:    quote.AmountOut,
		AmountOutMin: quote.MinimumReceived,
		AmountInMax:  quote.MaximumInput,
		ExactInput:   quote.ExactInput,
		Deadline:     time.Now().Add(s.deadline),
	}

	receipt, err := s.ledger.SubmitSwap(ctx, order)
	s.publish("swap", from.Symbol+"/"+to.Symbol, receipt, err)
	if err != nil {
		if errors.Is(err, ledger.ErrSubmitRejected) {
			return ledger.TxReceipt{Status: ledger.TxCancelled}, err
		}
		return ledger.TxReceipt{}, err
	}

	s.record(ctx, &models.TransactionRecord{
		TxID:      receipt.TxID,
		Owner:     s.wallet.Address(),
		Operation: "swap",
		Status:    string(receipt.Status),
		Detail:    fmt.Sprintf("%s %s -> %s", quote.AmountIn, from.Symbol, to.Symbol),
	})
	return receipt, nil
}

// AddLiquidity submits a deposit with slippage-bounded minimums derived from
// the quoted amounts.
func (s *Service) AddLiquidity(ctx context.Context, a, b asset.Asset, deposit quoter.DepositQuote, slippage fixedpoint.FixedPoint) (ledger.TxReceipt, error) {
	pair, err := s.ledger.GetPair(ctx, a.ID, b.ID)
	if err != nil {
		return ledger.TxReceipt{}, fmt.Errorf("resolve pair: %w", err)
	}
	if !pair.Exists {
		return ledger.TxReceipt{}, ledger.ErrPairNotFound
	}

	asset0, _, err := asset.Sort(a, b)
	if err != nil {
		return ledger.TxReceipt{}, err
	}
	amount0, amount1 := deposit.AmountA, deposit.AmountB
	if asset0.ID != a.ID {
		amount0, amount1 = deposit.AmountB, deposit.AmountA
	}

	order := ledger.AddLiquidityOrder{
		PairID:     pair.PairID,
		Amount0:    amount0,
		Amount1:    amount1,
		Amount0Min: amm.MinimumReceived(amount0, slippage),
		Amount1Min: amm.MinimumReceived(amount1, slippage),
		Deadline:   time.Now().Add(s.deadline),
	}

	receipt, err := s.ledger.SubmitAddLiquidity(ctx, order)
	s.publish("add_liquidity", a.Symbol+"/"+b.Symbol, receipt, err)
	if err != nil {
		return ledger.TxReceipt{}, err
	}

	s.record(ctx, &models.TransactionRecord{
		TxID:      receipt.TxID,
		Owner:     s.wallet.Address(),
		Operation: "add_liquidity",
		Status:    string(receipt.Status),
	})
	s.savePosition(ctx, receipt, pair.PairID, a, b, deposit.AmountA, deposit.AmountB, deposit.Minted, "add")
	return receipt, nil
}

// RemoveLiquidity submits a share burn with bounded redemption amounts.
func (s *Service) RemoveLiquidity(ctx context.Context, a, b asset.Asset, liquidity fixedpoint.FixedPoint, redeem quoter.RedeemQuote, slippage fixedpoint.FixedPoint) (ledger.TxReceipt, error) {
	pair, err := s.ledger.GetPair(ctx, a.ID, b.ID)
	if err != nil {
		return ledger.TxReceipt{}, fmt.Errorf("resolve pair: %w", err)
	}
	if !pair.Exists {
		return ledger.TxReceipt{}, ledger.ErrPairNotFound
	}

	asset0, _, err := asset.Sort(a, b)
	if err != nil {
		return ledger.TxReceipt{}, err
	}
	amount0, amount1 := redeem.AmountA, redeem.AmountB
	if asset0.ID != a.ID {
		amount0, amount1 = redeem.AmountB, redeem.AmountA
	}

	order := ledger.RemoveLiquidityOrder{
		PairID:     pair.PairID,
		Liquidity:  liquidity,
		Amount0Min: amm.MinimumReceived(amount0, slippage),
		Amount1Min: amm.MinimumReceived(amount1, slippage),
		Deadline:   time.Now().Add(s.deadline),
	}

	receipt, err := s.ledger.SubmitRemoveLiquidity(ctx, order)
	s.publish("remove_liquidity", a.Symbol+"/"+b.Symbol, receipt, err)
	if err != nil {
		return ledger.TxReceipt{}, err
	}

	s.record(ctx, &models.TransactionRecord{
		TxID:      receipt.TxID,
		Owner:     s.wallet.Address(),
		Operation: "remove_liquidity",
		Status:    string(receipt.Status),
	})
	s.savePosition(ctx, receipt, pair.PairID, a, b, redeem.AmountA, redeem.AmountB, liquidity, "remove")
	return receipt, nil
}

func (s *Service) publish(operation, pairLabel string, receipt ledger.TxReceipt, err error) {
	if s.bus == nil {
		return
	}
	if busErr := s.bus.Publish(events.NewTxEvent(operation, pairLabel, receipt, err)); busErr != nil {
		s.logger.Warn("failed to publish tx event", zap.Error(busErr))
	}
}

func (s *Service) record(ctx context.Context, rec *models.TransactionRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTransaction(ctx, rec); err != nil {
		// Persistence is best effort; a failed insert must not fail a trade.
		s.logger.Warn("failed to save transaction record", zap.Error(err))
	}
}

func (s *Service) savePosition(ctx context.Context, receipt ledger.TxReceipt, pairID ledger.PairID, a, b asset.Asset, amountA, amountB, liquidity fixedpoint.FixedPoint, action string) {
	if s.store == nil || receipt.Status != ledger.TxSuccess {
		return
	}
	position := &models.Position{
		Owner:     s.wallet.Address(),
		PairID:    string(pairID),
		Asset0:    string(a.ID),
		Asset1:    string(b.ID),
		Symbol0:   a.Symbol,
		Symbol1:   b.Symbol,
		Amount0:   fixedpoint.FormatUnits(amountA, a.Decimals).String(),
		Amount1:   fixedpoint.FormatUnits(amountB, b.Decimals).String(),
		Liquidity: fixedpoint.FormatUnits(liquidity, asset.DefaultDecimals).String(),
		TxID:      receipt.TxID,
		Action:    action,
	}
	if err := s.store.SavePosition(ctx, position); err != nil {
		s.logger.Warn("failed to save position record", zap.Error(err))
	}
}

