package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
)

// RPCLedger talks to a node's pool-query endpoint over HTTP. Every read has
// an explicit per-call timeout so a hung request surfaces as an error instead
// of leaving the UI loading forever, and transient failures retry with
// exponential backoff. Submissions are never retried: replaying a signed
// transaction is the wallet's call, not ours.
type RPCLedger struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
	timeout    time.Duration
	maxTries   uint
	retryDelay time.Duration
}

// RPCOptions tunes the client; zero values fall back to defaults.
type RPCOptions struct {
	Timeout    time.Duration
	MaxTries   uint
	RetryDelay time.Duration
}

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxTries   = 3
	defaultRetryDelay = 250 * time.Millisecond
)

// NewRPCLedger builds a ledger client for the given endpoint.
func NewRPCLedger(endpoint string, logger *zap.Logger, opts RPCOptions) *RPCLedger {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = defaultMaxTries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return &RPCLedger{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger.Named("ledger"),
		timeout:    opts.Timeout,
		maxTries:   opts.MaxTries,
		retryDelay: opts.RetryDelay,
	}
}

type rpcRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// userRejectedCode is the node's code for a signature request the user
// declined in the wallet.
const userRejectedCode = 4001

func (l *RPCLedger) call(ctx context.Context, method string, params, result interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if envelope.Error != nil {
		if envelope.Error.Code == userRejectedCode {
			return fmt.Errorf("%s: %w", method, ErrSubmitRejected)
		}
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// callWithRetry wraps read-only calls in exponential backoff.
func (l *RPCLedger) callWithRetry(ctx context.Context, method string, params, result interface{}) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.retryDelay
	policy.MaxInterval = l.retryDelay * 10

	notify := func(err error, wait time.Duration) {
		l.logger.Debug("retrying ledger read",
			zap.String("method", method),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	operation := func() (struct{}, error) {
		return struct{}{}, l.call(ctx, method, params, result)
	}
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(l.maxTries),
		backoff.WithNotify(notify))
	return err
}

type pairParams struct {
	AssetA asset.ID `json:"asset_a"`
	AssetB asset.ID `json:"asset_b"`
}

type pairResult struct {
	Exists bool   `json:"exists"`
	PairID PairID `json:"pair_id"`
}

// GetPair resolves the pool contract for an asset pair.
func (l *RPCLedger) GetPair(ctx context.Context, a, b asset.ID) (PairInfo, error) {
	var res pairResult
	if err := l.callWithRetry(ctx, "pool_getPair", pairParams{AssetA: a, AssetB: b}, &res); err != nil {
		return PairInfo{}, err
	}
	return PairInfo{Exists: res.Exists, PairID: res.PairID}, nil
}

type reservesResult struct {
	Reserve0 fixedpoint.FixedPoint `json:"reserve0"`
	Reserve1 fixedpoint.FixedPoint `json:"reserve1"`
}

type pairIDParams struct {
	PairID PairID `json:"pair_id"`
}

// GetReserves reads a pool's balances in canonical order.
func (l *RPCLedger) GetReserves(ctx context.Context, pair PairID) (Reserves, error) {
	var res reservesResult
	if err := l.callWithRetry(ctx, "pool_getReserves", pairIDParams{PairID: pair}, &res); err != nil {
		return Reserves{}, err
	}
	return Reserves{Reserve0: res.Reserve0, Reserve1: res.Reserve1}, nil
}

type supplyResult struct {
	TotalSupply fixedpoint.FixedPoint `json:"total_supply"`
}

// GetTotalSupply reads the outstanding liquidity shares of a pool.
func (l *RPCLedger) GetTotalSupply(ctx context.Context, pair PairID) (fixedpoint.FixedPoint, error) {
	var res supplyResult
	if err := l.callWithRetry(ctx, "pool_getTotalSupply", pairIDParams{PairID: pair}, &res); err != nil {
		return fixedpoint.Zero, err
	}
	return res.TotalSupply, nil
}

type balanceParams struct {
	Owner string   `json:"owner"`
	Asset asset.ID `json:"asset"`
}

type balanceResult struct {
	Balance fixedpoint.FixedPoint `json:"balance"`
}

// BalanceOf reads an account's base-unit balance for one asset.
func (l *RPCLedger) BalanceOf(ctx context.Context, owner string, id asset.ID) (fixedpoint.FixedPoint, error) {
	var res balanceResult
	if err := l.callWithRetry(ctx, "account_getBalance", balanceParams{Owner: owner, Asset: id}, &res); err != nil {
		return fixedpoint.Zero, err
	}
	return res.Balance, nil
}

type receiptResult struct {
	TxID   string   `json:"tx_id"`
	Status TxStatus `json:"status"`
}

// SubmitSwap sends a swap carrying the engine-computed revert guards.
func (l *RPCLedger) SubmitSwap(ctx context.Context, order SwapOrder) (TxReceipt, error) {
	var res receiptResult
	if err := l.call(ctx, "pool_swap", order, &res); err != nil {
		return TxReceipt{}, err
	}
	l.logger.Info("swap submitted",
		zap.String("tx_id", res.TxID),
		zap.String("status", string(res.Status)))
	return TxReceipt{TxID: res.TxID, Status: res.Status}, nil
}

// SubmitAddLiquidity sends a deposit.
func (l *RPCLedger) SubmitAddLiquidity(ctx context.Context, order AddLiquidityOrder) (TxReceipt, error) {
	var res receiptResult
	if err := l.call(ctx, "pool_addLiquidity", order, &res); err != nil {
		return TxReceipt{}, err
	}
	l.logger.Info("add liquidity submitted", zap.String("tx_id", res.TxID))
	return TxReceipt{TxID: res.TxID, Status: res.Status}, nil
}

// SubmitRemoveLiquidity sends a share burn.
func (l *RPCLedger) SubmitRemoveLiquidity(ctx context.Context, order RemoveLiquidityOrder) (TxReceipt, error) {
	var res receiptResult
	if err := l.call(ctx, "pool_removeLiquidity", order, &res); err != nil {
		return TxReceipt{}, err
	}
	l.logger.Info("remove liquidity submitted", zap.String("tx_id", res.TxID))
	return TxReceipt{TxID: res.TxID, Status: res.Status}, nil
}

// MarshalJSON flattens orders for the wire with string amounts.
func (o SwapOrder) MarshalJSON() ([]byte, error) {
	type wire struct {
		PairID       PairID   `json:"pair_id"`
		AssetIn      asset.ID `json:"asset_in"`
		AssetOut     asset.ID `json:"asset_out"`
		AmountIn     string   `json:"amount_in"`
		AmountOut    string   `json:"amount_out"`
		AmountOutMin string   `json:"amount_out_min"`
		AmountInMax  string   `json:"amount_in_max"`
		ExactInput   bool     `json:"exact_input"`
		Deadline     int64    `json:"deadline"`
	}
	return json.Marshal(wire{
		PairID:       o.PairID,
		AssetIn:      o.AssetIn,
		AssetOut:     o.AssetOut,
		AmountIn:     o.AmountIn.String(),
		AmountOut:    o.AmountOut.String(),
		AmountOutMin: o.AmountOutMin.String(),
		AmountInMax:  o.AmountInMax.String(),
		ExactInput:   o.ExactInput,
		Deadline:     o.Deadline.Unix(),
	})
}
