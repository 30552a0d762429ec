package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
)

// MemLedger is an in-memory Ledger used by tests and by the offline demo
// mode. It applies the same constant-product state transitions the contract
// would, so orchestrator tests exercise realistic reserve movement.
type MemLedger struct {
	mu       sync.RWMutex
	pools    map[PairID]*memPool
	byAssets map[string]PairID
	balances map[string]fixedpoint.FixedPoint
}

type memPool struct {
	asset0      asset.ID
	asset1      asset.ID
	reserve0    fixedpoint.FixedPoint
	reserve1    fixedpoint.FixedPoint
	totalSupply fixedpoint.FixedPoint
}

// NewMemLedger returns an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		pools:    make(map[PairID]*memPool),
		byAssets: make(map[string]PairID),
		balances: make(map[string]fixedpoint.FixedPoint),
	}
}

func pairKey(a, b asset.ID) string {
	if a.Big().Cmp(b.Big()) < 0 {
		return string(a) + ":" + string(b)
	}
	return string(b) + ":" + string(a)
}

// SeedPool registers a pool. The assets and their reserves may arrive in any
// order; they are stored canonically, the numerically smaller ID first, the
// same way the chain keys its pools.
func (m *MemLedger) SeedPool(a0, a1 asset.ID, reserve0, reserve1, supply fixedpoint.FixedPoint) PairID {
	if a0.Big().Cmp(a1.Big()) > 0 {
		a0, a1 = a1, a0
		reserve0, reserve1 = reserve1, reserve0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := PairID("0xpool" + uuid.NewString()[:8])
	m.pools[id] = &memPool{
		asset0:      a0,
		asset1:      a1,
		reserve0:    reserve0,
		reserve1:    reserve1,
		totalSupply: supply,
	}
	m.byAssets[pairKey(a0, a1)] = id
	return id
}

// SetBalance sets an account balance for one asset.
func (m *MemLedger) SetBalance(owner string, id asset.ID, amount fixedpoint.FixedPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[owner+":"+string(id)] = amount
}

func (m *MemLedger) GetPair(_ context.Context, a, b asset.ID) (PairInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byAssets[pairKey(a, b)]
	if !ok {
		return PairInfo{Exists: false}, nil
	}
	return PairInfo{Exists: true, PairID: id}, nil
}

func (m *MemLedger) GetReserves(_ context.Context, pair PairID) (Reserves, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pools[pair]
	if !ok {
		return Reserves{}, fmt.Errorf("%w: %s", ErrPairNotFound, pair)
	}
	return Reserves{Reserve0: p.reserve0, Reserve1: p.reserve1}, nil
}

func (m *MemLedger) GetTotalSupply(_ context.Context, pair PairID) (fixedpoint.FixedPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pools[pair]
	if !ok {
		return fixedpoint.Zero, fmt.Errorf("%w: %s", ErrPairNotFound, pair)
	}
	return p.totalSupply, nil
}

func (m *MemLedger) BalanceOf(_ context.Context, owner string, id asset.ID) (fixedpoint.FixedPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[owner+":"+string(id)], nil
}

// SubmitSwap moves reserves along the constant-product curve and enforces the
// order's revert guard the way the contract would.
func (m *MemLedger) SubmitSwap(_ context.Context, order SwapOrder) (TxReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[order.PairID]
	if !ok {
		return TxReceipt{}, fmt.Errorf("%w: %s", ErrPairNotFound, order.PairID)
	}

	fromIsAsset0 := order.AssetIn == p.asset0
	reserveIn, reserveOut := p.reserve0, p.reserve1
	if !fromIsAsset0 {
		reserveIn, reserveOut = p.reserve1, p.reserve0
	}

	feeMul := fixedpoint.New(997)
	feeDen := fixedpoint.New(1000)
	inWithFee := order.AmountIn.Mul(feeMul)
	out := inWithFee.Mul(reserveOut).Quo(reserveIn.Mul(feeDen).Add(inWithFee))
	if out.LessThan(order.AmountOutMin) {
		return TxReceipt{TxID: newTxID(), Status: TxFailed}, nil
	}

	if fromIsAsset0 {
		p.reserve0 = p.reserve0.Add(order.AmountIn)
		p.reserve1 = p.reserve1.Sub(out)
	} else {
		p.reserve1 = p.reserve1.Add(order.AmountIn)
		p.reserve0 = p.reserve0.Sub(out)
	}
	return TxReceipt{TxID: newTxID(), Status: TxSuccess}, nil
}

func (m *MemLedger) SubmitAddLiquidity(_ context.Context, order AddLiquidityOrder) (TxReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[order.PairID]
	if !ok {
		return TxReceipt{}, fmt.Errorf("%w: %s", ErrPairNotFound, order.PairID)
	}
	if !p.totalSupply.IsZero() {
		feeMul := fixedpoint.New(997)
		feeDen := fixedpoint.New(1000)
		l0 := order.Amount0.Mul(feeMul).Mul(p.totalSupply).Quo(p.reserve0.Mul(feeDen))
		l1 := order.Amount1.Mul(feeMul).Mul(p.totalSupply).Quo(p.reserve1.Mul(feeDen))
		p.totalSupply = p.totalSupply.Add(fixedpoint.Min(l0, l1))
	}
	p.reserve0 = p.reserve0.Add(order.Amount0)
	p.reserve1 = p.reserve1.Add(order.Amount1)
	return TxReceipt{TxID: newTxID(), Status: TxSuccess}, nil
}

func (m *MemLedger) SubmitRemoveLiquidity(_ context.Context, order RemoveLiquidityOrder) (TxReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[order.PairID]
	if !ok {
		return TxReceipt{}, fmt.Errorf("%w: %s", ErrPairNotFound, order.PairID)
	}
	if p.totalSupply.IsZero() {
		return TxReceipt{TxID: newTxID(), Status: TxFailed}, nil
	}
	scale := fixedpoint.New(10000)
	share := order.Liquidity.Mul(scale).Quo(p.totalSupply)
	amount0 := p.reserve0.Mul(share).Quo(scale)
	amount1 := p.reserve1.Mul(share).Quo(scale)
	if amount0.LessThan(order.Amount0Min) || amount1.LessThan(order.Amount1Min) {
		return TxReceipt{TxID: newTxID(), Status: TxFailed}, nil
	}
	p.reserve0 = p.reserve0.Sub(amount0)
	p.reserve1 = p.reserve1.Sub(amount1)
	p.totalSupply = p.totalSupply.Sub(order.Liquidity)
	return TxReceipt{TxID: newTxID(), Status: TxSuccess}, nil
}

func newTxID() string {
	return "0xtx" + uuid.NewString()
}

var _ Ledger = (*MemLedger)(nil)
