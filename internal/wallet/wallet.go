// Package wallet tracks the connected account and a read-only snapshot of
// its asset balances. Signing and key custody live in the external wallet;
// this side only needs balances to derive form state.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
)

// Wallet is a concurrency-safe balance snapshot keyed by asset ID. Balances
// are replaced wholesale by Refresh, never patched, so a computation pass
// always reads one consistent snapshot.
type Wallet struct {
	ledger ledger.Ledger
	logger *zap.Logger

	mu        sync.RWMutex
	address   string
	connected bool
	balances  map[asset.ID]fixedpoint.FixedPoint
}

// New builds a Wallet over the given ledger.
func New(l ledger.Ledger, logger *zap.Logger) *Wallet {
	return &Wallet{
		ledger:   l,
		logger:   logger.Named("wallet"),
		balances: make(map[asset.ID]fixedpoint.FixedPoint),
	}
}

// Connect records the connected account address.
func (w *Wallet) Connect(address string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = address
	w.connected = true
	w.balances = make(map[asset.ID]fixedpoint.FixedPoint)
	w.logger.Info("wallet connected", zap.String("address", address))
}

// Disconnect clears the account and its balances.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = ""
	w.connected = false
	w.balances = make(map[asset.ID]fixedpoint.FixedPoint)
}

// Connected reports whether an account is attached.
func (w *Wallet) Connected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Address returns the connected account address, empty when disconnected.
func (w *Wallet) Address() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.address
}

// Refresh reads fresh balances for the given assets concurrently and swaps
// the snapshot in one step.
func (w *Wallet) Refresh(ctx context.Context, assets ...asset.Asset) error {
	w.mu.RLock()
	owner := w.address
	connected := w.connected
	w.mu.RUnlock()
	if !connected {
		return nil
	}

	fresh := make(map[asset.ID]fixedpoint.FixedPoint, len(assets))
	var freshMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range assets {
		g.Go(func() error {
			balance, err := w.ledger.BalanceOf(gctx, owner, a.ID)
			if err != nil {
				return fmt.Errorf("balance of %s: %w", a.Symbol, err)
			}
			freshMu.Lock()
			fresh[a.ID] = balance
			freshMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.mu.Lock()
	for id, balance := range fresh {
		w.balances[id] = balance
	}
	w.mu.Unlock()
	return nil
}

// Balance returns the last known base-unit balance for an asset; zero when
// unknown.
func (w *Wallet) Balance(id asset.ID) fixedpoint.FixedPoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balances[id]
}

// Display renders an asset's balance human-readably.
func (w *Wallet) Display(a asset.Asset) string {
	return fixedpoint.FormatUnits(w.Balance(a.ID), a.Decimals).String()
}
