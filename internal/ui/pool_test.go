package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"swapdeck/internal/ledger"
	"swapdeck/internal/quoter"
	"swapdeck/internal/wallet"
)

// newEmptyPoolScreen builds the liquidity form over a ledger with no pools,
// so every deposit quote takes the pool-creation path.
func newEmptyPoolScreen(t *testing.T) *PoolScreen {
	t.Helper()
	m := ledger.NewMemLedger()
	logger := zaptest.NewLogger(t)
	q := quoter.New(m, logger, quoter.Options{})
	t.Cleanup(q.Close)
	w := wallet.New(m, logger)
	w.Connect("demo-wallet")
	return NewPoolScreen(q, w, nil, uiAssetAAA, uiAssetBBB)
}

func TestPoolScreenFirstDepositNeedsBothAmounts(t *testing.T) {
	p := newEmptyPoolScreen(t)

	// The first amount over an empty pool flags a pool creation and reveals
	// the counterpart field.
	cmd := p.quoteCmd("1", "")
	require.NotNil(t, cmd)
	scr, _ := p.Update(cmd())
	p = scr.(*PoolScreen)

	require.True(t, p.deposit.FirstDeposit)
	view := p.View()
	assert.Contains(t, view, "Deposit (AAA)")
	assert.Contains(t, view, "Deposit (BBB)")

	// Submitting with only one amount typed is refused.
	assert.Nil(t, p.submit())
	assert.Equal(t, "Enter both deposit amounts", p.status)
	assert.True(t, p.statusErr)
}

func TestPoolScreenFirstDepositEstimatesMint(t *testing.T) {
	p := newEmptyPoolScreen(t)

	cmd := p.quoteCmd("1", "")
	require.NotNil(t, cmd)
	scr, _ := p.Update(cmd())
	p = scr.(*PoolScreen)

	// Both amounts typed: floor(sqrt(1e9 * 4e9)) - 1000 = 1999999000 shares.
	cmd = p.quoteCmd("1", "4")
	require.NotNil(t, cmd)
	scr, _ = p.Update(cmd())
	p = scr.(*PoolScreen)

	require.True(t, p.hasDeposit)
	assert.Equal(t, "1999999000", p.deposit.Minted.String())
	assert.Contains(t, p.View(), "1.999999")
}
