package quoter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swapdeck/internal/fixedpoint"
)

// readyParams returns inputs that pass every check.
func readyParams() ActionParams {
	return ActionParams{
		WalletConnected: true,
		PairExists:      true,
		HasLiquidity:    true,
		AmountIn:        fixedpoint.New(1000),
		AmountOut:       fixedpoint.New(1992),
		Balance:         fixedpoint.New(5000),
		PriceImpact:     fixedpoint.MustFromString("0.3"),
		MaxImpact:       fixedpoint.New(15),
	}
}

func TestActionForCheckOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActionParams)
		label   string
		enabled bool
	}{
		{"all checks pass", func(p *ActionParams) {}, LabelSwap, true},
		{"wallet disconnected", func(p *ActionParams) { p.WalletConnected = false }, LabelConnectWallet, true},
		{"pair missing", func(p *ActionParams) { p.PairExists = false }, LabelInsufficientLiquidity, false},
		{"pool empty", func(p *ActionParams) { p.HasLiquidity = false }, LabelInsufficientLiquidity, false},
		{"no amount", func(p *ActionParams) { p.AmountIn = fixedpoint.Zero }, LabelEnterAmount, false},
		{"zero output", func(p *ActionParams) { p.AmountOut = fixedpoint.Zero }, LabelEnterAmount, false},
		{"loading", func(p *ActionParams) { p.Loading = true }, LabelLoading, false},
		{"balance short", func(p *ActionParams) { p.Balance = fixedpoint.New(999) }, LabelInsufficientBalance, false},
		{"impact above ceiling", func(p *ActionParams) { p.PriceImpact = fixedpoint.New(16) }, LabelSlippageTooHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := readyParams()
			tt.mutate(&p)
			a := ActionFor(p)
			assert.Equal(t, tt.label, a.Label)
			assert.Equal(t, tt.enabled, a.Enabled)
		})
	}
}

func TestActionForPrecedence(t *testing.T) {
	// Wallet connection outranks everything else.
	p := readyParams()
	p.WalletConnected = false
	p.PairExists = false
	p.Balance = fixedpoint.Zero
	assert.Equal(t, LabelConnectWallet, ActionFor(p).Label)

	// Liquidity outranks amount entry.
	p = readyParams()
	p.HasLiquidity = false
	p.AmountIn = fixedpoint.Zero
	assert.Equal(t, LabelInsufficientLiquidity, ActionFor(p).Label)

	// Loading outranks the balance check.
	p = readyParams()
	p.Loading = true
	p.Balance = fixedpoint.Zero
	assert.Equal(t, LabelLoading, ActionFor(p).Label)
}

func TestActionForExactBalanceIsEnough(t *testing.T) {
	p := readyParams()
	p.Balance = p.AmountIn
	a := ActionFor(p)
	assert.Equal(t, LabelSwap, a.Label)
	assert.True(t, a.Enabled)
}

func TestActionForZeroCeilingDisablesImpactCheck(t *testing.T) {
	p := readyParams()
	p.MaxImpact = fixedpoint.Zero
	p.PriceImpact = fixedpoint.New(90)
	assert.Equal(t, LabelSwap, ActionFor(p).Label)
}
