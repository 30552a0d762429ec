package quoter

import (
	"swapdeck/internal/fixedpoint"
)

// Action is the derived state of the swap form's confirm button. It is a pure
// function of its inputs so every label transition is testable without a UI.
type Action struct {
	Label   string
	Enabled bool
}

// ActionParams is everything the button state depends on.
type ActionParams struct {
	WalletConnected bool
	PairExists      bool
	HasLiquidity    bool
	Loading         bool
	// AmountIn and AmountOut are the current quote in base units.
	AmountIn  fixedpoint.FixedPoint
	AmountOut fixedpoint.FixedPoint
	// Balance is the wallet's base-unit balance of the sell-side asset.
	Balance fixedpoint.FixedPoint
	// PriceImpact is the quote's numeric impact percent; MaxImpact is the
	// configured ceiling above which the trade is blocked.
	PriceImpact fixedpoint.FixedPoint
	MaxImpact   fixedpoint.FixedPoint
}

// Button labels, in the order they are checked.
const (
	LabelConnectWallet         = "Connect Wallet"
	LabelInsufficientLiquidity = "Insufficient liquidity"
	LabelEnterAmount           = "Enter an amount"
	LabelLoading               = "Fetching quote..."
	LabelInsufficientBalance   = "Insufficient asset balance"
	LabelSlippageTooHigh       = "Slippage is too high"
	LabelSwap                  = "Swap"
)

// ActionFor derives the button state from the current quote, balance and
// settings.
func ActionFor(p ActionParams) Action {
	switch {
	case !p.WalletConnected:
		return Action{Label: LabelConnectWallet, Enabled: true}
	case !p.PairExists || !p.HasLiquidity:
		return Action{Label: LabelInsufficientLiquidity}
	case p.AmountIn.Sign() <= 0 || p.AmountOut.Sign() <= 0:
		return Action{Label: LabelEnterAmount}
	case p.Loading:
		return Action{Label: LabelLoading}
	case p.Balance.LessThan(p.AmountIn):
		return Action{Label: LabelInsufficientBalance}
	case !p.MaxImpact.IsZero() && p.PriceImpact.GreaterThan(p.MaxImpact):
		return Action{Label: LabelSlippageTooHigh}
	default:
		return Action{Label: LabelSwap, Enabled: true}
	}
}
