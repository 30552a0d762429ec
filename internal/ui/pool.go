package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/quoter"
	"swapdeck/internal/trade"
	"swapdeck/internal/ui/style"
	"swapdeck/internal/wallet"
)

// poolMode selects between the add and remove forms.
type poolMode int

const (
	modeAdd poolMode = iota
	modeRemove
)

// PoolScreen is the liquidity form: deposit with a ratio-pinned counterpart,
// or redeem a share of the pool.
type PoolScreen struct {
	quoter *quoter.Quoter
	wallet *wallet.Wallet
	trader *trade.Service
	assetA asset.Asset
	assetB asset.Asset

	mode        poolMode
	amountInput textinput.Model
	otherInput  textinput.Model
	focusOther  bool

	deposit    quoter.DepositQuote
	hasDeposit bool
	// firstDeposit keeps the counterpart field on screen once the pool is
	// known to be empty; a first deposit needs both amounts typed.
	firstDeposit bool
	redeem       quoter.RedeemQuote
	liquidity    fixedpoint.FixedPoint
	hasRedeem    bool

	status    string
	statusErr bool

	width  int
	height int
	keys   KeyMap
}

// NewPoolScreen builds the liquidity form over a fixed pair.
func NewPoolScreen(q *quoter.Quoter, w *wallet.Wallet, t *trade.Service, a, b asset.Asset) *PoolScreen {
	in := textinput.New()
	in.Placeholder = "0.0"
	in.CharLimit = 32
	in.Width = 24
	in.Focus()

	other := textinput.New()
	other.Placeholder = "0.0"
	other.CharLimit = 32
	other.Width = 24

	return &PoolScreen{
		quoter:      q,
		wallet:      w,
		trader:      t,
		assetA:      a,
		assetB:      b,
		mode:        modeAdd,
		amountInput: in,
		otherInput:  other,
		keys:        DefaultKeyMap(),
	}
}

// Init satisfies the Screen interface.
func (p *PoolScreen) Init() tea.Cmd { return nil }

// Update handles screen updates.
func (p *PoolScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Flip):
			p.toggleMode()

		case key.Matches(msg, p.keys.Tab):
			p.toggleField()

		case key.Matches(msg, p.keys.Enter):
			if cmd := p.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}

		default:
			var cmd tea.Cmd
			beforeA, beforeB := p.amountInput.Value(), p.otherInput.Value()
			if p.focusOther {
				p.otherInput, cmd = p.otherInput.Update(msg)
			} else {
				p.amountInput, cmd = p.amountInput.Update(msg)
			}
			cmds = append(cmds, cmd)
			if p.amountInput.Value() != beforeA || p.otherInput.Value() != beforeB {
				p.status = ""
				cmds = append(cmds, p.quoteCmd(p.amountInput.Value(), p.otherInput.Value()))
			}
		}

	case depositQuoteMsg:
		p.deposit = msg.quote
		p.hasDeposit = msg.quote.AmountA.Sign() > 0
		p.hasRedeem = false
		if msg.quote.FirstDeposit {
			p.firstDeposit = true
		} else if msg.quote.Minted.Sign() > 0 {
			p.firstDeposit = false
		}

	case redeemQuoteMsg:
		p.redeem = msg.quote
		p.liquidity = msg.liquidity
		p.hasRedeem = true
		p.hasDeposit = false

	case poolQuoteErrMsg:
		p.hasDeposit = false
		p.hasRedeem = false
		p.status = msg.err.Error()
		p.statusErr = true

	case TxResultMsg:
		if msg.Success {
			p.status = fmt.Sprintf("Confirmed: %s", msg.TxID)
			p.statusErr = false
		} else {
			p.status = fmt.Sprintf("Failed: %v", msg.Err)
			p.statusErr = true
		}
	}

	return p, tea.Batch(cmds...)
}

type depositQuoteMsg struct{ quote quoter.DepositQuote }

type redeemQuoteMsg struct {
	quote     quoter.RedeemQuote
	liquidity fixedpoint.FixedPoint
}

type poolQuoteErrMsg struct{ err error }

func (p *PoolScreen) toggleMode() {
	if p.mode == modeAdd {
		p.mode = modeRemove
	} else {
		p.mode = modeAdd
	}
	p.amountInput.SetValue("")
	p.otherInput.SetValue("")
	if p.focusOther {
		p.focusOther = false
		p.otherInput.Blur()
		p.amountInput.Focus()
	}
	p.hasDeposit = false
	p.firstDeposit = false
	p.hasRedeem = false
	p.status = ""
}

// toggleField moves focus between the two deposit fields. The counterpart
// field only exists while creating a pool.
func (p *PoolScreen) toggleField() {
	if p.mode != modeAdd || !p.firstDeposit {
		return
	}
	if p.focusOther {
		p.focusOther = false
		p.otherInput.Blur()
		p.amountInput.Focus()
	} else {
		p.focusOther = true
		p.amountInput.Blur()
		p.otherInput.Focus()
	}
}

// quoteCmd estimates the current form values off the UI goroutine. valueB is
// only consulted for a first deposit, where both amounts are user-typed.
func (p *PoolScreen) quoteCmd(valueA, valueB string) tea.Cmd {
	if valueA == "" {
		p.hasDeposit = false
		p.hasRedeem = false
		return nil
	}
	q := p.quoter
	a, b := p.assetA, p.assetB
	mode := p.mode

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if mode == modeAdd {
			dq, err := q.QuoteAddLiquidity(ctx, valueA, a, b)
			if err != nil {
				return poolQuoteErrMsg{err: err}
			}
			if dq.FirstDeposit && valueB != "" {
				baseB, err := fixedpoint.ParseUnits(valueB, b.Decimals)
				if err != nil {
					return poolQuoteErrMsg{err: err}
				}
				minted, err := q.EstimateFirstDeposit(valueA, valueB, a, b)
				if err != nil {
					return poolQuoteErrMsg{err: err}
				}
				dq.AmountB = baseB
				dq.OtherAmount = fixedpoint.FormatUnits(baseB, b.Decimals).String()
				dq.Minted = minted
			}
			return depositQuoteMsg{quote: dq}
		}

		rq, err := q.QuoteRemoveLiquidity(ctx, valueA, a, b)
		if err != nil {
			return poolQuoteErrMsg{err: err}
		}
		shares, err := fixedpoint.ParseUnits(valueA, asset.DefaultDecimals)
		if err != nil {
			return poolQuoteErrMsg{err: err}
		}
		return redeemQuoteMsg{quote: rq, liquidity: shares}
	}
}

// submit fires the add or remove once a quote is on screen.
func (p *PoolScreen) submit() tea.Cmd {
	if !p.wallet.Connected() {
		p.status = "Connect a wallet first"
		p.statusErr = true
		return nil
	}
	trader := p.trader
	a, b := p.assetA, p.assetB
	slippage := p.quoter.Slippage()

	if p.mode == modeAdd && p.hasDeposit {
		if p.deposit.FirstDeposit && p.deposit.AmountB.Sign() <= 0 {
			p.status = "Enter both deposit amounts"
			p.statusErr = true
			return nil
		}
		deposit := p.deposit
		p.status = "Submitting deposit..."
		p.statusErr = false
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			receipt, err := trader.AddLiquidity(ctx, a, b, deposit, slippage)
			if err != nil {
				return TxResultMsg{Err: err}
			}
			return TxResultMsg{TxID: receipt.TxID, Success: true}
		}
	}

	if p.mode == modeRemove && p.hasRedeem {
		redeem := p.redeem
		liquidity := p.liquidity
		p.status = "Submitting withdrawal..."
		p.statusErr = false
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			receipt, err := trader.RemoveLiquidity(ctx, a, b, liquidity, redeem, slippage)
			if err != nil {
				return TxResultMsg{Err: err}
			}
			return TxResultMsg{TxID: receipt.TxID, Success: true}
		}
	}
	return nil
}

// View renders the liquidity form.
func (p *PoolScreen) View() string {
	var b strings.Builder

	pair := fmt.Sprintf("%s / %s", p.assetA.Symbol, p.assetB.Symbol)
	if p.mode == modeAdd {
		b.WriteString(style.Title.Render("Add Liquidity " + pair))
		b.WriteString("\n")
		b.WriteString(style.Label.Render(fmt.Sprintf("Deposit (%s)", p.assetA.Symbol)))
		b.WriteString("\n")
		b.WriteString(p.amountInput.View())
		if p.firstDeposit {
			b.WriteString("\n\n")
			b.WriteString(style.Label.Render(fmt.Sprintf("Deposit (%s)", p.assetB.Symbol)))
			b.WriteString("\n")
			b.WriteString(p.otherInput.View())
		}
	} else {
		b.WriteString(style.Title.Render("Remove Liquidity " + pair))
		b.WriteString("\n")
		b.WriteString(style.Label.Render("Shares to burn"))
		b.WriteString("\n")
		b.WriteString(p.amountInput.View())
	}
	b.WriteString("\n\n")

	b.WriteString(p.renderDetails())

	if p.status != "" {
		b.WriteString("\n\n")
		if p.statusErr {
			b.WriteString(style.ErrorText.Render(p.status))
		} else {
			b.WriteString(style.SuccessText.Render(p.status))
		}
	}

	panel := style.Panel.Render(b.String())
	help := style.HelpBar.Render("tab field • ctrl+f add/remove • enter submit • ctrl+p swap screen • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, panel, help)
}

func (p *PoolScreen) renderDetails() string {
	switch {
	case p.hasDeposit && p.deposit.FirstDeposit:
		if p.deposit.Minted.Sign() <= 0 {
			return style.InfoText.Render(
				"New pool: both amounts set the opening price")
		}
		return strings.Join([]string{
			style.Value.Render(fmt.Sprintf(
				"Shares minted: %s",
				fixedpoint.FormatUnits(p.deposit.Minted, asset.DefaultDecimals))),
			style.WarnText.Render(
				"First deposit: 1000 base shares are locked permanently"),
		}, "\n")

	case p.hasDeposit:
		return strings.Join([]string{
			style.Label.Render(fmt.Sprintf(
				"Counterpart: %s %s", p.deposit.OtherAmount, p.assetB.Symbol)),
			style.Value.Render(fmt.Sprintf(
				"Shares minted: %s",
				fixedpoint.FormatUnits(p.deposit.Minted, asset.DefaultDecimals))),
		}, "\n")

	case p.hasRedeem:
		return strings.Join([]string{
			style.Value.Render(fmt.Sprintf("Receive: %s %s", p.redeem.DisplayA, p.assetA.Symbol)),
			style.Value.Render(fmt.Sprintf("Receive: %s %s", p.redeem.DisplayB, p.assetB.Symbol)),
		}, "\n")
	}
	return style.Label.Render("Enter an amount")
}

// SetSize sets the screen dimensions.
func (p *PoolScreen) SetSize(width, height int) {
	p.width = width
	p.height = height
}
