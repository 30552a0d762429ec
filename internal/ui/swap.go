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
	"swapdeck/internal/oracle"
	"swapdeck/internal/quoter"
	"swapdeck/internal/trade"
	"swapdeck/internal/ui/style"
	"swapdeck/internal/wallet"
)

// SwapScreen is the exchange form: two amount fields bound to the quoter,
// a derived confirm button and the quote breakdown.
type SwapScreen struct {
	quoter    *quoter.Quoter
	wallet    *wallet.Wallet
	trader    *trade.Service
	prices    *oracle.Client // nil when no price API is configured
	assets    []asset.Asset
	maxImpact fixedpoint.FixedPoint

	fromInput textinput.Model
	toInput   textinput.Model
	focused   quoter.Side

	fromIdx int
	toIdx   int

	update   quoter.Update
	hasQuote bool
	loading  bool
	usdValue string

	status    string
	statusErr bool

	width  int
	height int
	keys   KeyMap
}

// NewSwapScreen builds the swap form over the first two configured assets.
func NewSwapScreen(q *quoter.Quoter, w *wallet.Wallet, t *trade.Service, prices *oracle.Client, assets []asset.Asset, maxImpact fixedpoint.FixedPoint) *SwapScreen {
	from := textinput.New()
	from.Placeholder = "0.0"
	from.CharLimit = 32
	from.Width = 24
	from.Focus()

	to := textinput.New()
	to.Placeholder = "0.0"
	to.CharLimit = 32
	to.Width = 24

	s := &SwapScreen{
		quoter:    q,
		wallet:    w,
		trader:    t,
		prices:    prices,
		assets:    assets,
		maxImpact: maxImpact,
		fromInput: from,
		toInput:   to,
		focused:   quoter.SideFrom,
		fromIdx:   0,
		toIdx:     1,
		keys:      DefaultKeyMap(),
	}
	q.SetAssets(assets[s.fromIdx], assets[s.toIdx])
	return s
}

// Init starts listening on the quoter's update channel.
func (s *SwapScreen) Init() tea.Cmd {
	return ListenQuotes(s.quoter.Updates())
}

// Update handles screen updates.
func (s *SwapScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Tab):
			s.toggleFocus()

		case key.Matches(msg, s.keys.Flip):
			s.flipDirection()

		case key.Matches(msg, s.keys.Down):
			s.cycleToAsset(1)

		case key.Matches(msg, s.keys.Up):
			s.cycleToAsset(-1)

		case key.Matches(msg, s.keys.Refresh):
			s.loading = true
			s.quoter.Refresh()

		case key.Matches(msg, s.keys.Wallet):
			if !s.wallet.Connected() {
				s.wallet.Connect("demo-wallet")
				cmds = append(cmds, s.refreshBalances())
			}

		case key.Matches(msg, s.keys.Enter):
			if cmd := s.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}

		default:
			cmds = append(cmds, s.handleTyping(msg))
		}

	case QuoteUpdateMsg:
		s.applyQuote(msg.Update)
		cmds = append(cmds, ListenQuotes(s.quoter.Updates()))
		if cmd := s.fetchUSDValue(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case usdValueMsg:
		if msg.seq == s.update.Seq {
			s.usdValue = msg.value
		}

	case TxResultMsg:
		if msg.Success {
			s.status = fmt.Sprintf("Swap confirmed: %s", msg.TxID)
			s.statusErr = false
			s.loading = true
			s.quoter.Refresh()
			cmds = append(cmds, s.refreshBalances())
		} else {
			s.status = fmt.Sprintf("Swap failed: %v", msg.Err)
			s.statusErr = true
		}

	case BalancesMsg:
		// Balances already swapped into the wallet; the next View picks
		// them up.
	}

	return s, tea.Batch(cmds...)
}

// handleTyping forwards keystrokes to the focused input and re-quotes.
func (s *SwapScreen) handleTyping(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	before := s.focusedValue()
	if s.focused == quoter.SideFrom {
		s.fromInput, cmd = s.fromInput.Update(msg)
	} else {
		s.toInput, cmd = s.toInput.Update(msg)
	}
	after := s.focusedValue()
	if after != before {
		s.loading = after != ""
		s.status = ""
		s.quoter.SetAmount(s.focused, after)
		if after == "" {
			s.clearCounterpart()
			s.hasQuote = false
			s.loading = false
		}
	}
	return cmd
}

func (s *SwapScreen) focusedValue() string {
	if s.focused == quoter.SideFrom {
		return s.fromInput.Value()
	}
	return s.toInput.Value()
}

func (s *SwapScreen) clearCounterpart() {
	if s.focused == quoter.SideFrom {
		s.toInput.SetValue("")
	} else {
		s.fromInput.SetValue("")
	}
}

func (s *SwapScreen) toggleFocus() {
	if s.focused == quoter.SideFrom {
		s.focused = quoter.SideTo
		s.fromInput.Blur()
		s.toInput.Focus()
	} else {
		s.focused = quoter.SideFrom
		s.toInput.Blur()
		s.fromInput.Focus()
	}
}

// flipDirection swaps the sell and buy assets, keeping the typed amount on
// the side the user edited.
func (s *SwapScreen) flipDirection() {
	s.fromIdx, s.toIdx = s.toIdx, s.fromIdx
	s.quoter.SetAssets(s.assets[s.fromIdx], s.assets[s.toIdx])
	s.hasQuote = false
	value := s.focusedValue()
	if value != "" {
		s.loading = true
		s.quoter.SetAmount(s.focused, value)
	}
}

// cycleToAsset steps the buy-side asset through the configured list in the
// given direction, skipping the sell-side asset.
func (s *SwapScreen) cycleToAsset(step int) {
	if len(s.assets) < 3 {
		return
	}
	n := len(s.assets)
	next := (s.toIdx + step + n) % n
	if next == s.fromIdx {
		next = (next + step + n) % n
	}
	s.toIdx = next
	s.quoter.SetAssets(s.assets[s.fromIdx], s.assets[s.toIdx])
	s.hasQuote = false
	if v := s.focusedValue(); v != "" {
		s.loading = true
		s.quoter.SetAmount(s.focused, v)
	}
}

// applyQuote publishes the quoter result into the form. The quoter already
// dropped stale sequences, so whatever arrives here is current.
func (s *SwapScreen) applyQuote(u quoter.Update) {
	if u.Kind == quoter.KindPairState {
		// Pool state for a freshly selected pair; the form stays as typed.
		s.update = u
		s.hasQuote = false
		return
	}
	s.update = u
	s.loading = false
	s.hasQuote = u.Kind == quoter.KindSwap

	if u.Kind == quoter.KindNoLiquidity {
		s.clearCounterpart()
		return
	}
	if u.Side == quoter.SideFrom {
		s.toInput.SetValue(u.Quote.OtherAmount)
	} else {
		s.fromInput.SetValue(u.Quote.OtherAmount)
	}
}

// action derives the confirm button state from the current quote.
func (s *SwapScreen) action() quoter.Action {
	p := quoter.ActionParams{
		WalletConnected: s.wallet.Connected(),
		PairExists:      s.update.Snapshot.Pair.Exists,
		HasLiquidity:    s.update.Snapshot.HasLiquidity(),
		Loading:         s.loading,
		Balance:         s.wallet.Balance(s.assets[s.fromIdx].ID),
		MaxImpact:       s.maxImpact,
	}
	if s.hasQuote {
		p.AmountIn = s.update.Quote.AmountIn
		p.AmountOut = s.update.Quote.AmountOut
		p.PriceImpact = s.update.Quote.Impact.Percent
	}
	return quoter.ActionFor(p)
}

// submit fires the swap when the button is enabled.
func (s *SwapScreen) submit() tea.Cmd {
	if !s.action().Enabled || !s.hasQuote {
		return nil
	}
	from := s.assets[s.fromIdx]
	to := s.assets[s.toIdx]
	quote := s.update.Quote
	trader := s.trader

	s.status = "Submitting swap..."
	s.statusErr = false

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		receipt, err := trader.Swap(ctx, from, to, quote)
		if err != nil {
			return TxResultMsg{Err: err}
		}
		return TxResultMsg{TxID: receipt.TxID, Success: true}
	}
}

// usdValueMsg carries the fiat value of the pay side for one quote sequence.
type usdValueMsg struct {
	seq   uint64
	value string
}

// fetchUSDValue prices the pay amount in USD off the UI goroutine. The
// oracle caches per symbol, so repeated quotes rarely hit the network.
func (s *SwapScreen) fetchUSDValue() tea.Cmd {
	if s.prices == nil || !s.hasQuote {
		s.usdValue = ""
		return nil
	}
	prices := s.prices
	from := s.assets[s.fromIdx]
	amount := fixedpoint.FormatUnits(s.update.Quote.AmountIn, from.Decimals)
	seq := s.update.Seq

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		price, err := prices.USDPrice(ctx, from.Symbol)
		if err != nil {
			return usdValueMsg{seq: seq}
		}
		return usdValueMsg{seq: seq, value: amount.Mul(price).Truncate(2).String()}
	}
}

// refreshBalances re-reads wallet balances for every configured asset.
func (s *SwapScreen) refreshBalances() tea.Cmd {
	w := s.wallet
	assets := s.assets
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.Refresh(ctx, assets...); err != nil {
			return ErrorMsg{Err: err, Title: "balance refresh"}
		}
		return BalancesMsg{}
	}
}

// View renders the swap form.
func (s *SwapScreen) View() string {
	from := s.assets[s.fromIdx]
	to := s.assets[s.toIdx]

	var b strings.Builder

	b.WriteString(style.Label.Render(fmt.Sprintf("You pay (%s)", from.Symbol)))
	if s.wallet.Connected() {
		b.WriteString(style.Label.Render(fmt.Sprintf("   balance %s", s.wallet.Display(from))))
	}
	b.WriteString("\n")
	b.WriteString(s.fromInput.View())
	b.WriteString("\n\n")

	b.WriteString(style.Label.Render(fmt.Sprintf("You receive (%s)", to.Symbol)))
	b.WriteString("\n")
	b.WriteString(s.toInput.View())
	b.WriteString("\n\n")

	b.WriteString(s.renderDetails())
	b.WriteString("\n")
	b.WriteString(s.renderButton())

	if s.status != "" {
		b.WriteString("\n\n")
		if s.statusErr {
			b.WriteString(style.ErrorText.Render(s.status))
		} else {
			b.WriteString(style.SuccessText.Render(s.status))
		}
	}

	panel := style.Panel.Render(b.String())
	help := style.HelpBar.Render("tab switch field • ctrl+f flip • w wallet • ctrl+p pool • enter swap • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, panel, help)
}

// renderDetails shows the quote breakdown under the inputs.
func (s *SwapScreen) renderDetails() string {
	if !s.hasQuote {
		if s.loading {
			return style.Label.Render("Fetching quote...")
		}
		return ""
	}
	q := s.update.Quote
	from := s.assets[s.fromIdx]
	to := s.assets[s.toIdx]

	var lines []string
	if s.usdValue != "" {
		lines = append(lines, style.Label.Render(fmt.Sprintf("Value: ~$%s", s.usdValue)))
	}
	impact := q.Impact.Display()
	impactLine := fmt.Sprintf("Price impact: %s%%", impact)
	if q.Impact.Percent.GreaterThan(s.maxImpact) {
		lines = append(lines, style.ErrorText.Render(impactLine))
	} else if impact != "<0.01" && q.Impact.Percent.GreaterThan(fixedpoint.New(1)) {
		lines = append(lines, style.WarnText.Render(impactLine))
	} else {
		lines = append(lines, style.Label.Render(impactLine))
	}

	if q.ExactInput {
		lines = append(lines, style.Label.Render(fmt.Sprintf(
			"Minimum received: %s %s",
			fixedpoint.FormatUnits(q.MinimumReceived, to.Decimals), to.Symbol)))
	} else {
		lines = append(lines, style.Label.Render(fmt.Sprintf(
			"Maximum input: %s %s",
			fixedpoint.FormatUnits(q.MaximumInput, from.Decimals), from.Symbol)))
	}
	return strings.Join(lines, "\n")
}

func (s *SwapScreen) renderButton() string {
	a := s.action()
	if a.Enabled {
		return style.ButtonActive.Render(a.Label)
	}
	return style.ButtonDisabled.Render(a.Label)
}

// SetSize sets the screen dimensions.
func (s *SwapScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
