// Package ui is the terminal front end: a swap form and a liquidity form
// over the quote engine, rendered with bubbletea.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"swapdeck/internal/asset"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/oracle"
	"swapdeck/internal/quoter"
	"swapdeck/internal/trade"
	"swapdeck/internal/ui/style"
	"swapdeck/internal/wallet"
)

// Screen is one routed view of the application.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// App is the root bubbletea model. It owns the screen stack and global keys;
// everything else is delegated to the active screen.
type App struct {
	logger *zap.Logger
	wallet *wallet.Wallet
	keys   KeyMap

	swap   Screen
	pool   Screen
	active Screen

	width  int
	height int
}

// Config wires the application dependencies into the UI.
type Config struct {
	Quoter    *quoter.Quoter
	Wallet    *wallet.Wallet
	Trader    *trade.Service
	Prices    *oracle.Client // optional USD reference prices
	Assets    []asset.Asset
	MaxImpact fixedpoint.FixedPoint
	Logger    *zap.Logger
}

// NewApp builds the root model. The asset list must have at least two
// entries; config validation guarantees that before we get here.
func NewApp(cfg Config) *App {
	swap := NewSwapScreen(cfg.Quoter, cfg.Wallet, cfg.Trader, cfg.Prices, cfg.Assets, cfg.MaxImpact)
	pool := NewPoolScreen(cfg.Quoter, cfg.Wallet, cfg.Trader, cfg.Assets[0], cfg.Assets[1])

	return &App{
		logger: cfg.Logger.Named("ui"),
		wallet: cfg.Wallet,
		keys:   DefaultKeyMap(),
		swap:   swap,
		pool:   pool,
		active: swap,
	}
}

// Init starts the active screen.
func (a *App) Init() tea.Cmd {
	return a.active.Init()
}

// Update routes messages to the active screen after global key handling.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.swap.SetSize(msg.Width, msg.Height)
		a.pool.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, a.keys.Screen):
			return a, a.toggleScreen()
		}

	case ErrorMsg:
		a.logger.Warn("ui error", zap.String("title", msg.Title), zap.Error(msg.Err))
	}

	screen, cmd := a.active.Update(msg)
	if a.active == a.swap {
		a.swap = screen
	} else {
		a.pool = screen
	}
	a.active = screen
	return a, cmd
}

func (a *App) toggleScreen() tea.Cmd {
	if a.active == a.swap {
		a.active = a.pool
	} else {
		a.active = a.swap
	}
	return a.active.Init()
}

// View renders the header plus the active screen.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(style.Title.Render("swapdeck"))
	b.WriteString("\n")
	b.WriteString(style.Label.Render(a.walletLine()))
	b.WriteString("\n")
	b.WriteString(a.active.View())

	out := b.String()
	if a.width > 80 {
		out = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, out)
	}
	return out
}

func (a *App) walletLine() string {
	if a.wallet.Connected() {
		return fmt.Sprintf("Wallet: %s", a.wallet.Address())
	}
	return "Wallet: not connected (press w)"
}
