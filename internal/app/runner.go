// Package app assembles the application: config, logger, ledger, wallet,
// storage, event bus, quote engine and the terminal UI.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"swapdeck/internal/config"
	"swapdeck/internal/events"
	"swapdeck/internal/fixedpoint"
	"swapdeck/internal/ledger"
	"swapdeck/internal/logger"
	"swapdeck/internal/oracle"
	"swapdeck/internal/quoter"
	"swapdeck/internal/storage"
	"swapdeck/internal/storage/postgres"
	"swapdeck/internal/trade"
	"swapdeck/internal/ui"
	"swapdeck/internal/wallet"
)

// shutdownGrace bounds how long the event bus may drain on exit.
const shutdownGrace = 5 * time.Second

// Runner owns the wired components and the application lifecycle.
type Runner struct {
	logger *zap.Logger
	cfg    *config.Config

	led    ledger.Ledger
	wal    *wallet.Wallet
	store  storage.Storage
	bus    *events.Bus
	prices *oracle.Client
	quoter *quoter.Quoter
	trader *trade.Service

	shutdownCh chan os.Signal
}

// NewRunner loads configuration and wires every component. It does not start
// anything; Run does.
func NewRunner(configPath string) (*Runner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: cfg.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	led := buildLedger(cfg, log)
	wal := wallet.New(led, log)
	bus := events.NewBus(log, 64)
	subscribeNotifications(bus, log)

	var store storage.Storage
	if cfg.PostgresURL != "" {
		store, err = postgres.NewStorage(cfg.PostgresURL, log)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	var prices *oracle.Client
	if cfg.OracleURL != "" {
		prices = oracle.New(cfg.OracleURL, log, 0)
	}

	q := quoter.New(led, log, quoter.Options{
		Debounce:     cfg.Debounce(),
		Slippage:     cfg.Slippage(),
		FetchTimeout: cfg.FetchTimeout(),
		Bus:          bus,
	})

	trader := trade.New(trade.Config{
		Ledger:   led,
		Bus:      bus,
		Store:    store,
		Wallet:   wal,
		Logger:   log,
		Deadline: cfg.Deadline(),
	})

	return &Runner{
		logger:     log,
		cfg:        cfg,
		led:        led,
		wal:        wal,
		store:      store,
		bus:        bus,
		prices:     prices,
		quoter:     q,
		trader:     trader,
		shutdownCh: make(chan os.Signal, 1),
	}, nil
}

// subscribeNotifications records transaction outcomes in the log file. The
// screens show their own status lines; this is the durable trail.
func subscribeNotifications(bus *events.Bus, log *zap.Logger) {
	notify := log.Named("notify")
	handler := func(_ context.Context, e events.Event) error {
		tx, ok := e.(events.TxEvent)
		if !ok {
			return nil
		}
		fields := []zap.Field{
			zap.String("operation", tx.Operation),
			zap.String("pair", tx.PairLabel),
			zap.String("tx_id", tx.Receipt.TxID),
		}
		switch tx.Type() {
		case events.TxConfirmed:
			notify.Info("transaction confirmed", fields...)
		case events.TxCancelled:
			notify.Info("transaction cancelled in wallet", fields...)
		default:
			notify.Warn("transaction failed", append(fields, zap.Error(tx.Err))...)
		}
		return nil
	}
	for _, et := range []events.EventType{events.TxConfirmed, events.TxFailed, events.TxCancelled} {
		bus.SubscribeFunc(et, handler)
	}
}

// buildLedger selects the RPC ledger, or a seeded in-memory one in demo mode.
func buildLedger(cfg *config.Config, log *zap.Logger) ledger.Ledger {
	if !cfg.DemoMode {
		return ledger.NewRPCLedger(cfg.RPCEndpoint, log, ledger.RPCOptions{
			Timeout:  cfg.FetchTimeout(),
			MaxTries: uint(cfg.Retries),
		})
	}

	mem := ledger.NewMemLedger()
	assets := cfg.AssetList()
	if len(assets) >= 2 {
		r0 := fixedpoint.MustFromString("1000000000000")
		r1 := fixedpoint.MustFromString("2000000000000")
		supply := fixedpoint.MustFromString("1414213562373")
		mem.SeedPool(assets[0].ID, assets[1].ID, r0, r1, supply)
		for _, a := range assets {
			mem.SetBalance("demo-wallet", a.ID, fixedpoint.MustFromString("100000000000"))
		}
	}
	log.Info("demo mode: using in-memory ledger")
	return mem
}

// Run migrates storage, starts the UI program and blocks until it exits or a
// signal arrives.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.store != nil {
		if err := r.store.RunMigrations(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	app := ui.NewApp(ui.Config{
		Quoter:    r.quoter,
		Wallet:    r.wal,
		Trader:    r.trader,
		Prices:    r.prices,
		Assets:    r.cfg.AssetList(),
		MaxImpact: r.cfg.MaxImpact(),
		Logger:    r.logger,
	})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(runCtx))

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	r.logger.Info("starting swapdeck",
		zap.Bool("demo_mode", r.cfg.DemoMode),
		zap.Int("assets", len(r.cfg.Assets)))

	_, err := program.Run()
	r.shutdown()
	if err != nil && runCtx.Err() == nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// shutdown releases components in reverse wiring order.
func (r *Runner) shutdown() {
	r.quoter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := r.bus.Shutdown(ctx); err != nil {
		r.logger.Warn("bus shutdown", zap.Error(err))
	}

	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("close storage", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}
