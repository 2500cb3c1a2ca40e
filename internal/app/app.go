// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/aggregator"
	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/basis/boltstore"
	"github.com/mcintyre94/swapsies/internal/basis/memory"
	"github.com/mcintyre94/swapsies/internal/basis/redistore"
	"github.com/mcintyre94/swapsies/internal/chain"
	"github.com/mcintyre94/swapsies/internal/config"
	"github.com/mcintyre94/swapsies/internal/events"
	"github.com/mcintyre94/swapsies/internal/logger"
	"github.com/mcintyre94/swapsies/internal/metrics"
	"github.com/mcintyre94/swapsies/internal/preview"
	"github.com/mcintyre94/swapsies/internal/price"
	"github.com/mcintyre94/swapsies/internal/tokens"
	"github.com/mcintyre94/swapsies/internal/ui"
	"github.com/mcintyre94/swapsies/internal/wallet"
)

const (
	ringSize        = 512
	probeTimeout    = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App owns every long-lived component of the terminal program and tears
// them down in reverse order on exit.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	ring    *logger.Ring
	bus     *events.Bus
	store   basis.Store
	backend string
	book    *wallet.Book
	pool    *chain.Pool

	provider *aggregator.Client
	prices   *price.Client
	tokens   *tokens.Service

	shutdown *ShutdownHandler
}

// New loads configuration and wires every collaborator. Nothing touches the
// network yet except the optional redis ping.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ring := logger.NewRing(ringSize)
	logCfg := logger.DefaultConfig()
	if cfg.LogFile != "" {
		logCfg.LogFile = cfg.LogFile
	}
	logCfg.Development = cfg.DebugLogging

	log, err := logger.NewTUI(logCfg, ring)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("🚀 Starting swapsies",
		zap.String("config", configPath),
		zap.String("store_backend", cfg.StoreBackend))

	shutdown := NewShutdownHandler(log, shutdownTimeout)

	store, backend, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	shutdown.AddFunc("basis_store", store.Close)

	book, err := wallet.LoadBook(cfg.WalletsFile)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	if cfg.ActiveWallet != "" {
		if err := book.SetActive(cfg.ActiveWallet); err != nil {
			return nil, fmt.Errorf("select wallet: %w", err)
		}
	}
	log.Info("Wallet book loaded", zap.Int("wallets", book.Len()))

	pool, err := chain.NewPool(cfg.RPCList, log)
	if err != nil {
		return nil, fmt.Errorf("rpc pool: %w", err)
	}

	bus := events.NewBus(log, 0)
	shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return bus.Shutdown(ctx)
	})
	metrics.Attach(bus)

	return &App{
		cfg:      cfg,
		logger:   log,
		ring:     ring,
		bus:      bus,
		store:    store,
		backend:  backend,
		book:     book,
		pool:     pool,
		provider: aggregator.NewClient(cfg.AggregatorURL, cfg.QuoteTimeout(), cfg.Retries, log),
		prices:   price.NewClient(cfg.PriceAPIURL, cfg.QuoteTimeout(), cfg.PriceTTL(), cfg.Retries, log),
		tokens:   tokens.NewService(pool, cfg.TokenAPIURL, log),
		shutdown: shutdown,
	}, nil
}

// OpenStore selects the configured cost-basis backend. It is shared with
// the basis command-line utility.
func OpenStore(cfg *config.Config, log *zap.Logger) (basis.Store, string, error) {
	switch cfg.StoreBackend {
	case "memory":
		log.Warn("Using the in-memory store, cost basis records will not survive exit")
		return memory.New(), "memory", nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, "", fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return redistore.New(rdb), "redis", nil

	default:
		store, err := boltstore.Open(cfg.BoltPath, log)
		if err != nil {
			return nil, "", fmt.Errorf("bolt store: %w", err)
		}
		return store, "bolt", nil
	}
}

// Run probes the RPC endpoints, starts the preview engine and the terminal
// UI, and blocks until the UI exits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	probeCtx, probeCancel := context.WithTimeout(runCtx, probeTimeout)
	if err := a.pool.Probe(probeCtx); err != nil {
		a.logger.Warn("No RPC endpoint reachable, balance and decimals reads will degrade",
			zap.Error(err))
	}
	probeCancel()

	if a.cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(runCtx, a.cfg.MetricsAddr, a.logger); err != nil {
				a.logger.Error("Metrics listener failed", zap.Error(err))
			}
		}()
	}

	if a.cfg.JournalFile != "" {
		journal, err := NewJournal(a.cfg.JournalFile, a.bus, a.logger)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		a.shutdown.Add("preview_journal", journal)
	}

	engine := preview.NewEngine(runCtx, preview.Config{
		Provider:   a.provider,
		Prices:     a.prices,
		Tokens:     a.tokens,
		Store:      a.store,
		Bus:        a.bus,
		Logger:     a.logger,
		Debounce:   a.cfg.Debounce(),
		Thresholds: a.cfg.Thresholds(),
	})
	a.shutdown.AddFunc("preview_engine", func() error {
		engine.Close()
		return nil
	})

	model := ui.New(ui.Config{
		Ctx:     runCtx,
		Engine:  engine,
		Tokens:  a.tokens,
		Store:   a.store,
		Book:    a.book,
		Chain:   a.pool,
		Bus:     a.bus,
		Ring:    a.ring,
		Logger:  a.logger,
		Backend: a.backend,
	})
	program := tea.NewProgram(ui.NewSafeModel(model, a.logger), tea.WithAltScreen())

	go func() {
		<-runCtx.Done()
		program.Quit()
	}()

	a.logger.Info("🖥️  Terminal UI starting")
	_, runErr := program.Run()
	if runErr != nil {
		a.logger.Error("Terminal UI failed", zap.Error(runErr))
	}

	if err := a.close(); runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) close() error {
	err := a.shutdown.Shutdown()
	a.logger.Info("👋 swapsies stopped", zap.Any("bus", a.bus.Stats()))
	_ = logger.Sync(a.logger)
	return err
}
