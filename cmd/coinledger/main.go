package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"coinledger/internal/adapter/analytics"
	"coinledger/internal/adapter/cache"
	"coinledger/internal/adapter/events"
	"coinledger/internal/adapter/handler"
	"coinledger/internal/adapter/source"
	"coinledger/internal/adapter/storage"
	"coinledger/internal/application/service"
	"coinledger/internal/application/usecase"
	"coinledger/internal/concurrency/broadcast"
	"coinledger/internal/domain/model"
	"coinledger/internal/infrastructure/config"
	"coinledger/internal/infrastructure/logger"
	"coinledger/internal/infrastructure/server"
)

var (
	portFlag   = flag.Int("port", 0, "Port number")
	configFlag = flag.String("config", "configs/config.yaml", "Config file path")
	helpFlag   = flag.Bool("help", false, "Show help")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printUsage()
		os.Exit(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting coinledger", "version", "1.0.0")

	entryStore, err := storage.NewPostgresAdapter(cfg.PostgresDSN())
	if err != nil {
		log.Error("failed to initialize postgres", "error", err)
		os.Exit(1)
	}
	defer entryStore.Close()

	if err := entryStore.InitSchema(context.Background()); err != nil {
		log.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	rateCache, err := cache.NewRedisAdapter(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}
	defer rateCache.Close()

	// Single broadcast bus for rate updates; every consumer below hangs
	// off it with its own operator chain.
	rateBus := broadcast.NewBus[model.Rate]()

	rateSource := source.NewHTTPSource(
		cfg.Monitor.PrimaryURL,
		cfg.Monitor.FallbackURL,
		cfg.Monitor.RequestTimeout,
		log,
	)
	monitor := service.NewMonitor(rateSource, rateCache, rateBus, cfg.Monitor.Interval, log)

	ledgerService := service.NewLedger(entryStore, log)
	ledgerUseCase := usecase.NewLedgerUseCase(ledgerService)
	feed := usecase.NewFeed(ledgerService, cfg.Ledger.PageSize)

	analyticsService := analytics.NewMemoryAnalytics()

	// Standing bus consumers.
	rateBus.Subscribe(func(r model.Rate) {
		analyticsService.Track("bitcoin_rate_update", map[string]string{
			"rate": fmt.Sprintf("%.2f", r.Price),
		})
	})

	rateBus.Subscribe(func(r model.Rate) {
		log.Warn("rate outside alert band", "price", r.Price)
	}, broadcast.WithFilter(func(r model.Rate) bool {
		return r.Price > 50000 || r.Price < 40000
	}))

	rateBus.Subscribe(func(r model.Rate) {
		log.Debug("rate settled", "price", r.Price)
	}, broadcast.WithDebounce[model.Rate](5*time.Second))

	rateBus.SubscribeBatch(func(batch []model.Rate) {
		log.Info("rate window", "count", len(batch), "last", batch[len(batch)-1].Price)
	}, broadcast.WithWindow[model.Rate](time.Minute))

	var exporter *events.KafkaExporter
	if cfg.Kafka.Enabled {
		exporter = events.NewKafkaExporter(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer exporter.Close()
		rateBus.Subscribe(exporter.Export)
	}

	ledgerService.BalanceUpdates().Subscribe(func(balance decimal.Decimal) {
		log.Info("balance updated", "balance", balance)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Ledger.ReconcileInterval > 0 {
		go reconcileLoop(ctx, ledgerService, cfg.Ledger.ReconcileInterval)
	}

	rateHandler := handler.NewRateHandler(monitor, log)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, ledgerUseCase, feed, cfg.Ledger.PageSize, log)
	healthHandler := handler.NewHealthHandler(entryStore, rateCache, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate", rateHandler.GetRate)
	mux.HandleFunc("GET /balance", ledgerHandler.GetBalance)
	mux.HandleFunc("POST /entries", ledgerHandler.AddEntry)
	mux.HandleFunc("GET /entries", ledgerHandler.GetEntries)
	mux.HandleFunc("GET /feed", ledgerHandler.GetFeed)
	mux.HandleFunc("GET /feed/more", ledgerHandler.GetFeedMore)
	mux.HandleFunc("GET /health", healthHandler.Check)

	srv := server.New(cfg.Server.Port, mux, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	monitor.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down gracefully")

	monitor.Stop()
	rateBus.UnsubscribeAll()
	ledgerService.BalanceUpdates().UnsubscribeAll()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	log.Info("shutdown complete")
}

func reconcileLoop(ctx context.Context, ledger *service.Ledger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = ledger.Reconcile(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  coinledger [--port <N>] [--config <path>]")
	fmt.Println("  coinledger --help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --port N        Port number")
	fmt.Println("  --config PATH   Config file path")
}
