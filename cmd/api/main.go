package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/alerts"
	"github.com/jmpark/outageboard/internal/api"
	"github.com/jmpark/outageboard/internal/api/handlers"
	"github.com/jmpark/outageboard/internal/cache"
	"github.com/jmpark/outageboard/internal/config"
	"github.com/jmpark/outageboard/internal/metrics"
	"github.com/jmpark/outageboard/internal/newsbot"
	"github.com/jmpark/outageboard/internal/registry"
	"github.com/jmpark/outageboard/internal/scheduler"
	"github.com/jmpark/outageboard/internal/scrape"
	"github.com/jmpark/outageboard/internal/storage/postgres"
)

// The dashboard binary: scrape loop and HTTP API in one process,
// sharing the in-memory status cache.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(cfg.RemoteWrite, promRegistry)

	// Scrape pipeline
	fetcher := scrape.NewBrowserFetcher(cfg.Scrape.WaitTimeout, cfg.Scrape.NavTimeout, logger)
	defer fetcher.Close()

	preflight := scrape.NewPreflight(cfg.Scrape.DNSServer, 5*time.Second)
	aggregator := scrape.NewAggregator(fetcher, preflight, cfg.Scrape.PacingDelay, collector, logger)
	statusCache := cache.NewStatusCache(aggregator, logger)

	// Company registry, seeded on first run
	reg := registry.Load(cfg.Registry.Path, logger)
	for _, region := range cfg.Regions() {
		if len(reg.Names(region)) == 0 {
			reg.MergeAndPersist(region, config.DefaultWatchlist())
		}
	}

	// Optional snapshot history
	var history *postgres.HistoryRepo
	if cfg.Database.URL != "" {
		if err := postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		db, err := postgres.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		history = postgres.NewHistoryRepo(db)
	}

	// Optional alarm fan-out
	var publisher scheduler.EventPublisher
	if cfg.Nats.URL != "" {
		p, err := alerts.NewPublisher(cfg.Nats.URL, cfg.Nats.SubjectPrefix, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	tracker := alerts.NewTracker(logger)

	sched := scheduler.NewScheduler(
		aggregator, statusCache, reg, tracker, collector,
		historyStore(history), publisher,
		cfg.Regions(), cfg.Scrape.PollInterval, logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go sched.Start(ctx)
	go collector.StartRemoteWrite(ctx, logger)

	// News tracker collaborators
	feed := newsbot.NewFeedClient(logger)
	translator := newsbot.NewTranslator(cfg.News, logger)
	geocoder := newsbot.NewGeocoder(cfg.News, logger)

	handler := handlers.NewHandler(statusCache, reg, feed, translator, geocoder, history, collector, logger)
	server := api.NewServer(cfg, handler, promRegistry, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Dashboard started", zap.String("port", cfg.Server.Port))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// historyStore keeps a typed nil from sneaking into the scheduler's
// interface field.
func historyStore(h *postgres.HistoryRepo) scheduler.HistoryStore {
	if h == nil {
		return nil
	}
	return h
}
