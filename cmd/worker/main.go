package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/alerts"
	"github.com/jmpark/outageboard/internal/cache"
	"github.com/jmpark/outageboard/internal/config"
	"github.com/jmpark/outageboard/internal/metrics"
	"github.com/jmpark/outageboard/internal/registry"
	"github.com/jmpark/outageboard/internal/scheduler"
	"github.com/jmpark/outageboard/internal/scrape"
	"github.com/jmpark/outageboard/internal/storage/postgres"
)

// Headless mode: the scrape loop without the HTTP surface. Useful
// when only the remote-write metrics, NATS alarms, and history rows
// are wanted.
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

	fetcher := scrape.NewBrowserFetcher(cfg.Scrape.WaitTimeout, cfg.Scrape.NavTimeout, logger)
	defer fetcher.Close()

	preflight := scrape.NewPreflight(cfg.Scrape.DNSServer, 5*time.Second)
	aggregator := scrape.NewAggregator(fetcher, preflight, cfg.Scrape.PacingDelay, collector, logger)
	statusCache := cache.NewStatusCache(aggregator, logger)

	reg := registry.Load(cfg.Registry.Path, logger)
	for _, region := range cfg.Regions() {
		if len(reg.Names(region)) == 0 {
			reg.MergeAndPersist(region, config.DefaultWatchlist())
		}
	}

	var history scheduler.HistoryStore
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
		history, publisher,
		cfg.Regions(), cfg.Scrape.PollInterval, logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go sched.Start(ctx)
	go collector.StartRemoteWrite(ctx, logger)

	logger.Info("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker exited")
}
