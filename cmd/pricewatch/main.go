package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pricewatch/internal/catalog"
	"pricewatch/internal/config"
	"pricewatch/internal/ingest"
	"pricewatch/pkg/kit"
)

const service = "pricewatch"

func main() {
	cfg := config.Load()

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()

	loop := &ingest.Loop{
		URL:       cfg.TargetURL,
		Interval:  cfg.ScrapeEvery,
		Fetcher:   ingest.NewFetcher(cfg.FetchTimeout),
		Extractor: ingest.NewExtractor(cfg.NameSelector, cfg.PriceSelector, log),
		Store:     store,
		Log:       log,
		Metrics:   ingest.NewMetrics(reg),
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	h := catalog.NewHandler(
		&catalog.Server{Store: store, Log: log},
		catalog.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	if err := kit.RunHTTPServer(ctx, cfg.RunAddr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}

	stop()
	wg.Wait()
	log.Info("shutdown complete")
}

// openStore picks Postgres when a DSN is configured and the in-memory
// store otherwise, so the service runs without a database in dev.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DatabaseDSN == "" {
		log.Warn("DATABASE_URI not set, using in-memory store")
		return catalog.NewMemStore(), func() {}, nil
	}

	connCfg, err := pgx.ParseConfig(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	db := stdlib.OpenDB(*connCfg)

	store := catalog.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("connected to postgres")
	return store, func() { _ = db.Close() }, nil
}
