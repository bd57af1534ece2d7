package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/aggregator"
	"StockAdvisor/internal/analysis"
	"StockAdvisor/internal/cache"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/config"
	"StockAdvisor/internal/logger"
	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/notifier"
	"StockAdvisor/internal/scheduler"
	"StockAdvisor/internal/server"
	"StockAdvisor/internal/strategy"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}); err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("config", cfgPath).Msg("StockAdvisor starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider collector.Provider
	switch cfg.ResolveProvider() {
	case "rest":
		provider = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		provider = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		provider = collector.NewYahooFetcher(cfg.Proxy)
	}

	store, err := openCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("open cache")
	}
	defer store.Close()
	if cfg.Cache.Backend != "none" {
		provider = collector.NewCachedFetcher(provider, store, cfg.Cache.TTL)
	}
	log.Info().Str("source", provider.Name()).Msg("data source ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	analyzer := analysis.NewAnalyzer(
		provider,
		collector.NewCollector(provider, cfg.Analysis.Period, cfg.Analysis.Interval),
		aggregator.New(strategy.NewEngine(cfg.Analysis.FastWindow, cfg.Analysis.SlowWindow)),
		metrics.New(reg),
		cfg.Analysis.MetadataWorkers,
	)

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(cfg.Server.Addr, server.NewHandler(analyzer, cfg.Analysis.DefaultBudget), reg)
		srv.Start()
	}

	if cfg.Telegram.Enabled {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched := scheduler.NewScheduler(ctx, analyzer, tn, cfg.Schedule.Watchlist, cfg.Schedule.Budget, cfg.Analysis.DefaultBudget)
		if err := sched.Register(cfg.Schedule.WatchlistCron); err != nil {
			log.Fatal().Err(err).Msg("register cron tasks")
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, running watchlist now")
			go sched.RunWatchlistNow()
		}
	}

	log.Info().Msg("StockAdvisor is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("stop http server")
		}
	}
	log.Info().Msg("StockAdvisor stopped")
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Cache.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
		return cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	case "redis":
		return cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	default:
		return cache.NewNoopStore(), nil
	}
}
