package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"scoreline/server/internal/alerts"
	"scoreline/server/internal/cache"
	"scoreline/server/internal/client"
	"scoreline/server/internal/config"
	"scoreline/server/internal/metrics"
	"scoreline/server/internal/repository"
	"scoreline/server/internal/scheduler"
	"scoreline/server/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting Scoreline Ingestion Worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	sportsFeed := client.NewSportsFeed(
		cfg.SportsDataNBABaseURL,
		cfg.SportsDataNFLBaseURL,
		cfg.SportsDataAPIKey,
		cfg.SportsDataTimeout,
	)
	oddsFeed := client.NewOddsFeed(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsTimeout)
	log.Info().Msg("Feed clients initialized")

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	var store cache.Store = cache.Null{}
	var redisCache *cache.Redis
	redisCache, err = cache.NewRedis(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		store = redisCache
		log.Info().Msg("Redis cache connected")
	}

	injuries := client.NewInjuryReport(sportsFeed, 15*time.Minute)
	builder := snapshot.NewBuilder(
		db.Teams,
		db.Games,
		db.ClosingLines,
		injuries,
		store,
		time.Duration(cfg.CacheTTLSnapshots)*time.Second,
	)
	service := snapshot.NewService(builder, db.Quotes, cfg.PreferredBookmaker)

	var publisher *alerts.Publisher
	if cfg.EnableAlerts && redisCache != nil {
		publisher = alerts.NewPublisher(redisCache.Client(), cfg.AlertsListKey, cfg.AlertsMaxLen)
		log.Info().Str("list", cfg.AlertsListKey).Msg("Alert publisher enabled")
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg, sportsFeed, oddsFeed, db, service, publisher)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial data sync...")
		if err := sched.NightlyRefresh(ctx); err != nil {
			log.Error().Err(err).Msg("Initial sync failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial sync completed successfully")
		}
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
