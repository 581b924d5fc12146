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
	"scoreline/server/internal/repository"
	"scoreline/server/internal/server"
	"scoreline/server/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting Scoreline API Server")

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

	sportsFeed := client.NewSportsFeed(
		cfg.SportsDataNBABaseURL,
		cfg.SportsDataNFLBaseURL,
		cfg.SportsDataAPIKey,
		cfg.SportsDataTimeout,
	)

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
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	api := server.New(db, builder, service, sportsFeed, store, publisher)
	if err := api.Serve(ctx, cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("API server failed")
	}

	log.Info().Msg("Server shutdown complete")
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
