package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/parking-schedule-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/parking-schedule-service/internal/adapter/kafka"
	"github.com/couchcryptid/parking-schedule-service/internal/adapter/mapbox"
	"github.com/couchcryptid/parking-schedule-service/internal/adapter/opendata"
	"github.com/couchcryptid/parking-schedule-service/internal/adapter/sqlite"
	"github.com/couchcryptid/parking-schedule-service/internal/config"
	"github.com/couchcryptid/parking-schedule-service/internal/domain"
	"github.com/couchcryptid/parking-schedule-service/internal/observability"
	"github.com/couchcryptid/parking-schedule-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Address lookup is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		loaders []pipeline.Loader
		db      *sqlite.Store
		writer  *kafkaadapter.Writer
	)
	if cfg.SQLitePath != "" {
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, db)
	}
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	source := opendata.NewClient(cfg.SourceURL, cfg.SourceTimeout, logger)
	store := pipeline.NewStore()
	p := pipeline.New(source, store, loaders, cfg.RefreshInterval, logger, metrics)

	if db != nil {
		if err := p.WarmStart(ctx, db); err != nil {
			logger.Warn("warm start skipped", "error", err)
		} else if counts, err := db.CountByParkingType(ctx); err == nil {
			logger.Info("warm start complete", "parking_types", counts)
		}
	}

	svc := pipeline.NewService(store, geocoder, cfg.HorizonDays, cfg.Location, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("sqlite close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
