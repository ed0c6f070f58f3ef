package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-profile-service/internal/adapter/fdsn"
	httpadapter "github.com/couchcryptid/quake-profile-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-profile-service/internal/adapter/kafka"
	valkeyadapter "github.com/couchcryptid/quake-profile-service/internal/adapter/valkey"
	"github.com/couchcryptid/quake-profile-service/internal/config"
	"github.com/couchcryptid/quake-profile-service/internal/display"
	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
	"github.com/couchcryptid/quake-profile-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	theme, err := display.LoadTheme(cfg.ThemeFile)
	if err != nil {
		logger.Error("failed to load theme", "error", err)
		os.Exit(1)
	}

	// Catalog cache: valkey when VALKEY_ADDR is set, in-memory LRU otherwise.
	var store fdsn.Store
	var valkeyStore *valkeyadapter.Store
	if cfg.ValkeyAddr != "" {
		valkeyStore, err = valkeyadapter.New(cfg.ValkeyAddr, cfg.CacheTTL)
		if err != nil {
			logger.Error("failed to connect to valkey", "error", err, "addr", cfg.ValkeyAddr)
			os.Exit(1)
		}
		store = valkeyStore
		logger.Info("valkey catalog cache enabled", "addr", cfg.ValkeyAddr, "ttl", cfg.CacheTTL)
	} else {
		store = fdsn.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL, nil)
		logger.Info("in-memory catalog cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	client := fdsn.NewClient(cfg.FDSNBaseURL, cfg.FDSNTimeout, metrics, logger)
	source := fdsn.NewCachedSource(client, store, metrics)
	catalog := domain.NewCatalog(source, cfg.MagnitudeBins, logger)

	var opts []session.Option
	if valkeyStore != nil {
		opts = append(opts, session.WithReadinessCheck("valkey", valkeyStore))
	}
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, session.WithPublisher(writer))
		logger.Info("catalog publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.CatalogTopic)
	} else {
		logger.Info("catalog publishing disabled")
	}

	settings := session.Settings{Scale: cfg.EventSizeScale, Profile: cfg.ProfileOptions()}
	manager := session.NewManager(catalog, settings, metrics, logger, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, manager, theme, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	go manager.Run(ctx, cfg.SessionIdleTimeout, cfg.SessionSweepInterval)

	// Warm the network list so readiness flips once the upstream answers.
	go func() {
		networks := manager.Networks(ctx)
		logger.Info("network list loaded", "networks", len(networks))
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
	if valkeyStore != nil {
		valkeyStore.Close()
	}

	logger.Info("shutdown complete")
}
