package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/config"
	httpDelivery "github.com/run651/rakumart-1688/internal/delivery/http"
	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/infrastructure/cache"
	"github.com/run651/rakumart-1688/internal/infrastructure/logger"
	"github.com/run651/rakumart-1688/internal/infrastructure/persistence"
	"github.com/run651/rakumart-1688/internal/infrastructure/rakumart"
	"github.com/run651/rakumart-1688/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.ForEnvironment(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("starting rakumart gateway",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	var detailCache domain.CacheRepository
	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		zlog.Warn("detail cache disabled", zap.Error(err))
	} else {
		detailCache = store
		defer store.Close()
	}

	opts, err := rakumart.OptionsFromConfig(cfg.API, zlog)
	if err != nil {
		zlog.Fatal("invalid api configuration", zap.Error(err))
	}
	client := rakumart.NewClient(opts)
	if cfg.API.AppKey == "" {
		zlog.Warn("api.app_key is not configured; API calls will be rejected")
	}

	var products domain.ProductRepository
	if cfg.Database.DSN != "" {
		db, err := persistence.NewDatabase(cfg.Database, zlog, cfg.Log.Level)
		if err != nil {
			zlog.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()
		products = persistence.NewProductRepository(db.DB, zlog)
		zlog.Info("product sink enabled", zap.String("driver", cfg.Database.Driver))
	}

	// Initialize usecase layer
	catalog := usecase.NewCatalogService(client, detailCache, products, zlog, usecase.CatalogServiceConfig{
		DetailTTL:   cfg.Cache.TTL,
		DetailLimit: cfg.Search.DetailLimit,
		ShopType:    cfg.API.ShopType,
	})

	handler := httpDelivery.NewHandler(catalog, client)
	router := httpDelivery.SetupRouter(cfg, handler, zlog)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
