package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shop-service/internal/api"
	"shop-service/internal/api/handlers"
	"shop-service/internal/auth"
	"shop-service/internal/cache"
	"shop-service/internal/dashboard"
	"shop-service/internal/database"
	"shop-service/internal/repository"
	"shop-service/internal/service"
)

const (
	requestTimeout       = 30 * time.Second
	sessionPurgeInterval = time.Hour
)

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cfg, err := database.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	applied, err := database.Migrate(ctx, pool, database.Migrations, logger)
	if err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations done", "applied", applied)

	var productRepo repository.ProductRepository = repository.NewProductRepository(pool)
	var invalidator service.ProductCacheInvalidator

	rdb, err := cache.ConnectRedis(ctx, cfg)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, product cache disabled", "error", err)
	case rdb == nil:
		logger.Info("REDIS_URL not set, product cache disabled")
	default:
		defer rdb.Close()
		cached := cache.NewCachedProductRepository(productRepo, rdb, cfg.CacheTTL, logger)
		productRepo = cached
		invalidator = cached
	}

	shopRepo := repository.NewShopRepository(pool)
	supplierRepo := repository.NewSupplierRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	operationRepo := repository.NewOperationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	authService := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)
	shopService := service.NewShopService(shopRepo, userRepo, supplierRepo, logger)
	productService := service.NewProductService(productRepo, operationRepo, supplierRepo, shopRepo, logger)
	orderService := service.NewOrderService(orderRepo, operationRepo, shopRepo, invalidator, logger)
	dashboardService := dashboard.NewService(repository.NewDashboardRepository(pool), shopRepo)

	router := api.NewRouter(api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger),
		Shops:     handlers.NewShopHandler(shopService, logger),
		Products:  handlers.NewProductHandler(productService, logger),
		Orders:    handlers.NewOrderHandler(orderService, logger),
		Dashboard: handlers.NewDashboardHandler(dashboardService, logger),
		Health:    handlers.Health(pool),
	}, requestTimeout)

	go purgeSessions(ctx, authService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func purgeSessions(ctx context.Context, svc *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PurgeExpired(ctx); err != nil {
				logger.Warn("failed to purge sessions", "error", err)
			}
		}
	}
}
