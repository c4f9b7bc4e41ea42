package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadvault/backend/internal/api"
	"github.com/leadvault/backend/internal/auth"
	"github.com/leadvault/backend/internal/cache"
	"github.com/leadvault/backend/internal/config"
	"github.com/leadvault/backend/internal/db"
	apperrors "github.com/leadvault/backend/internal/errors"
	"github.com/leadvault/backend/internal/health"
	"github.com/leadvault/backend/internal/logger"
	"github.com/leadvault/backend/internal/metrics"
	"github.com/leadvault/backend/internal/middleware"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "server"))
	log := logger.Default()

	database, err := apperrors.RetryWithResult(ctx, apperrors.ConnectRetryConfig(), func(ctx context.Context) (*db.DB, error) {
		return db.New(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	})
	if err != nil {
		log.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}
	log.Info(ctx, "migrations applied")

	tokenCache, err := apperrors.RetryWithResult(ctx, apperrors.ConnectRetryConfig(), func(ctx context.Context) (*cache.Cache, error) {
		return cache.New(cfg.RedisAddr, cfg.RedisTimeout)
	})
	if err != nil {
		log.Error(ctx, "failed to connect to redis", err)
		os.Exit(1)
	}
	defer tokenCache.Close()

	userRepo := db.NewUserRepository(database)
	leadRepo := db.NewLeadRepository(database)

	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	blacklist := auth.NewBlacklist(tokenCache)
	authService := auth.NewService(userRepo, issuer, blacklist)
	authHandlers := auth.NewHandlers(authService, cfg.CookieSecure)

	healthHandler := health.NewHandler(health.NewChecker(&health.CheckerConfig{
		DB:      database.DB,
		Redis:   tokenCache.Client(),
		Version: version,
	}))

	router := api.NewRouter(authHandlers, authService, leadRepo, healthHandler)

	handler := middleware.Chain(router,
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Recoverer(log),
		middleware.CORS(cfg.AllowedOrigins),
		metrics.Middleware(metrics.Default()),
	)

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "starting server", map[string]interface{}{"addr": cfg.ServerAddr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server failed", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown failed", err)
	}
}
