package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-service/config"
	httpHandler "ledger-service/internal/adapter/http/handler"
	"ledger-service/internal/adapter/http/middleware"
	pgStorage "ledger-service/internal/adapter/storage/postgres"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/service"
	"ledger-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting ledger service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	userSvc := service.NewUserService(userRepo, hashSvc, tokenSvc, log)
	accountSvc := service.NewAccountService(accountRepo, log)
	ledgerSvc := service.NewLedgerService(accountRepo, txRepo, transactor, log)

	// Process-local admission control, keyed by client IP
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		UserSvc:        userSvc,
		AccountSvc:     accountSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		RateLimiter:    rateLimiter,
		HealthCheckers: []ports.HealthChecker{pgHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
