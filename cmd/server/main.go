// Package main is the entry point for the stockbook API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbook/internal/domain/alerts"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/reports"
	v1 "stockbook/internal/infrastructure/http/v1"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/ledger_repo"
	"stockbook/internal/infrastructure/storage/postgres/report_repo"
	"stockbook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockbook server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Repositories ---
	itemRepo := catalog_repo.NewItemRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	transactionRepo := ledger_repo.NewTransactionRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Low-stock alert rule ---
	ruleExpr := getEnv("LOW_STOCK_RULE", alerts.DefaultExpression)
	rule, err := alerts.Compile(ruleExpr)
	if err != nil {
		log.Fatalw("failed to compile low-stock rule", "rule", ruleExpr, "error", err)
	}
	log.Infow("low-stock rule compiled", "rule", ruleExpr)

	// --- Domain services ---
	itemService := item.NewService(itemRepo, transactionRepo, txManager)
	supplierService := supplier.NewService(supplierRepo)
	transactionService := ledger.NewService(transactionRepo, itemRepo, txManager, auditService)
	reportsService := reports.NewService(reportRepo, rule)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(auth.Credentials{
		Username:     getEnv("OPERATOR_USERNAME", "operator"),
		PasswordHash: mustEnv("OPERATOR_PASSWORD_HASH"),
	}, jwtService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		Logger:             log,
		AuditService:       auditService,
		JWTValidator:       jwtService,
		AuthService:        authService,
		ItemService:        itemService,
		SupplierService:    supplierService,
		TransactionService: transactionService,
		ReportsService:     reportsService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
