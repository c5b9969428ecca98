// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/catalogs/item"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool         *postgres.Pool
	Logger       *logger.Logger
	AuditService *postgres.AuditService

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	ItemService        *item.Service
	SupplierService    *supplier.Service
	TransactionService *ledger.Service
	ReportsService     *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health and metrics endpoints (no auth).
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		apiV1.POST("/auth/login", authHandler.Login)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		itemHandler := handlers.NewItemHandler(base, cfg.ItemService)
		txHandler := handlers.NewTransactionHandler(base, cfg.TransactionService, cfg.AuditService)
		items := protected.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
			items.POST("/:id/damage", itemHandler.RecordDamage)
			items.GET("/:id/balance", txHandler.Balance)
		}

		supplierHandler := handlers.NewSupplierHandler(base, cfg.SupplierService)
		suppliers := protected.Group("/suppliers")
		{
			suppliers.POST("", supplierHandler.Create)
			suppliers.GET("", supplierHandler.List)
			suppliers.GET("/:id", supplierHandler.Get)
			suppliers.PUT("/:id", supplierHandler.Update)
			suppliers.DELETE("/:id", supplierHandler.Delete)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", txHandler.Record)
			transactions.GET("", txHandler.List)
			transactions.GET("/:id", txHandler.Get)
			transactions.PUT("/:id", txHandler.Edit)
			transactions.POST("/:id/reverse", txHandler.Reverse)
			transactions.POST("/:id/undo-reverse", txHandler.UndoReverse)
			transactions.GET("/:id/audit", txHandler.AuditHistory)
		}

		reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)
		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("/stock-balance", reportsHandler.StockBalance)
			reportsGroup.GET("/low-stock", reportsHandler.LowStock)
			reportsGroup.GET("/turnover", reportsHandler.Turnover)
		}
	}

	return router
}
