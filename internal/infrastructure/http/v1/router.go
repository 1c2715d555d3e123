// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"retailcore/internal/domain/catalogs/counterparty"
	"retailcore/internal/domain/documents/purchase"
	"retailcore/internal/domain/documents/quotation"
	"retailcore/internal/domain/documents/sale"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/infrastructure/http/v1/handlers"
	"retailcore/internal/infrastructure/http/v1/middleware"
	"retailcore/internal/infrastructure/sequence"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/internal/infrastructure/storage/postgres/catalog_repo"
	"retailcore/internal/infrastructure/storage/postgres/document_repo"
	"retailcore/internal/infrastructure/storage/postgres/ledger_repo"
	"retailcore/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (also used for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// RateLimiter limits requests per client IP (nil disables limiting)
	RateLimiter *limiter.Limiter

	// IsProduction switches Gin to release mode
	IsProduction bool
}

// NewRouter creates and configures the Gin router.
//
// All repositories share one TxManager; workflows open the transaction and
// every nested repository call joins it through context.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Shared infrastructure
	txm := postgres.NewTxManager(cfg.Pool)
	seq := sequence.New(txm)
	audit, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, err
	}

	// Repositories
	counterpartyRepo := catalog_repo.NewCounterpartyRepo(txm)
	ledgerRepo := ledger_repo.NewLedgerRepo(txm)
	saleRepo := document_repo.NewSaleRepo(txm)
	purchaseRepo := document_repo.NewPurchaseRepo(txm)
	quotationRepo := document_repo.NewQuotationRepo(txm)

	// Domain services
	engine := ledger.NewEngine(ledgerRepo, txm)
	directory := ledger.NewDirectory(ledgerRepo)
	balances := ledger.NewBalanceService(ledgerRepo, txm)

	counterpartyService := counterparty.NewService(counterpartyRepo, seq, txm)
	saleService := sale.NewService(
		saleRepo, counterpartyService, engine, directory, ledgerRepo, seq, txm)
	purchaseService := purchase.NewService(
		purchaseRepo, counterpartyService, engine, directory, ledgerRepo, seq, txm)
	quotationService := quotation.NewService(quotationRepo, saleService, seq, txm)

	// API v1 (JWT protected)
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		handlers.NewCounterpartyHandler(counterpartyService, audit).Register(api)
		handlers.NewSaleHandler(saleService, audit).Register(api)
		handlers.NewPurchaseHandler(purchaseService, audit).Register(api)
		handlers.NewQuotationHandler(quotationService, audit).Register(api)
		handlers.NewLedgerHandler(ledgerRepo, balances).Register(api)
	}

	return router, nil
}
