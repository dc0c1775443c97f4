package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/investify-pos/internal/config"
	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/investify-pos/internal/presentation/http/handler"
	"github.com/sangkips/investify-pos/internal/presentation/http/middleware"
	"github.com/sangkips/investify-pos/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Sale    *handler.SaleHandler
	Stock   *handler.StockHandler
	Ledger  *handler.LedgerHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Log             *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Terminals probe this for connectivity
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, "Service is healthy", gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rlCfg := middleware.RateLimiterConfigFor(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration)
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	rateLimiter := middleware.NewActorRateLimiter(rlCfg)

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		auth.Use(rateLimiter.Middleware())
		auth.POST("/login", h.Auth.Login)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps, log)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, log *zap.Logger) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		Log:  log,
	})

	protected.GET("/profile", h.Auth.GetProfile)

	registerCatalogRoutes(protected, h)
	registerSaleRoutes(protected, h, idempotent)
	registerStockRoutes(protected, h, idempotent)
	registerLedgerRoutes(protected, h, idempotent)
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("")
	catalog.Use(middleware.RequirePermission(entity.PermViewCatalog))
	{
		catalog.GET("/products", h.Catalog.Products)
		catalog.GET("/categories", h.Catalog.Categories)
		catalog.GET("/customers", h.Catalog.Customers)
		catalog.GET("/suppliers", h.Catalog.Suppliers)
		catalog.GET("/profiles", h.Catalog.Profiles)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	protected.POST("/receipt-numbers", middleware.RequirePermission(entity.PermManageSales), h.Sale.NextReceiptNumber)

	sales := protected.Group("/sales")
	sales.Use(middleware.RequirePermission(entity.PermManageSales))
	{
		sales.GET("", h.Sale.List)
		sales.POST("", idempotent, h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
		sales.PUT("/:id/status", h.Sale.UpdateStatus)
		sales.GET("/:id/items", h.Sale.ListItems)
		sales.POST("/:id/items", h.Sale.AddItems)
	}
}

func registerStockRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	protected.POST("/stock-adjustments", middleware.RequirePermission(entity.PermManageStock), idempotent, h.Stock.Adjust)
}

func registerLedgerRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	cash := protected.Group("/cash-entries")
	cash.Use(middleware.RequirePermission(entity.PermManageLedger))
	{
		cash.GET("", h.Ledger.ListCashEntries)
		cash.POST("", idempotent, h.Ledger.PostCashEntry)
	}

	credit := protected.Group("/credit-records")
	credit.Use(middleware.RequirePermission(entity.PermManageLedger))
	{
		credit.GET("", h.Ledger.ListCreditRecords)
		credit.POST("", h.Ledger.CreateCreditRecord)
		credit.GET("/:id", h.Ledger.GetCreditRecord)
		credit.PUT("/:id", h.Ledger.UpdateCreditRecord)
	}
}
