package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"stock-ledger-service/internal/config"
	"stock-ledger-service/internal/events"
	"stock-ledger-service/internal/export"
	"stock-ledger-service/internal/handlers"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Location{},
		&models.Placement{},
		&models.Batch{},
		&models.DefaultPlacement{},
		&models.Inventory{},
		&models.InventoryHistory{},
		&models.Reorder{},
		&models.Order{},
		&models.OrderLine{},
		&models.Attachment{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client (optional - repository degrades to DB-only reads)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis unavailable: %v", err)
			log.Println("Continuing without read caching...")
			redisClient = nil
		} else {
			log.Println("✓ Connected to Redis for read caching")
		}
		cancel()
	} else {
		log.Println("REDIS_ADDR not configured, read caching disabled")
	}

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var eventPublisher *events.LedgerEventPublisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.NewLedgerEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
			eventPublisher = nil
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Publisher interfaces stay nil when NATS is down so the services skip publishing
	var movementPublisher services.MovementEventPublisher
	var transferPublisher services.TransferEventPublisher
	var reorderPublisher services.ReorderEventPublisher
	if eventPublisher != nil {
		movementPublisher = eventPublisher
		transferPublisher = eventPublisher
		reorderPublisher = eventPublisher
	}

	// Initialize repository
	repo := repository.NewInventoryRepository(db, redisClient)

	// Initialize services
	resolver := services.NewDimensionResolver(repo, logger)
	ledger := services.NewLedgerService(repo, resolver, movementPublisher, logger)
	transfers := services.NewTransferOrchestrator(repo, ledger, resolver, transferPublisher, logger)
	exporter := export.NewOrderExporter()
	attachments := export.NewAttachmentService(repo, cfg.ExportDir, logger)
	reorders := services.NewReorderEngine(repo, exporter, attachments, reorderPublisher, logger)

	// Initialize handlers
	ledgerHandler := handlers.NewLedgerHandler(repo, ledger, transfers, reorders, resolver)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("stock-ledger-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("stock-ledger-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "stock_ledger_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMiddleware := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("stock-ledger-service"))

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/health/extended", ledgerHandler.ExtendedHealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Authentication middleware using Istio JWT claims
	// Istio validates JWT and injects x-jwt-claim-* headers
	api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: false,
		SkipPaths:          []string{"/health", "/ready", "/metrics", "/swagger"},
	}))
	api.Use(middleware.TenantMiddleware())

	// Movement routes with RBAC
	movements := api.Group("/movements")
	{
		movements.POST("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryAdjust), ledgerHandler.ApplyMovement)
		movements.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.ListHistory)
	}

	// Inventory read routes with RBAC
	inventory := api.Group("/inventory")
	{
		inventory.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.GetInventory)
	}

	// Transfer routes with RBAC
	transferRoutes := api.Group("/transfers")
	{
		transferRoutes.POST("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryAdjust), ledgerHandler.CreateTransfer)
	}

	// Reorder routes with RBAC
	reorderRoutes := api.Group("/reorders")
	{
		reorderRoutes.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.ListReorders)
		reorderRoutes.PUT("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), ledgerHandler.SetThreshold)
		reorderRoutes.DELETE("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), ledgerHandler.DeleteThreshold)
		reorderRoutes.POST("/request", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), ledgerHandler.RecordRequest)
		reorderRoutes.POST("/finalize", rbacMiddleware.RequirePermission(rbac.PermissionInventoryAdjust), ledgerHandler.BulkFinalize)
	}

	// Order routes with RBAC
	orders := api.Group("/orders")
	{
		orders.GET("", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.ListOrders)
		orders.GET("/:id", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.GetOrder)
	}

	// Dimension routes with RBAC
	locations := api.Group("/locations")
	{
		locations.GET("/:id/placements", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.ListPlacements)
	}
	placements := api.Group("/placements")
	{
		placements.GET("/:id/batches", rbacMiddleware.RequirePermission(rbac.PermissionInventoryRead), ledgerHandler.ListBatches)
	}
	products := api.Group("/products")
	{
		products.PUT("/:id/default-placement", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), ledgerHandler.SetDefaultPlacement)
		products.DELETE("/:id/default-placement", rbacMiddleware.RequirePermission(rbac.PermissionInventoryUpdate), ledgerHandler.ClearDefaultPlacement)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Stock ledger service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down stock-ledger-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Stock ledger service stopped")
}
