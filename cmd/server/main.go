package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	financeapp "github.com/aduana/backend/internal/application/finance"
	identityapp "github.com/aduana/backend/internal/application/identity"
	procurementapp "github.com/aduana/backend/internal/application/procurement"
	stockapp "github.com/aduana/backend/internal/application/stock"
	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/aduana/backend/internal/infrastructure/auth"
	"github.com/aduana/backend/internal/infrastructure/cache"
	"github.com/aduana/backend/internal/infrastructure/config"
	"github.com/aduana/backend/internal/infrastructure/event"
	"github.com/aduana/backend/internal/infrastructure/logger"
	"github.com/aduana/backend/internal/infrastructure/persistence"
	"github.com/aduana/backend/internal/infrastructure/printing"
	"github.com/aduana/backend/internal/infrastructure/storage"
	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/aduana/backend/internal/interfaces/http/handler"
	"github.com/aduana/backend/internal/interfaces/http/middleware"
	"github.com/aduana/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Aduana Backend API
//	@version		1.0
//	@description	Customs clearance document lifecycle API: procurement orders, inbound receipts, pedimento cost documents and vendor invoices.

//	@contact.name	API Support
//	@contact.email	soporte@aduana.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Aduana Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry (tracing and metrics)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing (otelgorm) when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	orderRepo := persistence.NewGormProcurementOrderRepository(db.DB)
	documentRepo := persistence.NewGormClearanceDocumentRepository(db.DB)
	attachmentRepo := persistence.NewGormDocumentAttachmentRepository(db.DB)
	invoiceRepo := persistence.NewGormVendorInvoiceRepository(db.DB)

	// Domain engines and capabilities
	inventoryEngine := stock.NewStandardInventoryEngine(receiptRepo, stockLevelRepo, locationRepo)
	costingEngine := clearance.NewStandardCostingEngine(documentRepo)

	var canceller clearance.SafeCanceller
	if cfg.Clearance.SafeCancelEnabled {
		canceller = clearance.NewStandardSafeCanceller()
	} else {
		canceller = clearance.NewDisabledSafeCanceller()
	}

	// Object storage for document attachments
	var objectStorage clearanceapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", cfg.Storage.Bucket),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, using stub backend")
	}

	// PDF renderer for document summaries
	var pdfRenderer printing.PDFRenderer
	switch cfg.Printing.Renderer {
	case "wkhtmltopdf":
		pdfRenderer, err = printing.NewWkhtmltopdfRenderer(&printing.WkhtmltopdfConfig{
			BinaryPath:     cfg.Printing.WkhtmltopdfPath,
			DefaultTimeout: cfg.Printing.RenderTimeout,
			Logger:         log,
		})
	default:
		pdfRenderer, err = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
	}
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Initialize application services
	orderService := procurementapp.NewOrderService(orderRepo, receiptRepo)
	receiptService := stockapp.NewReceiptService(receiptRepo, locationRepo, inventoryEngine, stockapp.ReceiptSettings{
		SourceLocationCode:      cfg.Clearance.SourceLocationCode,
		DestinationLocationCode: cfg.Clearance.DestinationLocationCode,
	})
	registryService := clearanceapp.NewRegistryService(orderRepo, documentRepo, receiptRepo, locationRepo, clearanceapp.RegistrySettings{
		SourceLocationCode:      cfg.Clearance.SourceLocationCode,
		DestinationLocationCode: cfg.Clearance.DestinationLocationCode,
	})
	documentService := clearanceapp.NewDocumentService(documentRepo, orderRepo, canceller)
	reversalService := clearanceapp.NewReversalService(
		orderRepo, documentRepo, receiptRepo, invoiceRepo,
		inventoryEngine, canceller,
		clearanceapp.ReversalSettings{
			AllowedLogins: cfg.Clearance.ReversalAllowedLogins,
			NotifyLogins:  cfg.Clearance.ReversalNotifyLogins,
		},
		log,
	)
	reversalService.SetNotifier(clearanceapp.NewLogReversalNotifier(log))
	bulkValidationService := clearanceapp.NewBulkValidationService(orderRepo, documentRepo, receiptRepo, costingEngine)
	attachmentService := clearanceapp.NewAttachmentService(attachmentRepo, documentRepo, objectStorage)
	summaryService := clearanceapp.NewSummaryService(documentRepo, orderRepo, printing.NewTemplateEngine(), pdfRenderer)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, orderRepo, documentRepo)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var tokenBlacklist auth.TokenBlacklist
	if err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = blacklist
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers: Redis when available, in-memory otherwise
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Event.RequireRedis),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	idempotencyConfig := shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: true,
	}

	// Cross-context event handlers, wrapped for at-most-once processing:
	// receipt completion and cancellation drive the document links, document
	// validation marks referencing orders as cleared.
	receiptCompletedHandler := event.NewIdempotentHandler(
		clearanceapp.NewReceiptCompletedHandler(orderRepo, documentRepo, log),
		idempotencyStore, log, event.WithIdempotencyConfig(idempotencyConfig),
	)
	eventBus.Subscribe(receiptCompletedHandler)

	receiptCancelledHandler := event.NewIdempotentHandler(
		clearanceapp.NewReceiptCancelledHandler(orderRepo, documentRepo, log),
		idempotencyStore, log, event.WithIdempotencyConfig(idempotencyConfig),
	)
	eventBus.Subscribe(receiptCancelledHandler)

	documentValidatedHandler := event.NewIdempotentHandler(
		clearanceapp.NewDocumentValidatedHandler(orderRepo, invoiceRepo, log),
		idempotencyStore, log, event.WithIdempotencyConfig(idempotencyConfig),
	)
	eventBus.Subscribe(documentValidatedHandler)

	log.Info("Event handlers registered",
		zap.Strings("receipt_completed_events", receiptCompletedHandler.EventTypes()),
		zap.Strings("receipt_cancelled_events", receiptCancelledHandler.EventTypes()),
		zap.Strings("document_validated_events", documentValidatedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	receiptService.SetEventPublisher(eventBus)
	registryService.SetEventPublisher(eventBus)
	documentService.SetEventPublisher(eventBus)
	reversalService.SetEventPublisher(eventBus)
	bulkValidationService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	authService.SetEventPublisher(eventBus)

	// Business metrics on top of the meter provider
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meterProvider.Meter("aduana.business"),
			Logger:            log,
			ClearanceProvider: telemetry.NewGormClearanceMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			registryService.SetBusinessMetrics(businessMetrics)
			documentService.SetBusinessMetrics(businessMetrics)
			reversalService.SetBusinessMetrics(businessMetrics)
			bulkValidationService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize HTTP handlers
	orderHandler := handler.NewProcurementOrderHandler(orderService, registryService, reversalService, bulkValidationService)
	documentHandler := handler.NewClearanceDocumentHandler(documentService, reversalService, summaryService)
	attachmentHandler := handler.NewDocumentAttachmentHandler(attachmentService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	invoiceHandler := handler.NewVendorInvoiceHandler(invoiceService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// security headers, CORS, body limit, then optional tracing/metrics
	// and rate limiting
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("aduana.http"), true))
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint, gated and optionally protected.
	// The OpenAPI document itself is generated with swag init.
	if cfg.Swagger.Enabled {
		swaggerProtection := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddleware(jwtService))
		engine.GET("/swagger/*any", swaggerProtection, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for API routes, with public paths skipped
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// After authentication: pprof labels and span attributes carry the actor
	r.Use(middleware.Profiling())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.SpanErrorMarker())
		r.Use(middleware.TracingAttributeInjector())
	}

	// Procurement domain (orders, confirmation, reversal)
	procurementRoutes := router.NewDomainGroup("procurement", "/procurement")
	procurementRoutes.POST("/procurement-orders", orderHandler.Create)
	procurementRoutes.GET("/procurement-orders", orderHandler.List)
	procurementRoutes.POST("/procurement-orders/confirm", orderHandler.ConfirmBatch)
	procurementRoutes.POST("/procurement-orders/validate-clearances", orderHandler.ValidateClearances)
	procurementRoutes.GET("/procurement-orders/:id", orderHandler.GetByID)
	procurementRoutes.PUT("/procurement-orders/:id", orderHandler.Update)
	procurementRoutes.DELETE("/procurement-orders/:id", orderHandler.Delete)
	procurementRoutes.POST("/procurement-orders/:id/items", orderHandler.AddItem)
	procurementRoutes.DELETE("/procurement-orders/:id/items/:item_id", orderHandler.RemoveItem)
	procurementRoutes.POST("/procurement-orders/:id/confirm", orderHandler.Confirm)
	procurementRoutes.POST("/procurement-orders/:id/revert", orderHandler.Revert)
	procurementRoutes.POST("/procurement-orders/:id/cancel", orderHandler.Cancel)

	// Clearance domain (documents, cost lines, attachments, reversal)
	clearanceRoutes := router.NewDomainGroup("clearance", "/clearance")
	clearanceRoutes.GET("/clearance-documents", documentHandler.List)
	clearanceRoutes.GET("/clearance-documents/:id", documentHandler.GetByID)
	clearanceRoutes.POST("/clearance-documents/:id/cost-lines", documentHandler.AddCostLine)
	clearanceRoutes.DELETE("/clearance-documents/:id/cost-lines/:line_id", documentHandler.RemoveCostLine)
	clearanceRoutes.POST("/clearance-documents/:id/cancel", documentHandler.Cancel)
	clearanceRoutes.POST("/clearance-documents/:id/revert", documentHandler.Revert)
	clearanceRoutes.GET("/clearance-documents/:id/summary.pdf", documentHandler.SummaryPDF)
	clearanceRoutes.POST("/clearance-documents/:id/attachments", attachmentHandler.InitiateUpload)
	clearanceRoutes.GET("/clearance-documents/:id/attachments", attachmentHandler.List)
	clearanceRoutes.POST("/clearance-documents/:id/attachments/:attachment_id/confirm", attachmentHandler.ConfirmUpload)
	clearanceRoutes.DELETE("/clearance-documents/:id/attachments/:attachment_id", attachmentHandler.Delete)

	// Stock domain (receipt transactions)
	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.POST("/receipts", receiptHandler.Create)
	stockRoutes.GET("/receipts", receiptHandler.List)
	stockRoutes.GET("/receipts/:id", receiptHandler.GetByID)
	stockRoutes.POST("/receipts/:id/complete", receiptHandler.Complete)
	stockRoutes.POST("/receipts/:id/cancel", receiptHandler.Cancel)

	// Finance domain (vendor invoices)
	financeRoutes := router.NewDomainGroup("finance", "/finance")
	financeRoutes.POST("/vendor-invoices", invoiceHandler.Create)
	financeRoutes.GET("/vendor-invoices", invoiceHandler.List)
	financeRoutes.GET("/vendor-invoices/:id", invoiceHandler.GetByID)
	financeRoutes.POST("/vendor-invoices/:id/lines", invoiceHandler.AddLine)
	financeRoutes.DELETE("/vendor-invoices/:id/lines/:line_id", invoiceHandler.RemoveLine)
	financeRoutes.POST("/vendor-invoices/:id/post", invoiceHandler.Post)
	financeRoutes.POST("/vendor-invoices/:id/payments", invoiceHandler.RegisterPayment)
	financeRoutes.POST("/vendor-invoices/:id/cancel", invoiceHandler.Cancel)

	// Identity domain (authentication, users) - public routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Identity domain - user management
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(procurementRoutes).
		Register(clearanceRoutes).
		Register(stockRoutes).
		Register(financeRoutes).
		Register(authRoutes).
		Register(identityRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
