package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	eventapp "github.com/storefront/backend/internal/application/event"
	"github.com/storefront/backend/internal/application/export"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/storefront/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Storefront Backend API
//	@version		1.0
//	@description	Product catalog backend for the storefront: products, manufacturers, media uploads, datasheet export and a live change feed.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/storefront/backend
//	@contact.email	support@storefront.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

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

	log.Info("Starting Storefront Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracing (no-op when disabled)
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

	// Ship log records to the collector alongside console output
	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logsProvider, logger.ParseLevel(cfg.Log.Level))
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	}

	// Continuous profiling via Pyroscope (no-op when disabled)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilingEnabled,
		ServerAddress:       cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName:     cfg.Telemetry.ServiceName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilingEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

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

	// Attach DB observability plugins
	if cfg.Telemetry.Enabled {
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("storefront/db"), telemetry.DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize DB metrics", zap.Error(err))
		} else if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Warn("Failed to register DB metrics plugin", zap.Error(err))
		}
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register DB tracing plugin", zap.Error(err))
		}
	}

	// Shared Redis client for the token blacklist, read cache and invalidation.
	// When Redis is unreachable the server degrades to in-memory fallbacks.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-memory token blacklist and uncached reads", zap.Error(err))
		_ = redisClient.Close()
		redisClient = nil
	}
	pingCancel()
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	manufacturerRepo := persistence.NewGormManufacturerRepository(db.DB)
	imageRepo := persistence.NewGormProductImageRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	summaryRepo := persistence.NewCatalogSummaryRepository(db)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and the transactional outbox publisher.
	// Services write events to the outbox in the same transaction as the
	// state change; the processor below relays them onto the in-process bus.
	eventSerializer := event.NewEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(outboxRepo, eventSerializer)

	// Object storage backend for product media
	var objectStorage catalogapp.ObjectStorageService
	switch cfg.Storage.Backend {
	case "s3":
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignTTL),
		)
		if err != nil {
			log.Fatal("Failed to initialize S3 object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	default:
		localStorage, err := storage.NewLocalObjectStorage(cfg.Storage.LocalDir, "/media")
		if err != nil {
			log.Fatal("Failed to initialize local object storage", zap.Error(err))
		}
		objectStorage = localStorage
	}
	log.Info("Object storage initialized", zap.String("backend", cfg.Storage.Backend))

	// Tiered product read cache (in-process L1 + Redis L2)
	var productCache catalog.ProductCache
	var cacheStatsFn func() float64
	if cfg.Cache.Enabled && redisClient != nil {
		cacheConfig := catalog.CacheConfig{
			ProductTTL:    cfg.Cache.ProductTTL,
			MemoryTTL:     cfg.Cache.MemoryTTL,
			PubSubChannel: cfg.Cache.InvalidationChannel,
		}
		l1 := cache.NewInMemoryProductCache(
			cache.WithInMemoryConfig(cacheConfig),
			cache.WithInMemoryLogger(log),
		)
		l2 := cache.NewRedisProductCacheWithClient(redisClient,
			cache.WithCacheConfig(cacheConfig),
			cache.WithCacheLogger(log),
		)
		invalidator := cache.NewRedisCacheInvalidatorWithClient(redisClient,
			cache.WithInvalidatorChannel(cfg.Cache.InvalidationChannel),
			cache.WithInvalidatorLogger(log),
		)
		tiered := cache.NewTieredProductCache(l1, l2, invalidator,
			cache.WithTieredConfig(cacheConfig),
			cache.WithTieredLogger(log),
		)
		go tiered.StartInvalidationSubscription(context.Background())
		productCache = tiered
		cacheStatsFn = func() float64 { return tiered.Stats().HitRatio }
		log.Info("Product read cache enabled",
			zap.Duration("product_ttl", cfg.Cache.ProductTTL),
			zap.Duration("memory_ttl", cfg.Cache.MemoryTTL),
		)
	}

	// Business metrics
	var catalogMetrics *telemetry.CatalogMetrics
	if cfg.Telemetry.Enabled {
		catalogMetrics, err = telemetry.NewCatalogMetrics(telemetry.CatalogMetricsConfig{
			Meter:           meterProvider.Meter("storefront/catalog"),
			Logger:          log,
			CatalogProvider: telemetry.NewGormCatalogMetricsProvider(db.DB),
			CacheStatsFn:    cacheStatsFn,
		})
		if err != nil {
			log.Warn("Failed to initialize catalog metrics", zap.Error(err))
			catalogMetrics = nil
		} else {
			catalogMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute, 10)
			defer catalogMetrics.Stop()
		}
	}

	// Token blacklist for logout and forced session invalidation
	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	var authOpts []identityapp.AuthServiceOption
	if catalogMetrics != nil {
		authOpts = append(authOpts, identityapp.WithAuthMetrics(catalogMetrics))
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log, authOpts...)
	userService := identityapp.NewUserService(userRepo, log)

	// Catalog services
	var productOpts []catalogapp.ProductServiceOption
	if productCache != nil {
		productOpts = append(productOpts, catalogapp.WithProductCache(productCache))
	}
	if catalogMetrics != nil {
		productOpts = append(productOpts, catalogapp.WithProductMetrics(catalogMetrics))
	}
	productService := catalogapp.NewProductService(productRepo, manufacturerRepo, outboxPublisher, log, productOpts...)
	manufacturerService := catalogapp.NewManufacturerService(manufacturerRepo, productRepo, outboxPublisher, log)

	imageConfig := catalogapp.DefaultImageServiceConfig()
	imageConfig.MaxFileSize = cfg.Upload.MaxSize
	imageConfig.AllowedContentTypes = cfg.Upload.AllowedTypes
	imageConfig.StorageBackend = cfg.Storage.Backend
	imageConfig.UploadURLExpiry = cfg.Storage.PresignTTL
	var imageOpts []catalogapp.ImageServiceOption
	if catalogMetrics != nil {
		imageOpts = append(imageOpts, catalogapp.WithImageMetrics(catalogMetrics))
	}
	imageService := catalogapp.NewImageService(imageRepo, productRepo, objectStorage, imageConfig, log, imageOpts...)

	// PDF datasheet export
	var pdfRenderer printing.PDFRenderer
	switch cfg.Export.Renderer {
	case "chromedp":
		chromeRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Export.ChromeTimeout,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize chromedp renderer", zap.Error(err))
		}
		defer func() {
			if err := chromeRenderer.Close(); err != nil {
				log.Error("Error closing chromedp renderer", zap.Error(err))
			}
		}()
		pdfRenderer = chromeRenderer
	default:
		pdfRenderer = printing.NewHTMLRenderer(log)
	}
	datasheetService, err := export.NewDatasheetService(productRepo, manufacturerRepo, imageRepo, objectStorage, pdfRenderer, log)
	if err != nil {
		log.Fatal("Failed to initialize datasheet service", zap.Error(err))
	}

	// Outbox inspection service
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start the outbox processor for guaranteed event delivery
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Background jobs: nightly catalog summary and blacklist sweep
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: 2,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, scheduler.NewCatalogJobExecutor(db, summaryRepo, tokenBlacklist, log), log)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping job scheduler", zap.Error(err))
			}
		}()

		triggerConfig := scheduler.DefaultCronTriggerConfig()
		if hour, minute, err := scheduler.ParseDailySchedule(cfg.Scheduler.SummaryCronSchedule); err != nil {
			log.Warn("Invalid summary schedule, using default",
				zap.String("schedule", cfg.Scheduler.SummaryCronSchedule),
				zap.Error(err),
			)
		} else {
			triggerConfig.DailySummaryHour = hour
			triggerConfig.DailySummaryMinute = minute
		}
		if cfg.Scheduler.BlacklistSweep > 0 {
			triggerConfig.SweepInterval = cfg.Scheduler.BlacklistSweep
		}
		cronTrigger := scheduler.NewCronTrigger(triggerConfig, jobScheduler, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Job scheduler started",
			zap.Int("daily_summary_hour", triggerConfig.DailySummaryHour),
			zap.Duration("blacklist_sweep", triggerConfig.SweepInterval),
		)
	}

	// Live change feed: SSE stream and websocket hub subscribe to all events
	sseHandler := handler.NewEventStreamHandler(eventBus,
		handler.WithSSELogger(log),
		handler.WithSSEHeartbeat(cfg.Events.SSEHeartbeat),
	)
	if err := sseHandler.Start(); err != nil {
		log.Fatal("Failed to start SSE event stream", zap.Error(err))
	}
	defer sseHandler.Stop()

	wsHub := handler.NewEventHub(eventBus, log)
	if err := wsHub.Start(); err != nil {
		log.Fatal("Failed to start websocket hub", zap.Error(err))
	}
	defer wsHub.Stop()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	manufacturerHandler := handler.NewManufacturerHandler(manufacturerService)
	imageHandler := handler.NewImageHandler(imageService)
	datasheetHandler := handler.NewDatasheetHandler(datasheetService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler(db)
	if redisClient != nil {
		systemHandler.AddReadinessChecker("redis", redisChecker{client: redisClient})
	}

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

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Metrics/Profiling - Observability (if enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// HTTP request metrics and profiling labels
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("storefront/http"), true))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		if redisClient != nil {
			limiter = middleware.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health and readiness endpoints (outside API versioning)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// JWT middleware configuration shared by the API and Swagger protection
	jwtSkipPaths := []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	}
	if cfg.Events.AllowAnonymous {
		jwtSkipPaths = append(jwtSkipPaths, "/api/v1/events")
	}
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths:      jwtSkipPaths,
		Logger:         log,
	}
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerGroup := engine.Group("/swagger")
		swaggerGroup.Use(middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware))
		swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Websocket change feed (outside the versioned API)
	engine.GET("/ws/:client_id", wsHub.Connect)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware)

	// Auth routes (register/login/refresh are public via skip paths)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		var authLimiter middleware.Limiter
		if redisClient != nil {
			authLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		} else {
			authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		}
		authRoutes.Use(middleware.AuthRateLimit(authLimiter))
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Catalog domain (products, manufacturers, media, datasheets)
	catalogRoutes := router.NewDomainGroup("catalog", "")
	// Product routes
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.PUT("/products/:id/price", productHandler.SetPrice)
	catalogRoutes.POST("/products/:id/stock", productHandler.AdjustStock)
	catalogRoutes.PUT("/products/:id/manufacturer", productHandler.SetManufacturer)
	catalogRoutes.POST("/products/:id/publish", productHandler.Publish)
	catalogRoutes.POST("/products/:id/archive", productHandler.Archive)
	// Product media and datasheets
	catalogRoutes.GET("/products/:id/images", imageHandler.ListByProduct)
	catalogRoutes.PUT("/products/:id/images/reorder", imageHandler.Reorder)
	catalogRoutes.GET("/products/:id/sheet", datasheetHandler.Export)
	// Manufacturer routes
	catalogRoutes.POST("/manufacturers", manufacturerHandler.Create)
	catalogRoutes.GET("/manufacturers", manufacturerHandler.List)
	catalogRoutes.GET("/manufacturers/:id", manufacturerHandler.GetByID)
	catalogRoutes.PUT("/manufacturers/:id", manufacturerHandler.Update)
	catalogRoutes.DELETE("/manufacturers/:id", manufacturerHandler.Delete)
	catalogRoutes.POST("/manufacturers/:id/activate", manufacturerHandler.Activate)
	catalogRoutes.POST("/manufacturers/:id/deactivate", manufacturerHandler.Deactivate)
	// Image routes
	catalogRoutes.POST("/images/upload", imageHandler.InitiateUpload)
	catalogRoutes.POST("/images/:id/confirm", imageHandler.ConfirmUpload)
	catalogRoutes.POST("/images", imageHandler.DirectUpload)
	catalogRoutes.GET("/images/:id", imageHandler.GetByID)
	catalogRoutes.DELETE("/images/:id", imageHandler.Delete)

	// Live change feed over SSE
	eventsRoutes := router.NewDomainGroup("events", "/events")
	eventsRoutes.GET("", sseHandler.Stream)

	// User management (admin only)
	userRoutes := router.NewDomainGroup("identity", "/users")
	userRoutes.Use(middleware.RequireRole("admin"))
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)
	userRoutes.GET("/stats/count", userHandler.Count)
	userRoutes.GET("/:id", userHandler.GetByID)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.DELETE("/:id", userHandler.Delete)
	userRoutes.POST("/:id/activate", userHandler.Activate)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.POST("/:id/unlock", userHandler.Unlock)
	userRoutes.POST("/:id/reset-password", userHandler.ResetPassword)
	userRoutes.POST("/:id/force-logout", authHandler.ForceLogout)

	// System routes (info/ping public via skip paths, outbox admin only)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	outboxRoutes := systemRoutes.Group("outbox", "/outbox")
	outboxRoutes.Use(middleware.RequireRole("admin"))
	outboxRoutes.GET("/dead", outboxHandler.GetDeadLetterEntries)
	outboxRoutes.GET("/stats", outboxHandler.GetStats)
	outboxRoutes.GET("/:id", outboxHandler.GetEntry)
	outboxRoutes.POST("/:id/retry", outboxHandler.RetryDeadEntry)
	outboxRoutes.POST("/dead/retry-all", outboxHandler.RetryAllDeadEntries)

	// Register all domain groups
	r.Register(authRoutes).
		Register(catalogRoutes).
		Register(eventsRoutes).
		Register(userRoutes).
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

// redisChecker adapts a redis client to the readiness checker interface
type redisChecker struct {
	client *redis.Client
}

func (r redisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
