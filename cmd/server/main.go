package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/ledger/internal/application/balance"
	"github.com/erp/ledger/internal/application/checks"
	"github.com/erp/ledger/internal/application/parties"
	"github.com/erp/ledger/internal/application/posting"
	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/erp/ledger/internal/application/reporting"
	"github.com/erp/ledger/internal/domain/bank"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

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

	log.Info("Starting ledger service",
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

	// Initialize OpenTelemetry providers (no-ops when telemetry is disabled)
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

	// Database instrumentation
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	dbTracingCfg := telemetry.DefaultDBTracingConfig()
	dbTracingCfg.Enabled = cfg.Telemetry.Enabled
	if err := telemetry.NewDBTracingPlugin(dbTracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Posting and balance metrics
	var ledgerMetrics *telemetry.LedgerMetrics
	if meterProvider.IsEnabled() {
		ledgerMetrics, err = telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:  meterProvider.Meter("ledger"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
		}
	}
	var postingMetrics posting.Metrics
	var balanceMetrics balance.Metrics
	if ledgerMetrics != nil {
		postingMetrics = ledgerMetrics
		balanceMetrics = ledgerMetrics
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	fxRateRepo := persistence.NewGormFxRateRepository(db.DB)
	glBatchRepo := persistence.NewGormGLBatchRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	checkRepo := persistence.NewGormCheckRepository(db.DB)
	bankAccountRepo := persistence.NewGormBankAccountRepository(db.DB)
	bankStatementRepo := persistence.NewGormBankStatementRepository(db.DB)
	bankTransactionRepo := persistence.NewGormBankTransactionRepository(db.DB)
	bookPaymentRepo := persistence.NewGormBookPaymentRepository(db.DB)
	reconciliationRepo := persistence.NewGormReconciliationRepository(db.DB)
	sourceReader := persistence.NewGormSourceReader(db.DB)
	subLedgerReader := persistence.NewGormSubLedgerReader(db.DB)

	// Seed the built-in chart of accounts; existing rows are left untouched
	if err := accountRepo.SeedDefaultChart(context.Background()); err != nil {
		log.Fatal("Failed to seed chart of accounts", zap.Error(err))
	}

	chartCache := cache.NewChartCache(accountRepo)

	baseCurrency, err := valueobject.ParseCurrency(cfg.Ledger.BaseCurrency)
	if err != nil {
		log.Fatal("Invalid base currency", zap.String("currency", cfg.Ledger.BaseCurrency), zap.Error(err))
	}

	// Core ledger service and the balance aggregator
	ledgerService := ledger.NewService(chartCache, glBatchRepo)
	aggregator := balance.NewAggregator(
		partyRepo,
		sourceReader,
		subLedgerReader,
		fxRateRepo,
		balanceMetrics,
		log,
		baseCurrency,
	)

	// Posting engine driven by domain events
	engine := posting.NewEngine(
		ledgerService,
		sourceReader,
		fxRateRepo,
		aggregator,
		postingMetrics,
		log,
		posting.Config{
			BaseCurrency:        baseCurrency,
			CostFallbackEnabled: cfg.Ledger.CostFallbackEnabled,
			CostFallbackRatio:   decimal.NewFromFloat(cfg.Ledger.CostFallbackRatio),
		},
	)

	eventBus := event.NewInMemoryEventBus(log)
	posting.RegisterHandlers(eventBus, engine, log)
	log.Info("Posting handlers registered")

	// Application services
	partyService := parties.NewService(partyRepo, eventBus, log)
	checkService := checks.NewService(checkRepo, eventBus, log)
	matcher := bank.NewMatcher(bank.MatchTolerance{
		AmountCents: int(cfg.Matcher.AmountToleranceCents),
		DateDays:    cfg.Matcher.DateWindowDays,
	})
	reconciliationService := reconciliation.NewService(
		bankAccountRepo,
		bankStatementRepo,
		bankTransactionRepo,
		bookPaymentRepo,
		reconciliationRepo,
		matcher,
		log,
	)
	reportingService := reporting.NewService(ledgerService, partyRepo)

	// HTTP handlers
	accountHandler := handler.NewAccountHandler(accountRepo, chartCache)
	fxRateHandler := handler.NewFXRateHandler(fxRateRepo)
	partyHandler := handler.NewPartyHandler(partyService)
	checkHandler := handler.NewCheckHandler(checkService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService, bankAccountRepo)
	reportingHandler := handler.NewReportingHandler(reportingService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engineHTTP := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engineHTTP.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
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
	// 7. Tracing/Metrics - Observability (if enabled)
	// 8. RateLimit - Apply rate limiting (if enabled)
	engineHTTP.Use(middleware.RequestID())
	engineHTTP.Use(logger.Recovery(log))
	engineHTTP.Use(logger.GinMiddleware(log))
	engineHTTP.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engineHTTP.Use(middleware.CORSWithConfig(corsConfig))

	engineHTTP.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engineHTTP.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engineHTTP.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engineHTTP.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engineHTTP.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engineHTTP, router.WithAPIVersion("v1"))
	r.Register(accountHandler).
		Register(fxRateHandler).
		Register(partyHandler).
		Register(checkHandler).
		Register(reconciliationHandler).
		Register(reportingHandler)
	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engineHTTP.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engineHTTP,
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
