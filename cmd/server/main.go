package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/gridledger/billing/internal/application/billing"
	appcustomer "github.com/gridledger/billing/internal/application/customer"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	appmetering "github.com/gridledger/billing/internal/application/metering"
	appnotification "github.com/gridledger/billing/internal/application/notification"
	apptariff "github.com/gridledger/billing/internal/application/tariff"
	"github.com/gridledger/billing/internal/domain/billing"
	"github.com/gridledger/billing/internal/infrastructure/auth"
	"github.com/gridledger/billing/internal/infrastructure/cache"
	"github.com/gridledger/billing/internal/infrastructure/config"
	"github.com/gridledger/billing/internal/infrastructure/event"
	"github.com/gridledger/billing/internal/infrastructure/logger"
	"github.com/gridledger/billing/internal/infrastructure/persistence"
	"github.com/gridledger/billing/internal/infrastructure/storage"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"github.com/gridledger/billing/internal/interfaces/http/handler"
	"github.com/gridledger/billing/internal/interfaces/http/middleware"
	"github.com/gridledger/billing/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

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
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billing server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Tracing
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

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.App.Env == "development",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry)

	// Authentication
	blacklist, err := auth.NewTokenBlacklist(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize token blacklist", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()
	guard := appidentity.NewAccessGuard(log, metrics.AccessDenied)

	// Meter image storage
	var imageStorage appmetering.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s3Storage.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to prepare meter image bucket", zap.Error(err))
		}
		log.Info("Object storage connected", zap.String("bucket", s3Storage.Bucket()))
		imageStorage = s3Storage
	} else {
		log.Warn("Object storage disabled, meter image URLs are placeholders")
		imageStorage = storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	meterRepo := persistence.NewGormMeterRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	billingTxScope := persistence.NewGormBillingTransactionScope(db.DB)
	tariffTxScope := persistence.NewGormTariffTransactionScope(db.DB)

	// Application services
	clientService := appcustomer.NewClientService(clientRepo, guard, log)
	contractService := appcustomer.NewContractService(contractRepo, clientRepo, guard, log)
	meterService := appmetering.NewMeterService(meterRepo, contractRepo, guard, log)
	meterImageService := appmetering.NewMeterImageService(meterRepo, imageStorage, guard, appmetering.MeterImageConfig{
		UploadURLExpiry:   cfg.Storage.PresignExpiration,
		DownloadURLExpiry: cfg.Storage.PresignExpiration,
	}, log)
	readingService := appmetering.NewReadingService(readingRepo, meterRepo, guard, log)
	tariffService := apptariff.NewTariffService(tariffRepo, assignmentRepo, tariffTxScope, guard, log)
	invoiceService := appbilling.NewInvoiceService(appbilling.InvoiceServiceDeps{
		Invoices:    invoiceRepo,
		Readings:    readingRepo,
		Meters:      meterRepo,
		Assignments: assignmentRepo,
		Tariffs:     tariffRepo,
		Ownership:   billing.NewOwnershipResolver(invoiceRepo, paymentRepo, readingRepo, meterRepo, contractRepo, clientRepo),
		TxScope:     billingTxScope,
		Guard:       guard,
		Metrics:     metrics,
	}, cfg.Billing, log)
	paymentService := appbilling.NewPaymentService(paymentRepo, billingTxScope, guard, metrics, cfg.Billing, log)
	notificationService := appnotification.NewNotificationService(notificationRepo, readingRepo, paymentRepo, guard, metrics, log)
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, guard, blacklist, jwtService.Expiration(), log)

	// Event bus: notices are raised after the triggering write commits
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appnotification.NewReadingAnomalyHandler(readingRepo, meterRepo, notificationService, cfg.Notification, log))
	eventBus.Subscribe(appnotification.NewPaymentDebtHandler(notificationService, log))

	readingService.SetEventPublisher(eventBus)
	tariffService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	notificationService.SetEventPublisher(eventBus)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// HTTP
	middleware.SetupValidator()
	engine := router.NewEngine(router.Config{
		Logger:     log,
		Metrics:    metrics,
		Gatherer:   registry,
		JWTService: jwtService,
		Blacklist:  blacklist,
		Guard:      guard,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		CORSMethods:    cfg.HTTP.CORSAllowMethods,
		CORSHeaders:    cfg.HTTP.CORSAllowHeaders,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Idempotency:    idempotencyStore,
		IdempotencyTTL: cfg.HTTP.IdempotencyTTL,
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Clients:       handler.NewClientHandler(clientService),
		Contracts:     handler.NewContractHandler(contractService, tariffService),
		Meters:        handler.NewMeterHandler(meterService, meterImageService),
		Readings:      handler.NewReadingHandler(readingService),
		Tariffs:       handler.NewTariffHandler(tariffService),
		Invoices:      handler.NewInvoiceHandler(invoiceService, paymentService),
		Payments:      handler.NewPaymentHandler(paymentService),
		Users:         handler.NewUserHandler(userService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Health:        handler.NewHealthHandler(db, version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
