package router

import (
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/gridledger/billing/internal/application/identity"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/infrastructure/auth"
	"github.com/gridledger/billing/internal/infrastructure/logger"
	"github.com/gridledger/billing/internal/infrastructure/telemetry"
	"github.com/gridledger/billing/internal/interfaces/http/handler"
	"github.com/gridledger/billing/internal/interfaces/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// LoginPath is reachable without a token
const LoginPath = "/api/v1/auth/login"

// Handlers are the HTTP handlers of the billing API
type Handlers struct {
	Auth          *handler.AuthHandler
	Clients       *handler.ClientHandler
	Contracts     *handler.ContractHandler
	Meters        *handler.MeterHandler
	Readings      *handler.ReadingHandler
	Tariffs       *handler.TariffHandler
	Invoices      *handler.InvoiceHandler
	Payments      *handler.PaymentHandler
	Users         *handler.UserHandler
	Notifications *handler.NotificationHandler
	Health        *handler.HealthHandler
}

// Config is the ambient wiring of the engine
type Config struct {
	Logger      *zap.Logger
	Metrics     *telemetry.Metrics
	Gatherer    prometheus.Gatherer // served on /metrics; nil disables the endpoint
	JWTService  *auth.JWTService
	Blacklist   auth.TokenBlacklist
	Guard       middleware.ModuleGuard // nil builds one over Logger and Metrics
	Tracing     middleware.TracingConfig
	CORSOrigins []string
	CORSMethods []string // empty keeps the middleware defaults
	CORSHeaders []string // empty keeps the middleware defaults
	MaxBodySize int64
	// Idempotency deduplicates payment and invoice writes carrying an
	// Idempotency-Key header; nil disables it
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSOrigins
	if len(cfg.CORSMethods) > 0 {
		cors.AllowMethods = cfg.CORSMethods
	}
	if len(cfg.CORSHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSHeaders
	}
	guard := cfg.Guard
	if guard == nil {
		var denied *prometheus.CounterVec
		if cfg.Metrics != nil {
			denied = cfg.Metrics.AccessDenied
		}
		guard = appidentity.NewAccessGuard(log, denied)
	}
	idempotent := middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Tracing)...)
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", h.Health.Health)
	if cfg.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	r := NewRouter(engine, WithAPIMiddleware(middleware.JWTAuth(middleware.JWTConfig{
		JWTService: cfg.JWTService,
		Blacklist:  cfg.Blacklist,
		SkipPaths:  []string{LoginPath},
		Logger:     log,
	})))

	r.Register(NewResourceGroup("/auth", "", nil).
		POST("/login", h.Auth.Login).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me))

	r.Register(NewResourceGroup("/clients", identity.ModuleClients, guard).CRUD(h.Clients))
	r.Register(NewResourceGroup("/contracts", identity.ModuleContracts, guard).
		CRUD(h.Contracts).
		POST("/:id/tariff", h.Contracts.AssignTariff).
		PUT("/:id/tariff", h.Contracts.ReassignTariff).
		GET("/:id/tariff", h.Contracts.CurrentTariff).
		DELETE("/:id/tariff", h.Contracts.UnassignTariff))
	r.Register(NewResourceGroup("/meters", identity.ModuleMeters, guard).
		CRUD(h.Meters).
		GET("/:id/images/:slot", h.Meters.ImageDownloadURL).
		POST("/:id/images/:slot/upload-url", h.Meters.InitiateImageUpload).
		POST("/:id/images/:slot/confirm", h.Meters.ConfirmImageUpload))
	r.Register(NewResourceGroup("/readings", identity.ModuleReadings, guard).CRUD(h.Readings))
	r.Register(NewResourceGroup("/tariffs", identity.ModuleTariffs, guard).CRUD(h.Tariffs))
	r.Register(NewResourceGroup("/invoices", identity.ModuleInvoices, guard).
		CRUD(h.Invoices).
		POST("/issue", idempotent, h.Invoices.Issue).
		GET("/:id/ownership", h.Invoices.Ownership).
		POST("/:id/payments", idempotent, h.Invoices.RecordPayment))
	r.Register(NewResourceGroup("/payments", identity.ModulePayments, guard).
		GET("", h.Payments.List).
		POST("", idempotent, h.Payments.Create).
		GET("/:id", h.Payments.Get).
		PUT("/:id", h.Payments.Update).
		DELETE("/:id", h.Payments.Delete))
	r.Register(NewResourceGroup("/users", identity.ModuleUsers, guard).CRUD(h.Users))
	// A notice changes only by being reviewed
	r.Register(NewResourceGroup("/notifications", identity.ModuleNotifications, guard).
		GET("", h.Notifications.List).
		POST("", h.Notifications.Create).
		GET("/:id", h.Notifications.Get).
		DELETE("/:id", h.Notifications.Delete).
		POST("/:id/review", h.Notifications.Review))

	r.Setup()
	return engine
}
