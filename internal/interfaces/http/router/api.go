package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/auth"
	"github.com/estatebook/backend/internal/infrastructure/config"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/handler"
	"github.com/estatebook/backend/internal/interfaces/http/middleware"
)

// multipartOverhead is added to the document size limit for form boundaries and fields
const multipartOverhead int64 = 1 << 20

// Dependencies are the collaborators the HTTP API is assembled from
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	JWT         *auth.JWTService
	Idempotency shared.IdempotencyStore // nil disables duplicate suppression
	Meter       metric.Meter            // nil disables HTTP metrics

	Bookings *handler.BookingHandler
	Reports  *handler.ReportHandler
	System   *handler.SystemHandler
}

// New builds the gin engine with the middleware chain and every API route
func New(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	httpMetrics, err := middleware.HTTPMetrics(deps.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	security := middleware.DefaultSecurityConfig()
	if cfg.IsProduction() {
		security = middleware.ProductionSecurityConfig()
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger, middleware.AbortInternal),
		middleware.SpanErrorMarker(),
		httpMetrics,
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(security),
	)

	engine.GET("/health", deps.System.Health)
	engine.GET("/ready", deps.System.Ready)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	api := NewRouter(engine, WithMiddleware(
		middleware.Authenticate(deps.JWT, deps.Logger),
		middleware.TracingAttributeInjector(),
	))
	for _, g := range []*DomainGroup{bookingRoutes(deps), reportRoutes(deps), paymentRoutes(deps), systemRoutes(deps)} {
		api.Register(g)
		for _, route := range g.Routes(APIPrefix) {
			deps.Logger.Debug("Route registered",
				zap.String("group", route.Group),
				zap.String("method", route.Method),
				zap.String("path", route.Path),
			)
		}
	}
	api.Setup()

	return engine, nil
}

func bookingRoutes(deps Dependencies) *DomainGroup {
	h := deps.Bookings
	jsonLimit := middleware.BodyLimit(deps.Config.HTTP.MaxBodySize)
	uploadLimit := middleware.BodyLimit(uploadBodyLimit(deps.Config))
	idempotent := idempotency(deps)

	g := NewDomainGroup("bookings", "/bookings")
	g.GET("", h.List).
		POST("", jsonLimit, idempotent, h.Create).
		GET("/export", h.Export).
		GET("/by-number/:number", h.GetByNumber).
		GET("/:id", h.Get).
		PUT("/:id", jsonLimit, h.Update).
		POST("/:id/cancel", jsonLimit, h.Cancel).
		GET("/:id/payments", deps.Reports.PaymentHistory).
		POST("/:id/documents", uploadLimit, h.AddDocument).
		PUT("/:id/documents/:documentId", uploadLimit, h.UpdateDocument)

	g.Group("installments", "/:id/installments").
		PUT("/status", jsonLimit, h.UpdateInstallmentStatus).
		PUT("/batch", jsonLimit, idempotent, h.BatchUpdateInstallments).
		PUT("/:number/notes", jsonLimit, h.UpdateInstallmentNotes).
		PUT("/:number/late-fee", jsonLimit, h.ApplyLateFee).
		POST("/:number/proof", uploadLimit, h.UploadInstallmentProof).
		GET("/:number/documents", h.ListInstallmentDocuments)
	return g
}

func reportRoutes(deps Dependencies) *DomainGroup {
	h := deps.Reports
	g := NewDomainGroup("reports", "/reports")
	g.GET("/installments/pending", h.PendingInstallments).
		GET("/installments/overdue", h.OverdueInstallments).
		GET("/payments/unreconciled", h.UnreconciledPayments).
		GET("/payments/summary", h.PaymentSummary)
	return g
}

func paymentRoutes(deps Dependencies) *DomainGroup {
	return NewDomainGroup("payments", "/payments").
		POST("/:id/reconcile", deps.Reports.Reconcile)
}

func systemRoutes(deps Dependencies) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", deps.System.GetSystemInfo)
}

// uploadBodyLimit leaves room above the document limit so oversized files are
// rejected by the size check with a precise message.
func uploadBodyLimit(cfg *config.Config) int64 {
	limit := cfg.Upload.MaxSize
	if limit <= 0 || limit > booking.MaxDocumentSize {
		limit = booking.MaxDocumentSize
	}
	return limit + multipartOverhead
}

func idempotency(deps Dependencies) gin.HandlerFunc {
	if deps.Idempotency == nil || !deps.Config.Idempotency.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  deps.Idempotency,
		TTL:    deps.Config.Idempotency.TTL,
		Logger: deps.Logger,
	})
}
