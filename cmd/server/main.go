package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/estatebook/backend/internal/infrastructure/auth"
	"github.com/estatebook/backend/internal/infrastructure/cache"
	"github.com/estatebook/backend/internal/infrastructure/config"
	"github.com/estatebook/backend/internal/infrastructure/event"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/infrastructure/migration"
	"github.com/estatebook/backend/internal/infrastructure/persistence"
	"github.com/estatebook/backend/internal/infrastructure/storage"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
	"github.com/estatebook/backend/internal/interfaces/http/handler"
	"github.com/estatebook/backend/internal/interfaces/http/router"
	"github.com/estatebook/backend/migrations"
	"go.uber.org/zap"

	_ "github.com/estatebook/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Estatebook Brokerage API
//	@version		1.0
//	@description	Installment schedules, payment proofs and reconciliation for property bookings

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes first so the OTEL log bridge can be teed into the main logger
	telCfg := telemetry.ConfigFrom(cfg, version)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, cfg.Telemetry.LogsEnabled, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, cfg.Telemetry.MetricsEnabled, cfg.Telemetry.MetricsInterval, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	log := bootLog
	if loggerProvider.IsEnabled() {
		log, err = logger.New(&logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cfg.Log.Output,
		}, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	queryLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.Open(ctx, &cfg.Database, queryLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry), log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	docStorage, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewBookingAuditHandler(log))

	bookingMetrics, err := telemetry.NewBookingMetrics(meterProvider.Meter("estatebook/booking"))
	if err != nil {
		log.Fatal("Failed to create booking metrics", zap.Error(err))
	}

	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)

	serviceOpts := []bookingapp.Option{
		bookingapp.WithLogger(log),
		bookingapp.WithUploadLimit(cfg.Upload.MaxSize),
		bookingapp.WithDefaultCurrency(valueobject.Currency(cfg.Booking.DefaultCurrency)),
		bookingapp.WithEventPublisher(eventBus),
		bookingapp.WithMetrics(bookingMetrics),
	}
	bookingService := bookingapp.NewBookingService(bookingRepo, paymentRepo, docStorage, serviceOpts...)
	exportService := bookingapp.NewExportService(bookingRepo, serviceOpts...)
	reportService := bookingapp.NewReportService(bookingRepo, paymentRepo, serviceOpts...)

	engine, err := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		JWT:         auth.NewJWTService(cfg.JWT),
		Idempotency: idempotencyStore,
		Meter:       meterProvider.Meter("estatebook/http"),
		Bookings:    handler.NewBookingHandler(bookingService, exportService),
		Reports:     handler.NewReportHandler(reportService),
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
			"database": db,
		}),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// migrateUp applies the embedded migrations on the server's own connection
func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared pool
	return m.Up()
}
