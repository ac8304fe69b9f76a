package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentflow/internal/caching"
	"rentflow/internal/config"
	"rentflow/internal/events"
	"rentflow/internal/handlers"
	"rentflow/internal/jobs"
	"rentflow/internal/jobs/background"
	"rentflow/internal/metrics"
	"rentflow/internal/repositories"
	"rentflow/internal/services"
	"rentflow/pkg/database"
	"rentflow/pkg/logger"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Bootstrap(zapcore.Lock(os.Stderr)).Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.InitLogger(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Bootstrap(zapcore.Lock(os.Stderr)).Fatal("Failed to initialise logger", zap.Error(err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(cfg.Database.URL, log); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		jwtSecret = random.String(32)
		log.Warn("JWT_SECRET not set, using a generated development secret")
	}

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient, log)
	if err := cacheSvc.Ping(ctx); err != nil {
		log.Warn("Redis unavailable, cache and sweep lock degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	documents, err := services.NewMinioDocumentStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		return err
	}
	if err := documents.EnsureBucket(ctx); err != nil {
		log.Warn("Document bucket not ready", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		publisher = kp
	} else {
		log.Info("KAFKA_BROKERS not set, lifecycle events are not published")
	}
	defer publisher.Close()

	propertyRepo := repositories.NewPropertyRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	leaseRepo := repositories.NewLeaseRepo(pool)
	maintenanceRepo := repositories.NewMaintenanceRepo(pool)
	clearanceRepo := repositories.NewClearanceRepo(pool)

	statusSvc := services.NewStatusService(propertyRepo, tenantRepo, cacheSvc, publisher, cfg.StrictTransitions, log)
	policy := services.DefaultInspectionPolicy{}
	propertySvc := services.NewPropertyService(propertyRepo, cacheSvc, log)
	tenantSvc := services.NewTenantService(tenantRepo)
	leaseSvc := services.NewLeaseService(leaseRepo, tenantRepo, propertyRepo, statusSvc, documents, publisher, log)
	maintenanceSvc := services.NewMaintenanceService(maintenanceRepo, propertyRepo, tenantRepo, statusSvc, policy, documents, publisher, log)
	clearanceSvc := services.NewClearanceService(clearanceRepo, propertyRepo, statusSvc, policy, publisher, log)

	sweep := jobs.NewLeaseSweepJob(leaseSvc, cacheSvc, cfg.Sweep.LockTTL, log)
	scheduler, err := background.NewJobScheduler(sweep.RunDailySweep, cfg.Sweep.Hour, cfg.Sweep.Minute, log)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("Scheduler shutdown failed", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(logger.Middleware(log))
	e.Use(metrics.Middleware())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	handlers.RegisterRoutes(e, &handlers.Handlers{
		Health: handlers.NewHealthHandlers(version).
			AddCheck("database", pool, true).
			AddCheck("redis", cacheSvc, false),
		Properties:  handlers.NewPropertyHandlers(propertySvc),
		Tenants:     handlers.NewTenantHandlers(tenantSvc),
		Leases:      handlers.NewLeaseHandlers(leaseSvc, log),
		Maintenance: handlers.NewMaintenanceHandlers(maintenanceSvc),
		Clearances:  handlers.NewClearanceHandlers(clearanceSvc),
		Jobs:        handlers.NewJobHandlers(sweep, scheduler, log),
	}, jwtSecret)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("version", version))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
