package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/volunteerhub/auth-service/api/handler"
	"github.com/volunteerhub/auth-service/internal/config"
	"github.com/volunteerhub/auth-service/internal/infrastructure/monitor"
	pgInfra "github.com/volunteerhub/auth-service/internal/infrastructure/postgres"
	redisInfra "github.com/volunteerhub/auth-service/internal/infrastructure/redis"
	"github.com/volunteerhub/auth-service/internal/infrastructure/spool"
	"github.com/volunteerhub/auth-service/internal/middleware"
	"github.com/volunteerhub/auth-service/internal/router"
	"github.com/volunteerhub/auth-service/internal/security"
	"github.com/volunteerhub/auth-service/internal/services"
	"github.com/volunteerhub/auth-service/internal/services/lifecycle"
	"github.com/volunteerhub/auth-service/pkg/httpcontext"
	"github.com/volunteerhub/auth-service/pkg/logger"
	"github.com/volunteerhub/auth-service/repository/postgres"
	redisRepo "github.com/volunteerhub/auth-service/repository/redis"
	authUC "github.com/volunteerhub/auth-service/usecase/auth"
	profileUC "github.com/volunteerhub/auth-service/usecase/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	// A secret that does not decode is a startup failure, never a
	// per-request error.
	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL, zapLogger)
	if err != nil {
		zapLogger.Fatal("token manager init failed", zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	auditSpool, err := spool.Open(cfg.Audit.SpoolPath)
	if err != nil {
		zapLogger.Fatal("failed to open audit spool", zap.Error(err))
	}
	manager.Register("audit_spool", func(ctx context.Context) error {
		return auditSpool.Close()
	})

	mon := monitor.New(pool, redisClient, auditSpool, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	auditTrail := redisRepo.NewAuditTrail(
		redisClient,
		int64(cfg.Audit.MaxEntries),
		time.Duration(cfg.Audit.RetentionDays)*24*time.Hour,
	)

	auditRecorder := services.NewAuditRecorder(
		auditTrail,
		auditSpool,
		mon,
		zapLogger,
		services.RecorderConfig{
			Interval:   cfg.Audit.SyncInterval,
			BatchSize:  cfg.Audit.BatchSize,
			MaxRetries: cfg.Audit.MaxRetry,
			Retention:  time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour,
		},
	)
	auditRecorder.Start()
	manager.Register("audit_recorder", func(ctx context.Context) error {
		auditRecorder.Stop(ctx)
		return nil
	})

	hasher := security.NewBcryptHasher(0)
	authUseCase := authUC.New(userRepo, hasher, tokenManager, auditRecorder, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(tokenManager, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
