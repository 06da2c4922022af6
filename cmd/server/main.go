package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/habitkit/backend/api/handler"
	"github.com/habitkit/backend/internal/config"
	"github.com/habitkit/backend/internal/infrastructure/journal"
	"github.com/habitkit/backend/internal/infrastructure/monitor"
	pgInfra "github.com/habitkit/backend/internal/infrastructure/postgres"
	redisInfra "github.com/habitkit/backend/internal/infrastructure/redis"
	"github.com/habitkit/backend/internal/middleware"
	"github.com/habitkit/backend/internal/router"
	"github.com/habitkit/backend/internal/services"
	"github.com/habitkit/backend/internal/services/lifecycle"
	"github.com/habitkit/backend/pkg/httpcontext"
	"github.com/habitkit/backend/pkg/logger"
	"github.com/habitkit/backend/repository/postgres"
	redisRepo "github.com/habitkit/backend/repository/redis"
	habitUC "github.com/habitkit/backend/usecase/habit"
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

	journalStore, err := journal.Open(cfg.Journal.Path, "journal")
	if err != nil {
		zapLogger.Fatal("failed to open mutation journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	pruner := services.NewJournalPruner(journalStore, zapLogger, services.PrunerConfig{
		Interval:  cfg.Journal.PruneInterval,
		Retention: cfg.Journal.Retention,
	})
	pruner.Start()
	manager.Register("journal_pruner", func(ctx context.Context) error {
		pruner.Stop(ctx)
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	completionRepo := postgres.NewCompletionRepository(pool)
	taskLocker := redisRepo.NewTaskLocker(redisClient, cfg.Redis.LockTTL)
	recorder := services.NewJournalRecorder(journalStore)

	habitUseCase := habitUC.New(taskRepo, scheduleRepo, completionRepo, taskLocker, recorder, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:     apiHandler.NewTaskHandler(habitUseCase, ctxAdapter, zapLogger),
		Calendar: apiHandler.NewCalendarHandler(habitUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, journalStore, ctxAdapter, zapLogger),
	}

	accessLog := middleware.AccessLog(zapLogger)
	r := router.New(handlers, accessLog)

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
