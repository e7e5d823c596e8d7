package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/Nexconge/plataforma-sub002/internal/app"
	"github.com/Nexconge/plataforma-sub002/internal/finance"
	"github.com/Nexconge/plataforma-sub002/internal/platform/cache"
	"github.com/Nexconge/plataforma-sub002/internal/platform/db"
	"github.com/Nexconge/plataforma-sub002/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, db.Config{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	repo := finance.NewRepository(pool)
	resultCache := finance.NewCache(redisClient, cfg.CacheTTL)
	financeSvc := finance.NewService(repo, resultCache, logger)
	warmup := jobs.NewDREWarmupJob(financeSvc, logger)

	cronTask, err := jobs.NewDREWarmupTask(jobs.DREWarmupPayload{
		RunID:    uuid.NewString(),
		Accounts: cfg.WarmupAccounts,
		FromYear: cfg.WarmupFromYear,
		ToYear:   cfg.WarmupToYear,
	})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDREWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: cronTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}
