package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
	"github.com/Nexconge/plataforma-sub002/internal/finance"
)

// DREWarmupJob builds the monthly report for the configured scope so the
// first dashboard request of the day hits a warm cache.
type DREWarmupJob struct {
	Finance *finance.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewDREWarmupJob wires dependencies for the warmup handler.
func NewDREWarmupJob(financeSvc *finance.Service, logger *slog.Logger) *DREWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DREWarmupJob{
		Finance: financeSvc,
		Logger:  logger,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes TaskDREWarmup tasks.
func (j *DREWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Finance == nil {
		return errors.New("dre warmup: handler not configured")
	}
	var payload DREWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ToYear == 0 {
		payload.ToYear = j.clock().Year()
	}
	if payload.FromYear == 0 {
		payload.FromYear = payload.ToYear
	}

	logger := j.Logger.With(slog.String("run_id", payload.RunID))
	started := j.clock()

	result, err := j.Finance.BuildReport(ctx, finance.ReportRequest{
		Accounts: payload.Accounts,
		Projects: payload.Projects,
		Mode:     dre.ModeMonthly,
		FromYear: payload.FromYear,
		ToYear:   payload.ToYear,
	})
	if err != nil {
		logger.Error("dre warmup failed", slog.Any("error", err))
		return err
	}

	logger.Info("dre warmup finished",
		slog.Int("contas", len(result.Accounts)),
		slog.Int("descartados", len(result.Dropped)),
		slog.Duration("elapsed", j.clock().Sub(started)))
	return nil
}
