package jobs

import (
	"context"
	"log/slog"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/metrics"

	"github.com/robfig/cron/v3"
)

// EscrowJob runs the escrow watchdog. Every minute it expires paid orders
// whose settlement never arrived and triggers their refunds.
type EscrowJob struct {
	handler commands.ExpireEscrowCommandHandler
	metrics *metrics.Metrics
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewEscrowJob creates the escrow watchdog job.
func NewEscrowJob(
	handler commands.ExpireEscrowCommandHandler,
	m *metrics.Metrics,
	logger *slog.Logger,
) *EscrowJob {
	return &EscrowJob{
		handler: handler,
		metrics: m,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "escrow_job"),
	}
}

// Start begins the escrow expiry sweep every minute.
func (j *EscrowJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewExpireEscrowCommand()

		// The sweep applies per-order transactions, so the result is
		// meaningful even when some orders failed.
		result, err := j.handler.Handle(ctx, cmd)

		j.metrics.EscrowsExpired.Add(float64(result.Expired))
		if result.Conflicts > 0 {
			j.metrics.VersionConflicts.Add(float64(result.Conflicts))
		}

		if err != nil {
			j.logger.ErrorContext(ctx, "Escrow expiry sweep had failures",
				"failures", result.Failures, "error", err)
		}

		if result.Expired > 0 {
			j.logger.InfoContext(ctx, "Escrow expiry sweep finished",
				"expired", result.Expired,
				"conflicts", result.Conflicts)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Escrow job started (running every minute)")
	return nil
}

// Stop stops the escrow job.
func (j *EscrowJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Escrow job stopped")
}
