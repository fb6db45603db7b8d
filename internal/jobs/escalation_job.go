package jobs

import (
	"context"
	"log/slog"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/metrics"

	"github.com/robfig/cron/v3"
)

// EscalationJob runs the unresponsive-shop watchdog. Every 30 seconds it
// sweeps active fulfillments and escalates the ones whose shop has gone
// quiet past the thresholds.
type EscalationJob struct {
	handler commands.EscalateOrdersCommandHandler
	metrics *metrics.Metrics
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewEscalationJob creates the escalation watchdog job.
func NewEscalationJob(
	handler commands.EscalateOrdersCommandHandler,
	m *metrics.Metrics,
	logger *slog.Logger,
) *EscalationJob {
	return &EscalationJob{
		handler: handler,
		metrics: m,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "escalation_job"),
	}
}

// Start begins the escalation sweep every 30 seconds.
func (j *EscalationJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewEscalateOrdersCommand()

		// The sweep applies per-order transactions, so the result is
		// meaningful even when some orders failed.
		result, err := j.handler.Handle(ctx, cmd)

		j.metrics.ForceCallsPlaced.Add(float64(result.ForceCallsPlaced))
		j.metrics.ReroutesStarted.Add(float64(result.ReroutesStarted))
		if result.Conflicts > 0 {
			j.metrics.VersionConflicts.Add(float64(result.Conflicts))
		}

		if err != nil {
			j.logger.ErrorContext(ctx, "Escalation sweep had failures",
				"failures", result.Failures, "error", err)
		}

		if result.ForceCallsPlaced > 0 || result.ReroutesStarted > 0 || result.ReroutesResumed > 0 {
			j.logger.InfoContext(ctx, "Escalation sweep finished",
				"force_calls", result.ForceCallsPlaced,
				"reroutes", result.ReroutesStarted,
				"reroutes_resumed", result.ReroutesResumed,
				"conflicts", result.Conflicts)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Escalation job started (running every 30 seconds)")
	return nil
}

// Stop stops the escalation job.
func (j *EscalationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Escalation job stopped")
}
