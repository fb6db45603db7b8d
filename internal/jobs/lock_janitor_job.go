package jobs

import (
	"context"
	"log/slog"
	"time"

	"giftflow/internal/core/ports"
	"giftflow/internal/metrics"

	"github.com/robfig/cron/v3"
)

// LockJanitorJob sweeps expired inventory reservations. Expired locks are
// already ignored by readers, the janitor just keeps the table small.
type LockJanitorJob struct {
	locks   ports.InventoryLockRepository
	metrics *metrics.Metrics
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewLockJanitorJob creates the inventory lock janitor.
func NewLockJanitorJob(
	locks ports.InventoryLockRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LockJanitorJob {
	return &LockJanitorJob{
		locks:   locks,
		metrics: m,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "lock_janitor_job"),
	}
}

// Start begins the janitor sweep every minute.
func (j *LockJanitorJob) Start() error {
	_, err := j.cron.AddFunc("30 * * * * *", func() {
		ctx := context.Background()

		removed, err := j.locks.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			j.logger.ErrorContext(ctx, "Lock janitor sweep failed", "error", err)
			return
		}

		if removed > 0 {
			j.metrics.LocksReaped.Add(float64(removed))
			j.logger.InfoContext(ctx, "Expired inventory locks removed", "count", removed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Lock janitor job started (running every minute)")
	return nil
}

// Stop stops the janitor job.
func (j *LockJanitorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Lock janitor job stopped")
}
