package jobs

import (
	"fmt"
	"log/slog"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/core/ports"
	"giftflow/internal/metrics"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	escalationJob *EscalationJob
	escrowJob     *EscrowJob
	lockJanitor   *LockJanitorJob
	outboxRelay   *OutboxRelayJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers and repositories as dependencies to wire up the
// job execution.
func NewJobManager(
	escalateHandler commands.EscalateOrdersCommandHandler,
	expireEscrowHandler commands.ExpireEscrowCommandHandler,
	locks ports.InventoryLockRepository,
	outbox ports.OutboxRepository,
	notifications ports.NotificationGateway,
	m *metrics.Metrics,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		escalationJob: NewEscalationJob(escalateHandler, m, logger),
		escrowJob:     NewEscrowJob(expireEscrowHandler, m, logger),
		lockJanitor:   NewLockJanitorJob(locks, m, logger),
		outboxRelay:   NewOutboxRelayJob(outbox, notifications, m, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	started := make([]interface{ Stop() }, 0, 4)

	for _, job := range []struct {
		name  string
		start func() error
		stop  interface{ Stop() }
	}{
		{"escalation", jm.escalationJob.Start, jm.escalationJob},
		{"escrow", jm.escrowJob.Start, jm.escrowJob},
		{"lock janitor", jm.lockJanitor.Start, jm.lockJanitor},
		{"outbox relay", jm.outboxRelay.Start, jm.outboxRelay},
	} {
		if err := job.start(); err != nil {
			// Stop already started jobs if this one fails
			for _, s := range started {
				s.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", job.name, err)
		}
		started = append(started, job.stop)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.outboxRelay.Stop()
	jm.lockJanitor.Stop()
	jm.escrowJob.Stop()
	jm.escalationJob.Stop()
}
