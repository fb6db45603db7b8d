package jobs

import (
	"context"
	"log/slog"
	"time"

	"giftflow/internal/core/ports"
	"giftflow/internal/metrics"

	"github.com/robfig/cron/v3"
)

// relayBatchSize bounds one relay tick. Messages beyond the batch are picked
// up on the next tick.
const relayBatchSize = 100

// OutboxRelayJob delivers staged status notifications. Every 5 seconds it
// reads unpublished outbox messages in occurrence order, pushes them to the
// notification gateway and marks them published. Delivery is at-least-once:
// a crash after the push but before the mark re-sends the message, and the
// receiver deduplicates by message id.
type OutboxRelayJob struct {
	outbox        ports.OutboxRepository
	notifications ports.NotificationGateway
	metrics       *metrics.Metrics
	cron          *cron.Cron
	logger        *slog.Logger
}

// NewOutboxRelayJob creates the outbox relay.
func NewOutboxRelayJob(
	outbox ports.OutboxRepository,
	notifications ports.NotificationGateway,
	m *metrics.Metrics,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		outbox:        outbox,
		notifications: notifications,
		metrics:       m,
		cron:          cron.New(cron.WithSeconds()),
		logger:        logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay every 5 seconds.
func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		j.relayOnce(context.Background())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every 5 seconds)")
	return nil
}

// Stop stops the relay job.
func (j *OutboxRelayJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

func (j *OutboxRelayJob) relayOnce(ctx context.Context) {
	pending, err := j.outbox.GetUnpublished(ctx, relayBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox read failed", "error", err)
		return
	}

	for _, message := range pending {
		if err := j.notifications.NotifyStatusChange(ctx, message); err != nil {
			// Stop the batch at the first failure to preserve ordering
			// per order; the next tick retries from here.
			j.logger.ErrorContext(ctx, "Notification delivery failed",
				"message_id", message.ID.String(),
				"order_id", message.OrderID.String(),
				"error", err)
			return
		}

		if err := j.outbox.MarkPublished(ctx, message.ID, time.Now().UTC()); err != nil {
			j.logger.ErrorContext(ctx, "Outbox publish mark failed",
				"message_id", message.ID.String(),
				"error", err)
			return
		}

		j.metrics.NotificationsSent.Inc()
	}
}
