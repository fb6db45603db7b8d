// Package jobs provides scheduled background tasks for the gift order
// orchestrator.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic operations the order lifecycle depends on.
//
// # Available Jobs
//
// 1. EscalationJob - Runs every 30 seconds to escalate orders whose shop
// has gone quiet: a reminder call first, then rerouting.
// 2. EscrowJob - Runs every minute to expire paid orders whose settlement
// never arrived and trigger their refunds.
// 3. LockJanitorJob - Runs every minute to remove expired inventory
// reservations.
// 4. OutboxRelayJob - Runs every 5 seconds to deliver staged status
// notifications and mark them published.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(escalateHandler, expireEscrowHandler,
//		lockRepo, outboxRepo, notificationGateway, m, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Sweep failures are logged and retried on the next tick
// - The outbox relay stops a batch at the first delivery failure to keep
// per-order notification ordering
// - Failed job starts will stop any already running jobs
package jobs
