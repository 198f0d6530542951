// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and managed through JobManager:
//
//	syncJob := jobs.NewSyncJob(syncHandler, sources, "0 */1 * * * *", lease, time.Minute, logger)
//	jobManager := jobs.NewJobManager(syncJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # SyncJob
//
// Runs the sync engine once per configured intake source on every tick.
// Overlapping ticks are skipped. With a Redis lease configured, a replica
// that cannot take the per-source lease skips that source; when Redis is
// unreachable the sync runs anyway, since re-running it is a no-op for
// tasks that already exist.
//
// # Error Handling
//
// Per-order failures are reported in the run result and counted in the
// dispatch_sync_errors_total metric. A run that fails as a whole is logged
// and counted as dispatch_sync_runs_total{outcome="failed"}.
package jobs
