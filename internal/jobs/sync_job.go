package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// Synchronizer is satisfied by commands.SynchronizeCommandHandler.
type Synchronizer interface {
	Handle(ctx context.Context, command commands.SynchronizeCommand) (commands.SynchronizeResult, error)
}

// SyncJob runs the sync engine for every configured source on a cron
// schedule. A tick that is still running when the next one fires is skipped,
// and with a lease configured only one replica syncs a given source at a time.
type SyncJob struct {
	handler  Synchronizer
	sources  []task.Source
	schedule string
	lease    ports.Lease
	leaseTTL time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSyncJob takes a six-field cron expression (seconds first). lease may be nil.
func NewSyncJob(
	handler Synchronizer,
	sources []task.Source,
	schedule string,
	lease ports.Lease,
	leaseTTL time.Duration,
	logger *slog.Logger,
) *SyncJob {
	return &SyncJob{
		handler:  handler,
		sources:  sources,
		schedule: schedule,
		lease:    lease,
		leaseTTL: leaseTTL,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "sync_job"),
	}
}

func (j *SyncJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Sync job started", "schedule", j.schedule, "sources", j.sources)
	return nil
}

// Stop waits for a running tick to finish.
func (j *SyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Sync job stopped")
}

// RunOnce syncs every source in turn. Failures are logged and counted;
// they never stop the remaining sources.
func (j *SyncJob) RunOnce(ctx context.Context) {
	for _, source := range j.sources {
		j.runSource(ctx, source)
	}
}

func (j *SyncJob) runSource(ctx context.Context, source task.Source) {
	if j.lease != nil {
		release, acquired, err := j.lease.Acquire(ctx, "sync:"+source.String(), j.leaseTTL)
		if err != nil {
			// The lease only avoids duplicate work; the sync itself is idempotent.
			j.logger.WarnContext(ctx, "Sync lease unavailable, running without it", "source", source, "error", err)
		} else if !acquired {
			metrics.SyncRunsTotal.WithLabelValues("skipped").Inc()
			j.logger.DebugContext(ctx, "Sync skipped, another replica holds the lease", "source", source)
			return
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					j.logger.WarnContext(ctx, "Failed to release sync lease", "source", source, "error", err)
				}
			}()
		}
	}

	command, err := commands.NewSynchronizeCommand(source)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		j.logger.ErrorContext(ctx, "Sync job misconfigured", "source", source, "error", err)
		return
	}

	started := time.Now()
	result, err := j.handler.Handle(ctx, command)
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		j.logger.ErrorContext(ctx, "Sync job failed", "source", source, "error", err)
		return
	}

	metrics.SyncRunsTotal.WithLabelValues("ok").Inc()
	metrics.ObserveSyncResult(source.String(), result.Created, result.Canceled, len(result.Errors))
}
