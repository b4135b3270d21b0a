package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const orphanAuditJob = "orphan-item-audit"

// OrphanCounter counts line items whose order no longer exists
type OrphanCounter interface {
	CountOrphanItems(ctx context.Context) (int64, error)
}

// AuditReporter receives the result of each audit run
type AuditReporter interface {
	SetOrphanItems(count int64)
	AuditFailed()
}

// JobScheduler runs the periodic store audits
type JobScheduler struct {
	scheduler gocron.Scheduler
	counter   OrphanCounter
	reporter  AuditReporter
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler that audits orphan items every
// auditInterval, starting immediately. A zero interval registers no job.
func NewJobScheduler(counter OrphanCounter, reporter AuditReporter, auditInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		counter:   counter,
		reporter:  reporter,
		jobs:      make(map[string]gocron.Job),
	}

	if auditInterval > 0 {
		job, err := scheduler.NewJob(
			gocron.DurationJob(auditInterval),
			gocron.NewTask(js.RunOrphanAudit, context.Background()),
			gocron.WithName(orphanAuditJob),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return nil, fmt.Errorf("create %s job: %w", orphanAuditJob, err)
		}
		js.jobs[orphanAuditJob] = job
	}

	slog.Info("registered background jobs", "count", len(js.jobs))
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	slog.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler and waits for running jobs
func (js *JobScheduler) Stop() error {
	slog.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

// RunOrphanAudit is the scheduled form of AuditOrphans
func (js *JobScheduler) RunOrphanAudit(ctx context.Context) error {
	_, err := js.AuditOrphans(ctx)
	return err
}

// AuditOrphans counts order items left without an order. A store with
// foreign keys always reports zero; anything else means a write escaped its
// transaction or the schema lacks the constraint.
func (js *JobScheduler) AuditOrphans(ctx context.Context) (int64, error) {
	count, err := js.counter.CountOrphanItems(ctx)
	if err != nil {
		js.reporter.AuditFailed()
		slog.ErrorContext(ctx, "orphan item audit failed", "error", err)
		return 0, err
	}

	js.reporter.SetOrphanItems(count)
	if count > 0 {
		slog.WarnContext(ctx, "order items without an order found", "count", count)
	} else {
		slog.DebugContext(ctx, "orphan item audit clean")
	}
	return count, nil
}
