package runs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"stock-reconciler/core/locker"
	"stock-reconciler/core/logger"
	"stock-reconciler/feature/events"
	"stock-reconciler/feature/ledger"
	"stock-reconciler/feature/rates"
	"stock-reconciler/feature/reconcile"
	"stock-reconciler/feature/tenant"
)

// correctionActor stamps correction entries appended by runs.
const correctionActor = "reconciler"

// Coordinator owns the lifecycle of reconciliation runs: it admits them,
// executes them on a bounded worker pool, serializes them per tenant via
// expiring leases, retries transient failures with backoff, and publishes
// the outcome.
type Coordinator struct {
	store    Store
	tenants  tenant.Store
	ledger   ledger.Store
	engine   *reconcile.Engine
	locks    locker.Locker
	emitter  events.Emitter
	archiver *events.Archiver
	logger   *zap.Logger
	cfg      Config

	sem *semaphore.Weighted

	// runTTL is the hard per-run deadline derived from StaleAfterMinutes.
	// It cancels a wedged attempt outright; the janitor only cleans up runs
	// whose process died before it could.
	runTTL time.Duration

	// startMu makes the live-run check and run creation atomic within this
	// process. Cross-process duplicates are stopped by the tenant lease at
	// execution time.
	startMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCoordinator wires a coordinator. archiver may be nil when report
// archiving is disabled.
func NewCoordinator(
	store Store,
	tenants tenant.Store,
	ledgerStore ledger.Store,
	engine *reconcile.Engine,
	locks locker.Locker,
	emitter events.Emitter,
	archiver *events.Archiver,
	log *zap.Logger,
	cfg Config,
) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBaseMs <= 0 {
		cfg.BackoffBaseMs = 200
	}
	if cfg.BackoffCapMs < cfg.BackoffBaseMs {
		cfg.BackoffCapMs = cfg.BackoffBaseMs
	}
	if cfg.LeaseTTLSeconds <= 0 {
		cfg.LeaseTTLSeconds = 60
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:    store,
		tenants:  tenants,
		ledger:   ledgerStore,
		engine:   engine,
		locks:    locks,
		emitter:  emitter,
		archiver: archiver,
		logger:   log,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.Workers)),
		runTTL:   time.Duration(cfg.StaleAfterMinutes) * time.Minute,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the background janitor and, when enabled, the scheduler.
func (c *Coordinator) Start() {
	if c.cfg.SweepIntervalSeconds > 0 {
		c.wg.Add(1)
		go c.janitor()
	}
	if c.cfg.SchedulerEnabled && c.cfg.SchedulerIntervalMinutes > 0 {
		c.wg.Add(1)
		go c.scheduler()
	}
}

// Stop cancels in-flight runs and waits for workers to drain, up to ctx's
// deadline.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("coordinator shutdown: %w", ctx.Err())
	}
}

// StartRun admits a new run for the tenant and dispatches it to the worker
// pool. It returns ErrAlreadyRunning without creating a record when the
// tenant already has a live run, and tenant.ErrNotFound for unknown
// tenants. The returned run is in the pending state; callers poll Get for
// the outcome.
func (c *Coordinator) StartRun(ctx context.Context, tenantID, triggeredBy string, source Source) (*Run, error) {
	ten, err := c.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()

	live, err := c.store.HasLiveRun(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("check live runs for tenant %s: %w", tenantID, err)
	}
	if live {
		return nil, ErrAlreadyRunning
	}

	run := &Run{
		RunID:       uuid.NewString(),
		TenantID:    tenantID,
		TriggeredBy: triggeredBy,
		Source:      source,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := c.store.Create(ctx, run); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.execute(run.RunID, ten)

	c.logger.Info("run admitted",
		zap.String("run_id", run.RunID),
		zap.String("tenant_id", tenantID),
		zap.String("source", string(source)),
	)

	clone := *run
	return &clone, nil
}

// execute drives one run to a terminal state.
func (c *Coordinator) execute(runID string, ten *tenant.Tenant) {
	defer c.wg.Done()

	l := logger.WithRun(c.logger, runID, ten.ID)

	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		c.finishFailed(runID, ten, 0, "shut down before execution", l)
		return
	}
	defer c.sem.Release(1)

	// Hard deadline: a wedged attempt is cancelled here, not merely
	// relabelled by the janitor later.
	runCtx := c.ctx
	cancel := context.CancelFunc(func() {})
	if c.runTTL > 0 {
		runCtx, cancel = context.WithTimeout(c.ctx, c.runTTL)
	}
	defer cancel()

	leaseTTL := time.Duration(c.cfg.LeaseTTLSeconds) * time.Second
	lease, err := c.locks.Obtain(runCtx, ten.ID, leaseTTL)
	if err != nil {
		if errors.Is(err, locker.ErrNotObtained) {
			c.finishFailed(runID, ten, 0, "tenant lease held elsewhere", l)
		} else {
			c.finishFailed(runID, ten, 0, fmt.Sprintf("obtain tenant lease: %v", err), l)
		}
		return
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			l.Warn("failed to release tenant lease", zap.Error(err))
		}
	}()

	// Keep the lease alive while an attempt is in flight, so a long attempt
	// cannot silently lose the tenant to a second process.
	refreshDone := make(chan struct{})
	defer close(refreshDone)
	go func() {
		ticker := time.NewTicker(leaseTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-refreshDone:
				return
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := lease.Refresh(runCtx, leaseTTL); err != nil {
					l.Warn("failed to refresh tenant lease", zap.Error(err))
				}
			}
		}
	}()

	asOf := time.Now()
	if err := c.store.MarkRunning(runCtx, runID, asOf); err != nil {
		if errors.Is(err, ErrRunConcluded) {
			l.Warn("run was reclaimed before execution started")
		} else {
			l.Error("failed to mark run running", zap.Error(err))
		}
		return
	}

	backoff := Backoff{
		Base: time.Duration(c.cfg.BackoffBaseMs) * time.Millisecond,
		Cap:  time.Duration(c.cfg.BackoffCapMs) * time.Millisecond,
	}

	var report *reconcile.Report
	var lastErr error
	attempts := 0

	for attempts < c.cfg.MaxAttempts {
		attempts++
		if err := c.store.SetAttempts(runCtx, runID, attempts); err != nil {
			l.Warn("failed to record attempt count", zap.Error(err))
		}

		report, lastErr = c.attempt(runCtx, runID, ten, asOf)
		if lastErr == nil {
			break
		}
		if !Transient(lastErr) {
			reason := lastErr.Error()
			if errors.Is(lastErr, context.DeadlineExceeded) {
				reason = "timed out"
			}
			l.Error("run failed permanently", zap.Int("attempt", attempts), zap.Error(lastErr))
			c.finishFailed(runID, ten, attempts, reason, l)
			return
		}

		l.Warn("attempt failed, will retry", zap.Int("attempt", attempts), zap.Error(lastErr))

		if attempts == c.cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(backoff.Delay(attempts)):
		case <-runCtx.Done():
			c.finishFailed(runID, ten, attempts, "cancelled during retry backoff", l)
			return
		}
	}

	if lastErr != nil {
		c.finishFailed(runID, ten, attempts, fmt.Sprintf("retries exhausted: %v", lastErr), l)
		return
	}

	finishedAt := time.Now()
	if err := c.store.MarkCompleted(c.ctx, runID, attempts, finishedAt); err != nil {
		if errors.Is(err, ErrRunConcluded) {
			// The janitor reclaimed this run while we were computing. The
			// recorded outcome stands; discard the late result without
			// publishing. Any corrections already appended are safe: the
			// append is idempotent per run id.
			l.Warn("run was reclaimed, discarding late result")
		} else {
			l.Error("failed to mark run completed", zap.Error(err))
		}
		return
	}

	l.Info("run completed",
		zap.Int("attempts", attempts),
		zap.Int("discrepancies", report.DiscrepancyCount()),
		zap.Int("corrections", report.Summary.CorrectionCount),
	)

	c.publish(events.Payload{
		RunID:                runID,
		TenantID:             ten.ID,
		Status:               string(StatusCompleted),
		DiscrepancyCount:     report.DiscrepancyCount(),
		MinorCount:           report.Summary.MinorCount,
		MajorCount:           report.Summary.MajorCount,
		CorrectionCount:      report.Summary.CorrectionCount,
		TotalValuationImpact: report.Summary.TotalValuationImpact,
		HomeCurrency:         ten.HomeCurrency,
		FinishedAt:           finishedAt,
	}, l)
	c.archive(runID, report, l)
}

// attempt performs one reconcile-and-apply cycle. Appending corrections is
// idempotent per run id, so re-running a partially applied attempt cannot
// double-apply.
func (c *Coordinator) attempt(ctx context.Context, runID string, ten *tenant.Tenant, asOf time.Time) (*reconcile.Report, error) {
	report, err := c.engine.Reconcile(ctx, ten, asOf)
	if err != nil {
		return nil, err
	}

	if len(report.Corrections) > 0 {
		batch := make([]ledger.Entry, len(report.Corrections))
		copy(batch, report.Corrections)
		for i := range batch {
			batch[i].SourceRunID = runID
			batch[i].ActorID = correctionActor
		}
		if err := c.ledger.AppendEntries(ctx, ten.ID, batch); err != nil {
			return nil, fmt.Errorf("apply corrections: %w", err)
		}
	}

	return report, nil
}

func (c *Coordinator) finishFailed(runID string, ten *tenant.Tenant, attempts int, reason string, l *zap.Logger) {
	finishedAt := time.Now()

	// Use a fresh context: the run context may already be cancelled and the
	// terminal state must still be recorded.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.store.MarkFailed(ctx, runID, attempts, reason, finishedAt); err != nil {
		if errors.Is(err, ErrRunConcluded) {
			l.Warn("run already concluded, keeping recorded outcome", zap.String("late_reason", reason))
		} else {
			l.Error("failed to mark run failed", zap.Error(err))
		}
		return
	}

	l.Warn("run failed", zap.Int("attempts", attempts), zap.String("reason", reason))

	c.publish(events.Payload{
		RunID:        runID,
		TenantID:     ten.ID,
		Status:       string(StatusFailed),
		HomeCurrency: ten.HomeCurrency,
		FinishedAt:   finishedAt,
	}, l)
}

// publish emits the completion event. Failures are logged and swallowed:
// the run outcome is already recorded and must not change. Broker hiccups
// get a couple of quick retries before giving up.
func (c *Coordinator) publish(payload events.Payload, l *zap.Logger) {
	if c.emitter == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	for i := 0; i < 3; i++ {
		if err = c.emitter.Publish(ctx, payload); err == nil {
			return
		}
		select {
		case <-time.After(time.Duration(i+1) * time.Second):
		case <-ctx.Done():
			l.Warn("failed to publish completion event", zap.Error(err))
			return
		case <-c.ctx.Done():
			l.Warn("failed to publish completion event", zap.Error(err))
			return
		}
	}
	l.Warn("failed to publish completion event", zap.Error(err))
}

// archive stores the full report. Advisory, like publish.
func (c *Coordinator) archive(runID string, report *reconcile.Report, l *zap.Logger) {
	if c.archiver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.archiver.Archive(ctx, runID, report); err != nil {
		l.Warn("failed to archive run report", zap.Error(err))
	}
}

// janitor periodically fails runs stuck in a non-terminal state, e.g. after
// a worker crash.
func (c *Coordinator) janitor() {
	defer c.wg.Done()

	interval := time.Duration(c.cfg.SweepIntervalSeconds) * time.Second
	staleAfter := time.Duration(c.cfg.StaleAfterMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep(staleAfter)
		}
	}
}

func (c *Coordinator) sweep(staleAfter time.Duration) {
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	stale, err := c.store.StaleRunning(ctx, time.Now().Add(-staleAfter))
	if err != nil {
		c.logger.Warn("janitor sweep failed", zap.Error(err))
		return
	}

	for _, run := range stale {
		err := c.store.MarkFailed(ctx, run.RunID, run.Attempts, "timed out", time.Now())
		if errors.Is(err, ErrRunConcluded) {
			// The worker finished between the scan and the sweep.
			continue
		}
		if err != nil {
			c.logger.Warn("failed to expire stale run",
				zap.String("run_id", run.RunID), zap.Error(err))
			continue
		}
		c.logger.Warn("expired stale run",
			zap.String("run_id", run.RunID),
			zap.String("tenant_id", run.TenantID),
		)
	}
}

// scheduler periodically triggers runs for tenants that opted into
// auto-reconciliation. A tenant with a live run is skipped silently.
func (c *Coordinator) scheduler() {
	defer c.wg.Done()

	interval := time.Duration(c.cfg.SchedulerIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.triggerScheduled()
		}
	}
}

func (c *Coordinator) triggerScheduled() {
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	tenants, err := c.tenants.ListAutoReconcile(ctx)
	if err != nil {
		c.logger.Warn("scheduler could not list tenants", zap.Error(err))
		return
	}

	for _, ten := range tenants {
		_, err := c.StartRun(ctx, ten.ID, "scheduler", SourceScheduled)
		if err != nil && !errors.Is(err, ErrAlreadyRunning) {
			c.logger.Warn("scheduled run not admitted",
				zap.String("tenant_id", ten.ID), zap.Error(err))
		}
	}
}

// Transient reports whether an error is worth retrying. Ledger and rate
// gateway outages are; everything else (invalid ledger state, programming
// errors, cancellation) is not.
func Transient(err error) bool {
	return errors.Is(err, ledger.ErrUnavailable) || errors.Is(err, rates.ErrUnavailable)
}
