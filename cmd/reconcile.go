package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-reconciler/core/config"
	"stock-reconciler/core/database"
	"stock-reconciler/core/locker"
	"stock-reconciler/core/logger"
	"stock-reconciler/feature/baseline"
	"stock-reconciler/feature/events"
	"stock-reconciler/feature/ledger"
	"stock-reconciler/feature/rates"
	"stock-reconciler/feature/reconcile"
	"stock-reconciler/feature/runs"
	"stock-reconciler/feature/tenant"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileTenantID    string
	reconcileTriggeredBy string
	reconcileTimeout     time.Duration
)

// reconcileCmd runs a single reconciliation for one tenant and waits for
// the outcome. It talks to the database directly, so it works without the
// server running; locks and events stay in-process.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation for a tenant and wait for the result",
	Long: `Runs a single reconciliation for the given tenant against the configured
database and exchange rate provider, waits for it to finish, and reports
the outcome.

Examples:
  # Reconcile one tenant
  stock-reconciler reconcile --tenant 4f9c2b7e-8a1d-4c3e-9f6b-2d8e5a7c1b3f

  # With a custom actor recorded on the run
  stock-reconciler reconcile --tenant <id> --triggered-by audit-team`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileTenantID, "tenant", "", "Tenant id to reconcile (required)")
	reconcileCmd.Flags().StringVar(&reconcileTriggeredBy, "triggered-by", "cli", "Actor recorded on the run")
	reconcileCmd.Flags().DurationVar(&reconcileTimeout, "timeout", 5*time.Minute, "How long to wait for the run to finish")
	_ = reconcileCmd.MarkFlagRequired("tenant")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	gateway := rates.NewHTTPGateway(cfg.Rates)
	emitter := &events.MemoryEmitter{}

	tenantStore := tenant.NewGormStore(db)
	ledgerStore := ledger.NewGormStore(db)
	runStore := runs.NewGormStore(db)
	provider := baseline.NewGormProvider(db)

	engine := reconcile.NewEngine(ledgerStore, provider, gateway, l, cfg.Engine)
	coordinator := runs.NewCoordinator(runStore, tenantStore, ledgerStore, engine,
		locker.NewMemoryLocker(), emitter, nil, l, cfg.Runs)

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	run, err := coordinator.StartRun(ctx, reconcileTenantID, reconcileTriggeredBy, runs.SourceManual)
	if errors.Is(err, tenant.ErrNotFound) {
		return fmt.Errorf("unknown tenant %s", reconcileTenantID)
	}
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	l.Info("Run started", zap.String("run_id", run.RunID), zap.String("tenant_id", run.TenantID))

	final, err := waitForRun(ctx, runStore, run.RunID)
	if err != nil {
		return err
	}

	if len(emitter.Published()) > 0 {
		payload := emitter.Published()[0]
		l.Info("Reconciliation result",
			zap.String("status", payload.Status),
			zap.Int("discrepancies", payload.DiscrepancyCount),
			zap.Int("minor", payload.MinorCount),
			zap.Int("major", payload.MajorCount),
			zap.Int("corrections", payload.CorrectionCount),
			zap.String("valuation_impact", payload.TotalValuationImpact.String()),
			zap.String("currency", payload.HomeCurrency),
		)
	}

	if final.Status == runs.StatusFailed {
		return fmt.Errorf("run %s failed after %d attempt(s): %s", final.RunID, final.Attempts, final.FailureReason)
	}

	l.Info("Run completed", zap.String("run_id", final.RunID), zap.Int("attempts", final.Attempts))
	return nil
}

// waitForRun polls until the run reaches a terminal state.
func waitForRun(ctx context.Context, store runs.Store, runID string) (*runs.Run, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for run %s", runID)
		case <-ticker.C:
			run, err := store.Get(ctx, runID)
			if err != nil {
				return nil, fmt.Errorf("failed to poll run %s: %w", runID, err)
			}
			if run.Status.Terminal() {
				return run, nil
			}
		}
	}
}
