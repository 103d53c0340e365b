package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stock-reconciler/feature/baseline"
	"stock-reconciler/feature/ledger"
	"stock-reconciler/feature/rates"
	"stock-reconciler/feature/tenant"
)

// ErrInvalidLedgerState signals the ledger contradicts itself: an observed
// quantity is below the configured negative tolerance and no correction or
// manual entry accounts for it. Runs failing with it are not retried.
var ErrInvalidLedgerState = errors.New("reconcile: invalid ledger state")

// Engine computes discrepancies between the ledger fold and the expected
// baseline for one tenant.
//
// The engine is pure with respect to the ledger: it reads entries and
// proposes corrections but never writes. Persisting corrections and
// recording run state is the coordinator's job.
type Engine struct {
	ledger   ledger.Store
	baseline baseline.Provider
	gateway  rates.Gateway
	logger   *zap.Logger
	cfg      Config
}

// NewEngine wires an engine over its collaborators.
func NewEngine(store ledger.Store, provider baseline.Provider, gateway rates.Gateway, logger *zap.Logger, cfg Config) *Engine {
	if cfg.ThresholdPct <= 0 {
		cfg.ThresholdPct = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	return &Engine{
		ledger:   store,
		baseline: provider,
		gateway:  gateway,
		logger:   logger,
		cfg:      cfg,
	}
}

// Reconcile folds the tenant's ledger up to asOf, compares it against the
// expected baseline and returns a report covering every SKU present in
// either source.
//
// Minor discrepancies yield proposed correction entries that bring the
// ledger back to the expected quantity; major ones are flagged for review
// untouched. The same ledger, baseline and rates always produce the same
// report: SKUs are processed in sorted order and rates are snapshotted once
// per currency pair.
func (e *Engine) Reconcile(ctx context.Context, ten *tenant.Tenant, asOf time.Time) (*Report, error) {
	entries, err := e.ledger.ReadEntries(ctx, ten.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("read ledger for tenant %s: %w", ten.ID, err)
	}

	observed := make(map[string]int64)
	adjusted := make(map[string]bool)
	for _, entry := range entries {
		observed[entry.SKU] += entry.DeltaQuantity
		if entry.Reason == ledger.ReasonCorrection || entry.Reason == ledger.ReasonManual {
			adjusted[entry.SKU] = true
		}
	}

	expected, err := e.baseline.Expected(ctx, ten.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("load baseline for tenant %s: %w", ten.ID, err)
	}

	catalog, err := e.ledger.Items(ctx, ten.ID)
	if err != nil {
		return nil, fmt.Errorf("load catalog for tenant %s: %w", ten.ID, err)
	}

	skus := unionKeys(observed, expected)
	threshold := e.threshold(ten)
	cache := rates.NewRunCache(e.gateway)

	report := &Report{
		TenantID:     ten.ID,
		AsOf:         asOf,
		HomeCurrency: ten.HomeCurrency,
		Summary:      Summary{TotalValuationImpact: decimal.Zero},
	}

	for i, sku := range skus {
		if i%e.cfg.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		obs := observed[sku]
		exp := expected[sku]

		if obs < -e.cfg.NegativeTolerance && !adjusted[sku] {
			return nil, fmt.Errorf("%w: tenant %s sku %s folds to %d with no recorded adjustment",
				ErrInvalidLedgerState, ten.ID, sku, obs)
		}

		report.Summary.ItemsScanned++

		delta := obs - exp
		if delta == 0 {
			continue
		}

		disc := Discrepancy{
			SKU:      sku,
			Expected: exp,
			Observed: obs,
			Delta:    delta,
			Severity: classify(delta, exp, threshold),
		}

		if item, ok := catalog[sku]; ok && item.CurrencyCode != "" {
			snap, err := cache.Rate(ctx, item.CurrencyCode, ten.HomeCurrency)
			if err != nil {
				return nil, fmt.Errorf("price discrepancy for sku %s: %w", sku, err)
			}
			disc.UnitValue = item.UnitValue
			disc.Currency = item.CurrencyCode
			disc.HomeValuation = item.UnitValue.
				Mul(decimal.NewFromInt(abs(delta))).
				Mul(snap.Rate)
		} else {
			report.Summary.UnvaluedCount++
			e.logger.Debug("discrepant sku has no catalog row, valuation skipped",
				zap.String("tenant_id", ten.ID),
				zap.String("sku", sku),
			)
		}

		report.Discrepancies = append(report.Discrepancies, disc)
		report.Summary.TotalValuationImpact = report.Summary.TotalValuationImpact.Add(disc.HomeValuation)

		switch disc.Severity {
		case SeverityMinor:
			report.Summary.MinorCount++
			report.Summary.CorrectionCount++
			report.Corrections = append(report.Corrections, ledger.Entry{
				TenantID:      ten.ID,
				SKU:           sku,
				DeltaQuantity: exp - obs,
				Reason:        ledger.ReasonCorrection,
				ActorID:       "reconciler",
				OccurredAt:    asOf,
			})
		case SeverityMajor:
			report.Summary.MajorCount++
			report.Summary.ReviewCount++
		}
	}

	e.logger.Info("reconciliation computed",
		zap.String("tenant_id", ten.ID),
		zap.Int("items_scanned", report.Summary.ItemsScanned),
		zap.Int("minor", report.Summary.MinorCount),
		zap.Int("major", report.Summary.MajorCount),
		zap.Int("unvalued", report.Summary.UnvaluedCount),
		zap.String("valuation_impact", report.Summary.TotalValuationImpact.String()),
	)

	return report, nil
}

// threshold resolves the minor/major boundary, preferring the tenant's
// override.
func (e *Engine) threshold(ten *tenant.Tenant) float64 {
	if ten.ThresholdPct > 0 {
		return ten.ThresholdPct
	}
	return e.cfg.ThresholdPct
}

// classify grades a discrepancy. A zero expected quantity has no meaningful
// relative deviation, so any delta against it is major.
func classify(delta, expected int64, thresholdPct float64) Severity {
	if expected == 0 {
		return SeverityMajor
	}

	pct := float64(abs(delta)) / float64(abs(expected)) * 100
	if pct <= thresholdPct {
		return SeverityMinor
	}
	return SeverityMajor
}

// unionKeys returns the sorted union of both maps' keys, so reports are
// deterministic regardless of map iteration order.
func unionKeys(a, b map[string]int64) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
