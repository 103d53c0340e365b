package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"stock-reconciler/feature/ledger"
)

// Severity classifies how far a discrepancy strays from the expected
// quantity.
type Severity string

const (
	// SeverityMinor discrepancies are auto-corrected.
	SeverityMinor Severity = "minor"
	// SeverityMajor discrepancies require human review.
	SeverityMajor Severity = "major"
)

// Discrepancy is a detected mismatch between the ledger-derived quantity and
// the expected baseline for one SKU. It is computed per run and never
// persisted as such; minor ones become correction ledger entries instead.
type Discrepancy struct {
	// SKU identifies the item within the tenant.
	SKU string `json:"sku"`

	// Expected is the baseline quantity supplied to the run.
	Expected int64 `json:"expected"`

	// Observed is the ledger fold up to the run's asOf.
	Observed int64 `json:"observed"`

	// Delta is observed - expected.
	Delta int64 `json:"delta"`

	Severity Severity `json:"severity"`

	// UnitValue is the item's unit value in its native currency.
	UnitValue decimal.Decimal `json:"unit_value"`

	// Currency is the native currency of UnitValue.
	Currency string `json:"currency"`

	// HomeValuation is |Delta| x UnitValue converted to the tenant's home
	// currency at the run's rate snapshot.
	HomeValuation decimal.Decimal `json:"home_valuation"`
}

// Summary provides aggregate statistics for a run report.
type Summary struct {
	// ItemsScanned is the number of unique SKUs considered.
	ItemsScanned int `json:"items_scanned"`

	// MinorCount counts minor discrepancies.
	MinorCount int `json:"minor_count"`

	// MajorCount counts major discrepancies.
	MajorCount int `json:"major_count"`

	// CorrectionCount counts proposed correction entries.
	CorrectionCount int `json:"correction_count"`

	// ReviewCount counts discrepancies flagged for review.
	ReviewCount int `json:"review_count"`

	// UnvaluedCount counts discrepancies with no catalog row (or no
	// currency) to price them. Their valuation enters the total as zero,
	// so a nonzero count flags missing catalog data rather than hiding it.
	UnvaluedCount int `json:"unvalued_count"`

	// TotalValuationImpact is the sum of every discrepancy's home-currency
	// valuation.
	TotalValuationImpact decimal.Decimal `json:"total_valuation_impact"`
}

// Report is the output of one reconciliation run.
//
// Every SKU with a nonzero delta appears here, either as a proposed
// correction or as a review item; the engine never silently swallows a
// discrepancy.
type Report struct {
	TenantID     string    `json:"tenant_id"`
	AsOf         time.Time `json:"as_of"`
	HomeCurrency string    `json:"home_currency"`

	// Discrepancies lists every detected mismatch, minor and major.
	Discrepancies []Discrepancy `json:"discrepancies"`

	// Corrections are the proposed correction entries for minor
	// discrepancies. The coordinator stamps them with the run id and
	// persists them; the engine itself never writes.
	Corrections []ledger.Entry `json:"corrections"`

	Summary Summary `json:"summary"`
}

// DiscrepancyCount returns the total number of detected discrepancies.
func (r *Report) DiscrepancyCount() int {
	return len(r.Discrepancies)
}

// ReviewItems returns the discrepancies requiring human review.
func (r *Report) ReviewItems() []Discrepancy {
	var items []Discrepancy
	for _, d := range r.Discrepancies {
		if d.Severity == SeverityMajor {
			items = append(items, d)
		}
	}
	return items
}
