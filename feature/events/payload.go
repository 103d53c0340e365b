package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payload is the completion event published when a reconciliation run
// reaches a terminal state. Consumers (alerting, dashboards, downstream
// sync) key off the tenant, so partitioning uses the tenant id.
type Payload struct {
	RunID    string `json:"run_id"`
	TenantID string `json:"tenant_id"`

	// Status is the run's terminal status, "completed" or "failed".
	Status string `json:"status"`

	DiscrepancyCount int `json:"discrepancy_count"`
	MinorCount       int `json:"minor_count"`
	MajorCount       int `json:"major_count"`
	CorrectionCount  int `json:"correction_count"`

	TotalValuationImpact decimal.Decimal `json:"total_valuation_impact"`
	HomeCurrency         string          `json:"home_currency"`

	FinishedAt time.Time `json:"finished_at"`
}
