package runs

import "time"

// Status is the lifecycle state of a reconciliation run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source distinguishes how a run was triggered.
type Source string

const (
	SourceManual    Source = "manual"
	SourceScheduled Source = "scheduled"
)

// Run is the persisted record of one reconciliation run. A run passes
// through pending -> running -> completed/failed and its record is never
// deleted; the history is the audit trail for corrections stamped with the
// run id.
type Run struct {
	RunID    string `gorm:"primaryKey;size:36" json:"run_id"`
	TenantID string `gorm:"size:36;not null;index:idx_runs_tenant_status,priority:1" json:"tenant_id"`

	// TriggeredBy is the user or system principal that requested the run.
	TriggeredBy string `gorm:"size:64;not null" json:"triggered_by"`

	Source Source `gorm:"size:16;not null" json:"source"`
	Status Status `gorm:"size:16;not null;index:idx_runs_tenant_status,priority:2" json:"status"`

	// FailureReason explains a failed run. Empty otherwise.
	FailureReason string `gorm:"size:255" json:"failure_reason,omitempty"`

	// Attempts is how many reconciliation attempts the run consumed.
	Attempts int `gorm:"default:0" json:"attempts"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName overrides the GORM table name.
func (Run) TableName() string {
	return "reconciliation_runs"
}
