package tenant

import "time"

// Tenant scopes every other entity in the system. No operation ever reads
// across tenants.
type Tenant struct {
	// ID is an opaque tenant identifier (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// Name is the display name of the tenant.
	Name string `gorm:"size:120;not null" json:"name"`

	// HomeCurrency is the ISO 4217 code discrepancies are valued in.
	HomeCurrency string `gorm:"size:3;not null" json:"home_currency"`

	// ThresholdPct overrides the engine's minor/major threshold for this
	// tenant. Zero means use the engine default.
	ThresholdPct float64 `gorm:"default:0" json:"threshold_pct"`

	// AutoReconcile opts the tenant into scheduled reconciliation runs.
	AutoReconcile bool `gorm:"default:false" json:"auto_reconcile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (Tenant) TableName() string {
	return "tenants"
}
