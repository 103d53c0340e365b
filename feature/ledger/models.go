package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason classifies what caused a stock movement.
type Reason string

const (
	ReasonSale       Reason = "sale"
	ReasonReturn     Reason = "return"
	ReasonReceipt    Reason = "receipt"
	ReasonCorrection Reason = "correction"
	ReasonManual     Reason = "manual"
)

// Entry is an immutable stock movement fact. Entries are created once,
// appended, and never mutated or deleted; the recorded quantity of an item
// is always the cumulative sum of its entries' deltas.
type Entry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TenantID string `gorm:"size:36;not null;index:idx_entries_tenant_sku,priority:1;index:idx_entries_tenant_run,priority:1" json:"tenant_id"`
	SKU      string `gorm:"size:64;not null;index:idx_entries_tenant_sku,priority:2" json:"sku"`

	// DeltaQuantity is the signed stock movement.
	DeltaQuantity int64 `gorm:"not null" json:"delta_quantity"`

	Reason Reason `gorm:"size:16;not null" json:"reason"`

	// SourceRunID references the reconciliation run that produced a
	// correction entry. Empty for organic movements.
	SourceRunID string `gorm:"size:36;index:idx_entries_tenant_run,priority:2" json:"source_run_id,omitempty"`

	// ActorID is the user or system that caused the movement.
	ActorID string `gorm:"size:64" json:"actor_id"`

	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
}

// TableName overrides the GORM table name.
func (Entry) TableName() string {
	return "stock_ledger_entries"
}

// Item is the catalog row for a (tenant, SKU) pair. It carries the monetary
// attributes used to value discrepancies; quantities never live here.
type Item struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TenantID string `gorm:"size:36;not null;uniqueIndex:idx_items_tenant_sku,priority:1" json:"tenant_id"`
	SKU      string `gorm:"size:64;not null;uniqueIndex:idx_items_tenant_sku,priority:2" json:"sku"`

	// UnitValue is the value of one unit in the item's native currency.
	UnitValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_value"`

	// CurrencyCode is the ISO 4217 code UnitValue is denominated in.
	CurrencyCode string `gorm:"size:3;not null" json:"currency_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (Item) TableName() string {
	return "inventory_items"
}
