package baseline

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StockCount is one recorded physical count of a SKU.
type StockCount struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TenantID string `gorm:"size:36;not null;index:idx_counts_tenant_sku,priority:1" json:"tenant_id"`
	SKU      string `gorm:"size:64;not null;index:idx_counts_tenant_sku,priority:2" json:"sku"`

	// CountedQuantity is the quantity observed during the physical count.
	CountedQuantity int64 `gorm:"not null" json:"counted_quantity"`

	// CountedAt is when the count was taken.
	CountedAt time.Time `gorm:"not null;index" json:"counted_at"`

	// CountedBy is the user who recorded the count.
	CountedBy string `gorm:"size:64" json:"counted_by"`
}

// TableName overrides the GORM table name.
func (StockCount) TableName() string {
	return "stock_counts"
}

// GormProvider derives the expected baseline from the latest physical count
// per SKU at or before the run's asOf.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider creates a provider on db.
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

func (p *GormProvider) Expected(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error) {
	var counts []StockCount
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND counted_at <= ?", tenantID, asOf).
		Order("counted_at, id").
		Find(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stock counts for tenant %s: %w", tenantID, err)
	}

	// Later counts win: the fold keeps the most recent count per SKU.
	expected := make(map[string]int64)
	for _, c := range counts {
		expected[c.SKU] = c.CountedQuantity
	}
	return expected, nil
}

var _ Provider = (*GormProvider)(nil)
