package ledger

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormStore is the database-backed ledger store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a ledger store on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ReadEntries(ctx context.Context, tenantID string, asOf time.Time) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND occurred_at <= ?", tenantID, asOf).
		Order("occurred_at, id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: reading entries for tenant %s: %v", ErrUnavailable, tenantID, err)
	}
	return entries, nil
}

func (s *GormStore) AppendEntries(ctx context.Context, tenantID string, batch []Entry) error {
	if len(batch) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Duplicate-run guard: a correction batch is tagged with its run id;
		// if that run already appended, the whole batch is a no-op.
		if runID := batch[0].SourceRunID; runID != "" {
			var count int64
			if err := tx.Model(&Entry{}).
				Where("tenant_id = ? AND source_run_id = ?", tenantID, runID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
		}
		return tx.Create(&batch).Error
	})
	if err != nil {
		return fmt.Errorf("%w: appending %d entries for tenant %s: %v", ErrUnavailable, len(batch), tenantID, err)
	}
	return nil
}

func (s *GormStore) ObservedQuantities(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error) {
	var sums []struct {
		SKU   string
		Total int64
	}
	err := s.db.WithContext(ctx).Model(&Entry{}).
		Select("sku, SUM(delta_quantity) AS total").
		Where("tenant_id = ? AND occurred_at <= ?", tenantID, asOf).
		Group("sku").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("%w: summing quantities for tenant %s: %v", ErrUnavailable, tenantID, err)
	}

	observed := make(map[string]int64, len(sums))
	for _, row := range sums {
		observed[row.SKU] = row.Total
	}
	return observed, nil
}

func (s *GormStore) Items(ctx context.Context, tenantID string) (map[string]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading items for tenant %s: %v", ErrUnavailable, tenantID, err)
	}

	catalog := make(map[string]Item, len(items))
	for _, item := range items {
		catalog[item.SKU] = item
	}
	return catalog, nil
}

var _ Store = (*GormStore)(nil)
