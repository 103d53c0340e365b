package baseline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&StockCount{}))
	return db
}

func TestGormProvider_LatestCountWins(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	require.NoError(t, db.Create([]StockCount{
		{TenantID: "t1", SKU: "WIDGET", CountedQuantity: 90, CountedAt: now.Add(-48 * time.Hour)},
		{TenantID: "t1", SKU: "WIDGET", CountedQuantity: 100, CountedAt: now.Add(-24 * time.Hour)},
		{TenantID: "t1", SKU: "GADGET", CountedQuantity: 50, CountedAt: now.Add(-24 * time.Hour)},
	}).Error)

	p := NewGormProvider(db)
	expected, err := p.Expected(context.Background(), "t1", now)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"WIDGET": 100, "GADGET": 50}, expected)
}

func TestGormProvider_AsOfExcludesFutureCounts(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	require.NoError(t, db.Create([]StockCount{
		{TenantID: "t1", SKU: "WIDGET", CountedQuantity: 100, CountedAt: now.Add(-24 * time.Hour)},
		{TenantID: "t1", SKU: "WIDGET", CountedQuantity: 120, CountedAt: now.Add(24 * time.Hour)},
	}).Error)

	p := NewGormProvider(db)
	expected, err := p.Expected(context.Background(), "t1", now)
	require.NoError(t, err)

	assert.Equal(t, int64(100), expected["WIDGET"], "counts after asOf must not leak into the baseline")
}

func TestGormProvider_TenantIsolation(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	require.NoError(t, db.Create([]StockCount{
		{TenantID: "t1", SKU: "WIDGET", CountedQuantity: 100, CountedAt: now.Add(-time.Hour)},
		{TenantID: "t2", SKU: "WIDGET", CountedQuantity: 7, CountedAt: now.Add(-time.Hour)},
	}).Error)

	p := NewGormProvider(db)
	expected, err := p.Expected(context.Background(), "t1", now)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"WIDGET": 100}, expected)
}
