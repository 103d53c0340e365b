package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormStore_ReadEntriesUnavailable(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery("SELECT .* FROM `stock_ledger_entries`").
		WillReturnError(assert.AnError)

	_, err := store.ReadEntries(context.Background(), "t1", time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGormStore_ObservedQuantities(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"sku", "total"}).
		AddRow("WIDGET", 97).
		AddRow("GADGET", 10)
	mock.ExpectQuery("SELECT sku, SUM\\(delta_quantity\\) AS total FROM `stock_ledger_entries`").
		WillReturnRows(rows)

	observed, err := store.ObservedQuantities(context.Background(), "t1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"WIDGET": 97, "GADGET": 10}, observed)
}

func TestGormStore_AppendEntriesSkipsDuplicateRun(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `stock_ledger_entries`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectCommit()

	batch := []Entry{
		{SKU: "WIDGET", DeltaQuantity: 3, Reason: ReasonCorrection, SourceRunID: "run-1", OccurredAt: time.Now()},
	}
	err := store.AppendEntries(context.Background(), "t1", batch)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AppendEntriesEmptyBatch(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	// No SQL at all for an empty batch
	require.NoError(t, store.AppendEntries(context.Background(), "t1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
