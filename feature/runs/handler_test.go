package runs

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stock-reconciler/core/locker"
	"stock-reconciler/feature/baseline"
	"stock-reconciler/feature/events"
	"stock-reconciler/feature/ledger"
	"stock-reconciler/feature/rates"
	"stock-reconciler/feature/reconcile"
	"stock-reconciler/feature/tenant"
)

func setupTestApp(t *testing.T) (*fiber.App, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	tenants := tenant.NewMemoryStore(tenant.Tenant{
		ID:           coordTenantID,
		Name:         "Acme Retail",
		HomeCurrency: "USD",
	})
	ledgerStore := ledger.NewMemoryStore()
	engine := reconcile.NewEngine(
		ledgerStore,
		&baseline.Static{Counts: map[string]map[string]int64{}},
		&rates.Static{Rates: map[string]decimal.Decimal{}},
		zap.NewNop(),
		reconcile.Config{ThresholdPct: 5},
	)
	coordinator := NewCoordinator(store, tenants, ledgerStore, engine, locker.NewMemoryLocker(),
		&events.MemoryEmitter{}, nil, zap.NewNop(), Config{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = coordinator.Stop(ctx)
	})

	app := fiber.New()
	handler := NewHandler(coordinator, store, zap.NewNop())
	handler.RegisterRoutes(app)
	return app, store
}

func TestHandleTriggerRun_Accepted(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/tenants/"+coordTenantID+"/runs",
		strings.NewReader(`{"triggered_by":"ops@acme"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var run Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, coordTenantID, run.TenantID)
	assert.Equal(t, "ops@acme", run.TriggeredBy)
	assert.Equal(t, SourceManual, run.Source)
}

func TestHandleTriggerRun_UnknownTenant(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/tenants/no-such-tenant/runs",
		strings.NewReader(`{"triggered_by":"ops@acme"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleTriggerRun_MissingTriggeredBy(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/tenants/"+coordTenantID+"/runs",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleTriggerRun_ConflictOnLiveRun(t *testing.T) {
	app, store := setupTestApp(t)

	// A live run blocks new triggers regardless of who started it.
	require.NoError(t, store.Create(context.Background(), &Run{
		RunID:     "live-run",
		TenantID:  coordTenantID,
		Status:    StatusRunning,
		CreatedAt: time.Now(),
	}))

	req := httptest.NewRequest("POST", "/tenants/"+coordTenantID+"/runs",
		strings.NewReader(`{"triggered_by":"ops@acme"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleGetRun(t *testing.T) {
	app, store := setupTestApp(t)

	require.NoError(t, store.Create(context.Background(), &Run{
		RunID:     "run-1",
		TenantID:  coordTenantID,
		Status:    StatusCompleted,
		CreatedAt: time.Now(),
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/run-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var run Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, StatusCompleted, run.Status)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListRuns(t *testing.T) {
	app, store := setupTestApp(t)

	now := time.Now()
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, store.Create(context.Background(), &Run{
			RunID:     id,
			TenantID:  coordTenantID,
			Status:    StatusCompleted,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/tenants/"+coordTenantID+"/runs?limit=2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		TenantID string `json:"tenant_id"`
		Runs     []Run  `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "run-c", body.Runs[0].RunID, "newest run comes first")
}
