package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory ledger store for tests and local runs.
// It is thread-safe and mirrors the GormStore's append-only and
// duplicate-run semantics.
type MemoryStore struct {
	mu           sync.Mutex
	entries      []Entry
	items        map[string]map[string]Item // tenant -> sku -> item
	appendedRuns map[string]struct{}        // tenant + "/" + runID
	nextID       uint
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:        make(map[string]map[string]Item),
		appendedRuns: make(map[string]struct{}),
	}
}

// SeedItems registers catalog rows for a tenant.
func (m *MemoryStore) SeedItems(tenantID string, items ...Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog, ok := m.items[tenantID]
	if !ok {
		catalog = make(map[string]Item)
		m.items[tenantID] = catalog
	}
	for _, item := range items {
		item.TenantID = tenantID
		catalog[item.SKU] = item
	}
}

func (m *MemoryStore) ReadEntries(ctx context.Context, tenantID string, asOf time.Time) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Entry
	for _, e := range m.entries {
		if e.TenantID == tenantID && !e.OccurredAt.After(asOf) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MemoryStore) AppendEntries(ctx context.Context, tenantID string, batch []Entry) error {
	if len(batch) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if runID := batch[0].SourceRunID; runID != "" {
		key := tenantID + "/" + runID
		if _, dup := m.appendedRuns[key]; dup {
			return nil
		}
		m.appendedRuns[key] = struct{}{}
	}

	for _, e := range batch {
		m.nextID++
		e.ID = m.nextID
		e.TenantID = tenantID
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *MemoryStore) ObservedQuantities(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	observed := make(map[string]int64)
	for _, e := range m.entries {
		if e.TenantID == tenantID && !e.OccurredAt.After(asOf) {
			observed[e.SKU] += e.DeltaQuantity
		}
	}
	return observed, nil
}

func (m *MemoryStore) Items(ctx context.Context, tenantID string) (map[string]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	catalog := make(map[string]Item)
	for sku, item := range m.items[tenantID] {
		catalog[sku] = item
	}
	return catalog, nil
}

var _ Store = (*MemoryStore)(nil)
