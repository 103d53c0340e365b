package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a tenant id references no known tenant.
var ErrNotFound = errors.New("tenant: not found")

// Store provides read access to tenants.
type Store interface {
	// Get returns the tenant for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Tenant, error)
	// ListAutoReconcile returns tenants opted into scheduled runs.
	ListAutoReconcile(ctx context.Context) ([]Tenant, error)
}

// GormStore is the database-backed tenant store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a tenant store on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant %s: %w", id, err)
	}
	return &t, nil
}

func (s *GormStore) ListAutoReconcile(ctx context.Context) ([]Tenant, error) {
	var tenants []Tenant
	err := s.db.WithContext(ctx).Where("auto_reconcile = ?", true).Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-reconcile tenants: %w", err)
	}
	return tenants, nil
}

// MemoryStore is an in-memory tenant store for tests and the one-shot CLI.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
}

// NewMemoryStore creates a store seeded with the given tenants.
func NewMemoryStore(tenants ...Tenant) *MemoryStore {
	m := &MemoryStore{tenants: make(map[string]Tenant, len(tenants))}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) ListAutoReconcile(ctx context.Context) ([]Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Tenant
	for _, t := range s.tenants {
		if t.AutoReconcile {
			result = append(result, t)
		}
	}
	return result, nil
}

var _ Store = (*GormStore)(nil)
var _ Store = (*MemoryStore)(nil)
