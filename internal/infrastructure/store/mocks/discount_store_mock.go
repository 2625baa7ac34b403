package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// MockDiscountStore is an in-memory DiscountStore for testing.
type MockDiscountStore struct {
	mu    sync.Mutex
	Codes map[string]model.DiscountCode // keyed by code string

	// Failure injection: codes whose lookup fails with a storage error
	LookupErr      error
	FailingLookups map[string]bool

	// Recorded calls
	GetByCodeCalls []string
}

func NewMockDiscountStore() *MockDiscountStore {
	return &MockDiscountStore{
		Codes:          make(map[string]model.DiscountCode),
		FailingLookups: make(map[string]bool),
	}
}

// Add seeds a discount code.
func (m *MockDiscountStore) Add(dc model.DiscountCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Codes[dc.Code] = dc
}

func (m *MockDiscountStore) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByCodeCalls = append(m.GetByCodeCalls, code)
	if m.FailingLookups[code] {
		return nil, m.LookupErr
	}
	dc, ok := m.Codes[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := dc
	return &out, nil
}

func (m *MockDiscountStore) Create(ctx context.Context, dc *model.DiscountCode) error {
	m.Add(*dc)
	return nil
}

func (m *MockDiscountStore) List(ctx context.Context) ([]model.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DiscountCode, 0, len(m.Codes))
	for _, dc := range m.Codes {
		out = append(out, dc)
	}
	return out, nil
}
