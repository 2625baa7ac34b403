package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop/internal/model"
)

// MockAddressStore is an in-memory AddressStore for testing.
type MockAddressStore struct {
	mu        sync.Mutex
	Addresses []model.ShippingAddress

	// Failure injection
	OwnedByErr error

	// Recorded calls
	OwnedByCalls []OwnedByCall
}

// OwnedByCall records parameters passed to OwnedBy
type OwnedByCall struct {
	AddressID  string
	CustomerID string
}

func NewMockAddressStore() *MockAddressStore {
	return &MockAddressStore{}
}

func (m *MockAddressStore) OwnedBy(ctx context.Context, addressID, customerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OwnedByCalls = append(m.OwnedByCalls, OwnedByCall{AddressID: addressID, CustomerID: customerID})
	if m.OwnedByErr != nil {
		return false, m.OwnedByErr
	}
	for _, a := range m.Addresses {
		if a.ID == addressID && a.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAddressStore) ListByCustomer(ctx context.Context, customerID string) ([]model.ShippingAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ShippingAddress
	for _, a := range m.Addresses {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAddressStore) Create(ctx context.Context, a *model.ShippingAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Addresses = append(m.Addresses, *a)
	return nil
}
