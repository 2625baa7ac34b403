package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop/internal/model"
)

// MockBasketStore is an in-memory BasketStore for testing.
type MockBasketStore struct {
	mu       sync.Mutex
	Snapshot []model.SnapshotLine
	Lines    []model.BasketLine

	// Failure injection
	SnapshotErr   error
	DeleteLineErr error

	// Recorded calls
	DeleteLineCalls []DeleteLineCall
}

// DeleteLineCall records parameters passed to DeleteLine
type DeleteLineCall struct {
	CustomerID string
	ProductID  string
}

func NewMockBasketStore() *MockBasketStore {
	return &MockBasketStore{}
}

func (m *MockBasketStore) GetSnapshot(ctx context.Context, customerID string) ([]model.SnapshotLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	out := make([]model.SnapshotLine, len(m.Snapshot))
	copy(out, m.Snapshot)
	return out, nil
}

func (m *MockBasketStore) GetLines(ctx context.Context, customerID string) ([]model.BasketLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BasketLine
	for _, l := range m.Lines {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MockBasketStore) UpsertLine(ctx context.Context, line model.BasketLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.Lines {
		if l.CustomerID == line.CustomerID && l.ProductID == line.ProductID {
			m.Lines[i] = line
			return nil
		}
	}
	m.Lines = append(m.Lines, line)
	return nil
}

func (m *MockBasketStore) DeleteLine(ctx context.Context, customerID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteLineCalls = append(m.DeleteLineCalls, DeleteLineCall{CustomerID: customerID, ProductID: productID})
	if m.DeleteLineErr != nil {
		return m.DeleteLineErr
	}
	for i, l := range m.Snapshot {
		if l.ProductID == productID {
			m.Snapshot = append(m.Snapshot[:i], m.Snapshot[i+1:]...)
			break
		}
	}
	for i, l := range m.Lines {
		if l.CustomerID == customerID && l.ProductID == productID {
			m.Lines = append(m.Lines[:i], m.Lines[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the mock basket, mirroring what OrderTx.ClearBasket does to
// the real table.
func (m *MockBasketStore) Clear(customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshot = nil
	var kept []model.BasketLine
	for _, l := range m.Lines {
		if l.CustomerID != customerID {
			kept = append(kept, l)
		}
	}
	m.Lines = kept
}
