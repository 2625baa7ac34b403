package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// MockOrderStore is an in-memory OrderStore for testing. WithinTx applies
// the same semantics as the real transaction: every write the closure made
// is discarded when the closure returns an error.
type MockOrderStore struct {
	mu sync.Mutex

	Orders         []model.Order
	Lines          []model.OrderLine
	DiscountUsages []DiscountUsage
	Stock          map[string]int // product id -> stock
	DiscountUses   map[string]int // discount id -> remaining uses (-1 unlimited)
	Statuses       map[int]string // status id -> name

	// Basket is cleared through the tx, mirroring the shared table.
	Basket *MockBasketStore

	// Failure injection
	BeginErr          error
	InsertOrderErr    error
	InsertLineErr     error
	InsertUsageErr    error
	DecrementStockErr error
	ClearBasketErr    error
	SetStatusErr      error
	StatusExistsErr   error

	// Recorded calls
	StockDecrements []StockDecrement
	UsesDecrements  []string
	ClearedBaskets  []string
	SetStatusCalls  []SetStatusCall
}

// DiscountUsage records one order_discounts row
type DiscountUsage struct {
	OrderID    string
	DiscountID string
}

// StockDecrement records parameters passed to DecrementStock
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// SetStatusCall records parameters passed to SetStatus
type SetStatusCall struct {
	OrderID  string
	StatusID int
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		Stock:        make(map[string]int),
		DiscountUses: make(map[string]int),
		Statuses:     make(map[int]string),
	}
}

func (m *MockOrderStore) WithinTx(ctx context.Context, fn func(store.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BeginErr != nil {
		return m.BeginErr
	}

	before := m.snapshot()
	tx := &mockOrderTx{s: m}
	if err := fn(tx); err != nil {
		m.restore(before)
		return err
	}
	if tx.clearedCustomer != "" && m.Basket != nil {
		m.Basket.Clear(tx.clearedCustomer)
	}
	return nil
}

type txSnapshot struct {
	orders    []model.Order
	lines     []model.OrderLine
	usages    []DiscountUsage
	stock     map[string]int
	uses      map[string]int
	stockDecs []StockDecrement
	usesDecs  []string
	cleared   []string
}

func (m *MockOrderStore) snapshot() txSnapshot {
	s := txSnapshot{
		orders:    append([]model.Order(nil), m.Orders...),
		lines:     append([]model.OrderLine(nil), m.Lines...),
		usages:    append([]DiscountUsage(nil), m.DiscountUsages...),
		stock:     make(map[string]int, len(m.Stock)),
		uses:      make(map[string]int, len(m.DiscountUses)),
		stockDecs: append([]StockDecrement(nil), m.StockDecrements...),
		usesDecs:  append([]string(nil), m.UsesDecrements...),
		cleared:   append([]string(nil), m.ClearedBaskets...),
	}
	for k, v := range m.Stock {
		s.stock[k] = v
	}
	for k, v := range m.DiscountUses {
		s.uses[k] = v
	}
	return s
}

func (m *MockOrderStore) restore(s txSnapshot) {
	m.Orders = s.orders
	m.Lines = s.lines
	m.DiscountUsages = s.usages
	m.Stock = s.stock
	m.DiscountUses = s.uses
	// Call records survive the rollback; tests inspect what was attempted.
	m.StockDecrements = s.stockDecs
	m.UsesDecrements = s.usesDecs
	m.ClearedBaskets = s.cleared
}

type mockOrderTx struct {
	s               *MockOrderStore
	clearedCustomer string
}

func (t *mockOrderTx) InsertOrder(ctx context.Context, o model.Order) error {
	if t.s.InsertOrderErr != nil {
		return t.s.InsertOrderErr
	}
	t.s.Orders = append(t.s.Orders, o)
	return nil
}

func (t *mockOrderTx) InsertLine(ctx context.Context, l model.OrderLine) error {
	if t.s.InsertLineErr != nil {
		return t.s.InsertLineErr
	}
	t.s.Lines = append(t.s.Lines, l)
	return nil
}

func (t *mockOrderTx) InsertDiscountUsage(ctx context.Context, orderID, discountID string) error {
	if t.s.InsertUsageErr != nil {
		return t.s.InsertUsageErr
	}
	t.s.DiscountUsages = append(t.s.DiscountUsages, DiscountUsage{OrderID: orderID, DiscountID: discountID})
	return nil
}

func (t *mockOrderTx) DecrementDiscountUses(ctx context.Context, discountID string) error {
	t.s.UsesDecrements = append(t.s.UsesDecrements, discountID)
	uses, ok := t.s.DiscountUses[discountID]
	if !ok || uses == 0 {
		return fmt.Errorf("discount %s: %w", discountID, store.ErrStockConflict)
	}
	if uses > 0 {
		t.s.DiscountUses[discountID] = uses - 1
	}
	return nil
}

func (t *mockOrderTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	t.s.StockDecrements = append(t.s.StockDecrements, StockDecrement{ProductID: productID, Quantity: quantity})
	if t.s.DecrementStockErr != nil {
		return t.s.DecrementStockErr
	}
	stock, ok := t.s.Stock[productID]
	if !ok || stock < quantity {
		return fmt.Errorf("product %s: %w", productID, store.ErrStockConflict)
	}
	t.s.Stock[productID] = stock - quantity
	return nil
}

func (t *mockOrderTx) ClearBasket(ctx context.Context, customerID string) error {
	t.s.ClearedBaskets = append(t.s.ClearedBaskets, customerID)
	if t.s.ClearBasketErr != nil {
		return t.s.ClearBasketErr
	}
	t.clearedCustomer = customerID
	return nil
}

// Read side

func (m *MockOrderStore) GetOrder(ctx context.Context, orderID string) (*model.Order, []model.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Orders {
		if o.ID == orderID {
			out := o
			var lines []model.OrderLine
			for _, l := range m.Lines {
				if l.OrderID == orderID {
					lines = append(lines, l)
				}
			}
			return &out, lines, nil
		}
	}
	return nil, nil, store.ErrNotFound
}

func (m *MockOrderStore) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.Orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderStore) SetStatus(ctx context.Context, orderID string, statusID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetStatusCalls = append(m.SetStatusCalls, SetStatusCall{OrderID: orderID, StatusID: statusID})
	if m.SetStatusErr != nil {
		return false, m.SetStatusErr
	}
	for i, o := range m.Orders {
		if o.ID == orderID {
			m.Orders[i].StatusID = statusID
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOrderStore) StatusExists(ctx context.Context, statusID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusExistsErr != nil {
		return false, m.StatusExistsErr
	}
	_, ok := m.Statuses[statusID]
	return ok, nil
}

func (m *MockOrderStore) GetStatusName(ctx context.Context, statusID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.Statuses[statusID]
	if !ok {
		return "", store.ErrNotFound
	}
	return name, nil
}
