package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/ec-shop/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	PlacedOrders []model.Order
	PlacedLines  [][]model.OrderLine
}

func (m *mockNotifier) OrderPlaced(order model.Order, lines []model.OrderLine) {
	m.PlacedOrders = append(m.PlacedOrders, order)
	m.PlacedLines = append(m.PlacedLines, lines)
}

type coordinatorFixture struct {
	coordinator *Coordinator
	baskets     *mocks.MockBasketStore
	addresses   *mocks.MockAddressStore
	orders      *mocks.MockOrderStore
	notifier    *mockNotifier
}

func newCoordinatorFixture() *coordinatorFixture {
	baskets := mocks.NewMockBasketStore()
	addresses := mocks.NewMockAddressStore()
	orders := mocks.NewMockOrderStore()
	orders.Basket = baskets
	notifier := &mockNotifier{}
	return &coordinatorFixture{
		coordinator: NewCoordinator(baskets, addresses, orders, notifier),
		baskets:     baskets,
		addresses:   addresses,
		orders:      orders,
		notifier:    notifier,
	}
}

func (f *coordinatorFixture) seedBasket(lines ...model.SnapshotLine) {
	f.baskets.Snapshot = lines
	for _, l := range lines {
		f.baskets.Lines = append(f.baskets.Lines, model.BasketLine{
			CustomerID: "cust-1", ProductID: l.ProductID, Quantity: l.Quantity,
		})
		f.orders.Stock[l.ProductID] = l.Quantity + 10
	}
}

func (f *coordinatorFixture) seedAddress() {
	f.addresses.Addresses = append(f.addresses.Addresses, model.ShippingAddress{ID: "addr-1", CustomerID: "cust-1"})
}

// ============================================
// Place Order Tests
// ============================================

func TestCoordinator_PlaceOrder_Success(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", ProductName: "Widget", Quantity: 2, UnitPrice: 10.00, Available: true})
	f.orders.Stock["p1"] = 5
	f.orders.DiscountUses["d1"] = 3

	discounts := []model.DiscountCode{{ID: "d1", Code: "TEN", Percent: 10, RemainingUses: 3, Active: true}}

	orderID, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", discounts)

	require.Equal(t, ResultOK, result)
	require.NotEmpty(t, orderID)

	// Order row
	require.Len(t, f.orders.Orders, 1)
	placed := f.orders.Orders[0]
	assert.Equal(t, orderID, placed.ID)
	assert.Equal(t, "cust-1", placed.CustomerID)
	assert.Equal(t, "addr-1", placed.ShippingAddressID)
	assert.Equal(t, 18.00, placed.PricePaid)
	assert.False(t, placed.PlacedOn.IsZero())

	// Order lines captured the snapshot price
	require.Len(t, f.orders.Lines, 1)
	assert.Equal(t, orderID, f.orders.Lines[0].OrderID)
	assert.Equal(t, "p1", f.orders.Lines[0].ProductID)
	assert.Equal(t, 2, f.orders.Lines[0].Quantity)
	assert.Equal(t, 10.00, f.orders.Lines[0].UnitPrice)

	// Discount spent and usage recorded
	assert.Equal(t, 2, f.orders.DiscountUses["d1"])
	require.Len(t, f.orders.DiscountUsages, 1)
	assert.Equal(t, orderID, f.orders.DiscountUsages[0].OrderID)
	assert.Equal(t, "d1", f.orders.DiscountUsages[0].DiscountID)

	// Stock decremented, basket cleared
	assert.Equal(t, 3, f.orders.Stock["p1"])
	assert.Equal(t, []string{"cust-1"}, f.orders.ClearedBaskets)
	assert.Empty(t, f.baskets.Lines)

	// Notified exactly once
	require.Len(t, f.notifier.PlacedOrders, 1)
	assert.Equal(t, orderID, f.notifier.PlacedOrders[0].ID)
	require.Len(t, f.notifier.PlacedLines, 1)
	assert.Len(t, f.notifier.PlacedLines[0], 1)
}

func TestCoordinator_PlaceOrder_UnlimitedDiscountStaysUnlimited(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 50.00, Available: true})
	f.orders.DiscountUses["d1"] = -1

	discounts := []model.DiscountCode{{ID: "d1", Code: "FOREVER", Percent: 5, RemainingUses: -1, Active: true}}

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", discounts)

	require.Equal(t, ResultOK, result)
	assert.Equal(t, -1, f.orders.DiscountUses["d1"])
	// Usage row is still written for unlimited codes
	assert.Len(t, f.orders.DiscountUsages, 1)
}

func TestCoordinator_PlaceOrder_AddressNotOwned(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true})
	f.addresses.Addresses = []model.ShippingAddress{{ID: "addr-1", CustomerID: "someone-else"}}

	orderID, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultAddressInvalid, result)
	assert.Empty(t, orderID)
	assert.Empty(t, f.orders.Orders)
	assert.Empty(t, f.notifier.PlacedOrders)
}

func TestCoordinator_PlaceOrder_AddressCheckError(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.addresses.OwnedByErr = errors.New("connection refused")

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, f.orders.Orders)
}

func TestCoordinator_PlaceOrder_EmptyBasket(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()

	orderID, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultBasketInvalid, result)
	assert.Empty(t, orderID)
	assert.Empty(t, f.orders.Orders)
}

func TestCoordinator_PlaceOrder_SnapshotError(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.baskets.SnapshotErr = errors.New("connection refused")

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, f.orders.Orders)
}

// ============================================
// Basket Pruning Tests
// ============================================

func TestCoordinator_PlaceOrder_PrunesUnavailableLines(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(
		model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true},
		model.SnapshotLine{ProductID: "p2", Quantity: 5, UnitPrice: 3.00, Available: false},
		model.SnapshotLine{ProductID: "p3", Quantity: 1, UnitPrice: 7.00, Available: false},
	)

	orderID, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultBasketInvalid, result)
	assert.Empty(t, orderID)
	assert.Empty(t, f.orders.Orders)

	// Only the unavailable lines are deleted; p1 stays.
	require.Len(t, f.baskets.DeleteLineCalls, 2)
	assert.Equal(t, mocks.DeleteLineCall{CustomerID: "cust-1", ProductID: "p2"}, f.baskets.DeleteLineCalls[0])
	assert.Equal(t, mocks.DeleteLineCall{CustomerID: "cust-1", ProductID: "p3"}, f.baskets.DeleteLineCalls[1])
	require.Len(t, f.baskets.Lines, 1)
	assert.Equal(t, "p1", f.baskets.Lines[0].ProductID)
}

func TestCoordinator_PlaceOrder_PruneFailureIsTolerated(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: false})
	f.baskets.DeleteLineErr = errors.New("connection refused")

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	// Pruning is best effort; the attempt still reports the invalid basket.
	assert.Equal(t, ResultBasketInvalid, result)
	assert.Len(t, f.baskets.DeleteLineCalls, 1)
}

// ============================================
// Commit Failure Tests
// ============================================

func TestCoordinator_PlaceOrder_StockConflictRollsBack(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(
		model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true},
		model.SnapshotLine{ProductID: "p2", Quantity: 3, UnitPrice: 5.00, Available: true},
	)
	// p2 was bought out between snapshot and commit.
	f.orders.Stock["p2"] = 1
	f.orders.DiscountUses["d1"] = 3

	discounts := []model.DiscountCode{{ID: "d1", Code: "TEN", Percent: 10, RemainingUses: 3, Active: true}}

	orderID, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", discounts)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, orderID)

	// Nothing survives the rollback: no order, no lines, no usage, stock and
	// uses untouched.
	assert.Empty(t, f.orders.Orders)
	assert.Empty(t, f.orders.Lines)
	assert.Empty(t, f.orders.DiscountUsages)
	assert.Equal(t, 11, f.orders.Stock["p1"])
	assert.Equal(t, 1, f.orders.Stock["p2"])
	assert.Equal(t, 3, f.orders.DiscountUses["d1"])

	// The basket is untouched and was not pruned.
	assert.Len(t, f.baskets.Lines, 2)
	assert.Empty(t, f.baskets.DeleteLineCalls)

	// No notification for a failed attempt.
	assert.Empty(t, f.notifier.PlacedOrders)
}

func TestCoordinator_PlaceOrder_ExhaustedDiscountRollsBack(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true})
	// The last use was spent between resolve and commit.
	f.orders.DiscountUses["d1"] = 0

	discounts := []model.DiscountCode{{ID: "d1", Code: "TEN", Percent: 10, RemainingUses: 1, Active: true}}

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", discounts)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, f.orders.Orders)
	assert.Empty(t, f.orders.DiscountUsages)
	assert.Equal(t, 0, f.orders.DiscountUses["d1"])
	assert.Len(t, f.baskets.Lines, 1)
	assert.Empty(t, f.notifier.PlacedOrders)
}

func TestCoordinator_PlaceOrder_InsertFailureRollsBack(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true})
	f.orders.InsertLineErr = errors.New("connection refused")

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, f.orders.Orders)
	assert.Empty(t, f.orders.Lines)
	assert.Len(t, f.baskets.Lines, 1)
	assert.Empty(t, f.notifier.PlacedOrders)
}

func TestCoordinator_PlaceOrder_BeginFailure(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true})
	f.orders.BeginErr = errors.New("connection refused")

	_, result := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultError, result)
	assert.Empty(t, f.notifier.PlacedOrders)
}

// ============================================
// Concurrency Tests
// ============================================

func TestCoordinator_PlaceOrder_ParallelAttemptsNeverOversell(t *testing.T) {
	ctx := context.Background()

	// One shared order store guards the stock counter; every attempt wants
	// one unit of a product with only three in stock.
	orders := mocks.NewMockOrderStore()
	orders.Stock["p1"] = 3

	const attempts = 10
	results := make([]Result, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		customerID := fmt.Sprintf("cust-%d", i)
		addressID := fmt.Sprintf("addr-%d", i)

		baskets := mocks.NewMockBasketStore()
		baskets.Snapshot = []model.SnapshotLine{
			{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true},
		}
		addresses := mocks.NewMockAddressStore()
		addresses.Addresses = []model.ShippingAddress{{ID: addressID, CustomerID: customerID}}

		coordinator := NewCoordinator(baskets, addresses, orders, nil)

		wg.Add(1)
		go func(i int, c *Coordinator, customerID, addressID string) {
			defer wg.Done()
			_, results[i] = c.PlaceOrder(ctx, customerID, addressID, nil)
		}(i, coordinator, customerID, addressID)
	}
	wg.Wait()

	var succeeded int
	for _, r := range results {
		if r == ResultOK {
			succeeded++
		}
	}

	// Exactly stock-many attempts may commit; the rest conflict and roll
	// back, and the counter never goes negative.
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, orders.Stock["p1"])
	assert.Len(t, orders.Orders, 3)
	assert.Len(t, orders.Lines, 3)
}

// ============================================
// Retry Behavior Tests
// ============================================

func TestCoordinator_PlaceOrder_ImmediateRetryFailsValidationGate(t *testing.T) {
	f := newCoordinatorFixture()
	ctx := context.Background()

	f.seedAddress()
	f.seedBasket(model.SnapshotLine{ProductID: "p1", Quantity: 1, UnitPrice: 10.00, Available: true})

	_, first := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)
	require.Equal(t, ResultOK, first)

	// The commit cleared the basket, so the retry stops at the gate.
	orderID, second := f.coordinator.PlaceOrder(ctx, "cust-1", "addr-1", nil)

	assert.Equal(t, ResultBasketInvalid, second)
	assert.Empty(t, orderID)
	assert.Len(t, f.orders.Orders, 1)
	assert.Len(t, f.notifier.PlacedOrders, 1)
}
