package checkout

import (
	"context"
	"log"
	"time"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/google/uuid"
)

// Result is the outcome of a checkout attempt.
type Result int

const (
	ResultOK Result = iota
	ResultBasketInvalid
	ResultAddressInvalid
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultBasketInvalid:
		return "BASKET_INVALID"
	case ResultAddressInvalid:
		return "SHIPPING_ADDRESS_INVALID"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Notifier announces a placed order. Implementations must not block the
// checkout path; delivery failures are tolerated.
type Notifier interface {
	OrderPlaced(order model.Order, lines []model.OrderLine)
}

// Coordinator turns a customer's basket into an immutable, paid order.
//
// The attempt walks a fixed sequence: address ownership check, basket
// validation gate, pricing, then a single commit transaction that inserts
// the order and all its side effects. The one deliberate effect on a failed
// attempt is basket pruning at the validation gate: unavailable lines are
// deleted so the customer does not keep seeing stale items. Pruning is
// best-effort and happens before the transaction begins; a failure inside
// the commit rolls everything back without touching the basket.
//
// The coordinator is not idempotent. A successful commit clears the basket,
// so an immediate retry fails the validation gate with ResultBasketInvalid;
// that gate is the only guard against double orders.
type Coordinator struct {
	baskets   store.BasketStore
	addresses store.AddressStore
	orders    store.OrderStore
	notifier  Notifier
}

func NewCoordinator(baskets store.BasketStore, addresses store.AddressStore, orders store.OrderStore, notifier Notifier) *Coordinator {
	return &Coordinator{
		baskets:   baskets,
		addresses: addresses,
		orders:    orders,
		notifier:  notifier,
	}
}

// PlaceOrder runs one checkout attempt. Discount codes must already be
// resolved and stacking-checked by the caller (see Resolver); the
// coordinator trusts its input here and only spends the codes on commit.
func (c *Coordinator) PlaceOrder(ctx context.Context, customerID, addressID string, discounts []model.DiscountCode) (string, Result) {
	owned, err := c.addresses.OwnedBy(ctx, addressID, customerID)
	if err != nil {
		log.Printf("[Checkout] Address check failed for customer %s: %v", customerID, err)
		return "", ResultError
	}
	if !owned {
		return "", ResultAddressInvalid
	}

	snapshot, err := c.baskets.GetSnapshot(ctx, customerID)
	if err != nil {
		log.Printf("[Checkout] Snapshot failed for customer %s: %v", customerID, err)
		return "", ResultError
	}
	if len(snapshot) == 0 {
		return "", ResultBasketInvalid
	}
	if unavailable := unavailableLines(snapshot); len(unavailable) > 0 {
		c.pruneBasket(ctx, customerID, unavailable)
		return "", ResultBasketInvalid
	}

	order := model.Order{
		ID:                uuid.New().String(),
		CustomerID:        customerID,
		ShippingAddressID: addressID,
		PricePaid:         RoundCurrency(DiscountedTotal(snapshot, discounts)),
		PlacedOn:          time.Now(),
	}

	lines := make([]model.OrderLine, len(snapshot))
	for i, l := range snapshot {
		lines[i] = model.OrderLine{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: RoundCurrency(l.UnitPrice),
		}
	}

	err = c.orders.WithinTx(ctx, func(tx store.OrderTx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for _, d := range discounts {
			if err := tx.DecrementDiscountUses(ctx, d.ID); err != nil {
				return err
			}
			if err := tx.InsertDiscountUsage(ctx, order.ID, d.ID); err != nil {
				return err
			}
		}
		for _, l := range lines {
			if err := tx.InsertLine(ctx, l); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
				return err
			}
		}
		return tx.ClearBasket(ctx, customerID)
	})
	if err != nil {
		log.Printf("[Checkout] Commit failed for customer %s (%s): %v", customerID, classify(err), err)
		return "", ResultError
	}

	if c.notifier != nil {
		c.notifier.OrderPlaced(order, lines)
	}
	return order.ID, ResultOK
}

// pruneBasket removes unavailable lines so they do not resurface on the next
// attempt. Best effort: a delete failure is logged and skipped, available
// lines are never touched.
func (c *Coordinator) pruneBasket(ctx context.Context, customerID string, unavailable []model.SnapshotLine) {
	for _, l := range unavailable {
		if err := c.baskets.DeleteLine(ctx, customerID, l.ProductID); err != nil {
			log.Printf("[Checkout] Failed to prune basket line %s for customer %s: %v", l.ProductID, customerID, err)
		}
	}
}

func unavailableLines(snapshot []model.SnapshotLine) []model.SnapshotLine {
	var out []model.SnapshotLine
	for _, l := range snapshot {
		if !l.Available {
			out = append(out, l)
		}
	}
	return out
}
