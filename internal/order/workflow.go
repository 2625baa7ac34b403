package order

import (
	"context"
	"fmt"
	"log"

	"github.com/example/ec-shop/internal/infrastructure/store"
)

// UpdateResult is the outcome of a status transition.
type UpdateResult int

const (
	StatusUpdated UpdateResult = iota
	OrderNotFound
	StatusNotFound
)

func (r UpdateResult) String() string {
	switch r {
	case StatusUpdated:
		return "OK"
	case OrderNotFound:
		return "ORDER_NOT_FOUND"
	default:
		return "STATUS_NOT_FOUND"
	}
}

// Notifier announces a status change. Implementations must not block and
// delivery failures are tolerated.
type Notifier interface {
	OrderStatusChanged(orderID string, statusID int)
}

// Workflow moves orders through an open, administratively maintained set of
// statuses. Any status can follow any other; the only precondition is that
// the target status exists.
type Workflow struct {
	orders   store.OrderStore
	notifier Notifier
}

func NewWorkflow(orders store.OrderStore, notifier Notifier) *Workflow {
	return &Workflow{orders: orders, notifier: notifier}
}

// UpdateStatus sets the order's status. A missing order and a missing status
// are reported as distinct results so the boundary can handle them
// differently.
func (w *Workflow) UpdateStatus(ctx context.Context, orderID string, statusID int) (UpdateResult, error) {
	exists, err := w.orders.StatusExists(ctx, statusID)
	if err != nil {
		return StatusNotFound, fmt.Errorf("check status %d: %w", statusID, err)
	}
	if !exists {
		return StatusNotFound, nil
	}

	updated, err := w.orders.SetStatus(ctx, orderID, statusID)
	if err != nil {
		return OrderNotFound, fmt.Errorf("update order %s: %w", orderID, err)
	}
	if !updated {
		return OrderNotFound, nil
	}

	log.Printf("[Order] Order %s moved to status %d", orderID, statusID)
	if w.notifier != nil {
		w.notifier.OrderStatusChanged(orderID, statusID)
	}
	return StatusUpdated, nil
}
