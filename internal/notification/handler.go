package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/ec-shop/internal/email"
	"github.com/example/ec-shop/internal/infrastructure/store"
)

// Handler turns order events into customer emails. Lookups are best effort:
// a missing customer or product name degrades the email, it does not fail
// the event.
type Handler struct {
	emailService *email.Service
	customers    store.CustomerStore
	catalog      store.CatalogStore
	orders       store.OrderStore
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, customers store.CustomerStore, catalog store.CatalogStore, orders store.OrderStore) *Handler {
	return &Handler{
		emailService: emailSvc,
		customers:    customers,
		catalog:      catalog,
		orders:       orders,
	}
}

// HandleEvent processes one event from the notification topic
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.Type {
	case EventOrderPlaced:
		return h.handleOrderPlaced(ctx, event)
	case EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, event)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, event Event) error {
	var e OrderPlacedEvent
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal order.placed event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing order.placed for order %s, customer %s", e.OrderID, e.CustomerID)

	customer, err := h.customers.GetByID(ctx, e.CustomerID)
	if err != nil {
		log.Printf("[Notifier] Customer %s not available: %v", e.CustomerID, err)
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		name := item.ProductID
		if p, err := h.catalog.GetProduct(ctx, item.ProductID); err == nil {
			name = p.Name
		}
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}

	if err := h.emailService.SendOrderConfirmation(customer.Email, e.OrderID, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", customer.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", customer.Email, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, event Event) error {
	var e OrderStatusChangedEvent
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal order.status_changed event: %v", err)
		return err
	}

	order, _, err := h.orders.GetOrder(ctx, e.OrderID)
	if err != nil {
		log.Printf("[Notifier] Order %s not available: %v", e.OrderID, err)
		return nil
	}
	customer, err := h.customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		log.Printf("[Notifier] Customer %s not available: %v", order.CustomerID, err)
		return nil
	}

	statusName, err := h.orders.GetStatusName(ctx, e.StatusID)
	if err != nil {
		log.Printf("[Notifier] Status %d not available: %v", e.StatusID, err)
		return nil
	}

	if err := h.emailService.SendStatusUpdate(customer.Email, e.OrderID, statusName); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", customer.Email, err)
		return err
	}

	log.Printf("[Notifier] Status update email sent to %s for order %s", customer.Email, e.OrderID)
	return nil
}
