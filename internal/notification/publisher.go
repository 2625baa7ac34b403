package notification

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/ec-shop/internal/infrastructure/kafka"
	"github.com/example/ec-shop/internal/model"
	"github.com/google/uuid"
)

// Publisher emits order events to the notification topic. All methods are
// fire-and-forget: they return immediately and a publish failure only gets
// logged, never propagated back into the checkout or status paths.
type Publisher struct {
	producer *kafka.Producer
	timeout  time.Duration
}

func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		timeout:  5 * time.Second,
	}
}

// OrderPlaced implements checkout.Notifier.
func (p *Publisher) OrderPlaced(order model.Order, lines []model.OrderLine) {
	items := make([]PlacedItem, len(lines))
	for i, l := range lines {
		items[i] = PlacedItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	p.publish(order.ID, EventOrderPlaced, OrderPlacedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.PricePaid,
		Items:      items,
	})
}

// OrderStatusChanged implements order.Notifier.
func (p *Publisher) OrderStatusChanged(orderID string, statusID int) {
	p.publish(orderID, EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:  orderID,
		StatusID: statusID,
	})
}

func (p *Publisher) publish(key, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Notify] Failed to marshal %s event: %v", eventType, err)
		return
	}
	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.producer.Publish(ctx, key, event); err != nil {
			log.Printf("[Notify] Failed to publish %s for %s: %v", eventType, key, err)
		}
	}()
}
