package notification

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// Event is the envelope published to the notification topic.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// OrderPlacedEvent is the payload for EventOrderPlaced.
type OrderPlacedEvent struct {
	OrderID    string       `json:"order_id"`
	CustomerID string       `json:"customer_id"`
	Total      float64      `json:"total"`
	Items      []PlacedItem `json:"items"`
}

// PlacedItem is one ordered line in an OrderPlacedEvent.
type PlacedItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderStatusChangedEvent is the payload for EventOrderStatusChanged.
type OrderStatusChangedEvent struct {
	OrderID  string `json:"order_id"`
	StatusID int    `json:"status_id"`
}
