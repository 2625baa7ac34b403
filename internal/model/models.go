package model

import "time"

// BasketLine is one product entry in a customer's basket. Basket lines are
// mutable right up until checkout; a successful checkout deletes them all.
type BasketLine struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
}

// SnapshotLine is a basket line joined with live catalog state at the moment
// a checkout attempt starts. It is computed per attempt and never persisted.
type SnapshotLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Available   bool    `json:"available"`
}

// DiscountCode is a percentage discount. RemainingUses of -1 means unlimited.
type DiscountCode struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Percent       float64 `json:"percent"`
	Stackable     bool    `json:"stackable"`
	RemainingUses int     `json:"remaining_uses"`
	Active        bool    `json:"active"`
}

// Order is the immutable result of a checkout. PricePaid is fixed at
// creation; only StatusID changes afterwards.
type Order struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customer_id"`
	ShippingAddressID string    `json:"shipping_address_id"`
	PricePaid         float64   `json:"price_paid"`
	PlacedOn          time.Time `json:"placed_on"`
	StatusID          int       `json:"status_id"`
}

// OrderLine is a permanent price snapshot of one ordered product.
type OrderLine struct {
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderStatus rows are an open set maintained administratively, not a
// compile-time enum.
type OrderStatus struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ShippingAddress struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
