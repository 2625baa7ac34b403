package store

import (
	"context"
	"errors"

	"github.com/example/ec-shop/internal/model"
)

var (
	// ErrNotFound is returned when a row the caller asked for does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStockConflict is returned when a guarded in-place decrement finds
	// its counter already spent. Inside a checkout transaction this means
	// the product sold out, or a limited discount code was exhausted,
	// between snapshot and commit.
	ErrStockConflict = errors.New("insufficient stock")

	// ErrForeignKey is returned when a referenced row vanished mid-write
	// (e.g. a product deleted while its order line was being inserted).
	ErrForeignKey = errors.New("referenced row does not exist")
)

// BasketStore reads and mutates a customer's basket.
type BasketStore interface {
	// GetSnapshot joins the basket against live catalog state. Lines whose
	// product no longer exists produce no snapshot row.
	GetSnapshot(ctx context.Context, customerID string) ([]model.SnapshotLine, error)
	GetLines(ctx context.Context, customerID string) ([]model.BasketLine, error)
	UpsertLine(ctx context.Context, line model.BasketLine) error
	DeleteLine(ctx context.Context, customerID, productID string) error
}

// DiscountStore reads discount codes. Decrementing remaining uses happens
// only inside the checkout transaction, via OrderTx.
type DiscountStore interface {
	GetByCode(ctx context.Context, code string) (*model.DiscountCode, error)
	Create(ctx context.Context, dc *model.DiscountCode) error
	List(ctx context.Context) ([]model.DiscountCode, error)
}

// AddressStore manages shipping addresses.
type AddressStore interface {
	// OwnedBy reports whether the address exists and belongs to the customer.
	OwnedBy(ctx context.Context, addressID, customerID string) (bool, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.ShippingAddress, error)
	Create(ctx context.Context, a *model.ShippingAddress) error
}

// OrderTx is the set of writes available inside one checkout commit
// transaction. Every call runs against the same underlying transaction;
// any returned error aborts the whole unit.
type OrderTx interface {
	InsertOrder(ctx context.Context, o model.Order) error
	InsertLine(ctx context.Context, l model.OrderLine) error
	InsertDiscountUsage(ctx context.Context, orderID, discountID string) error
	// DecrementDiscountUses decrements remaining_uses by one, guarded by
	// remaining_uses > 0. Unlimited codes (-1) are left untouched. Returns
	// ErrStockConflict when a limited code is already exhausted.
	DecrementDiscountUses(ctx context.Context, discountID string) error
	// DecrementStock subtracts quantity in-place, guarded against going
	// negative. Returns ErrStockConflict when the guard fails.
	DecrementStock(ctx context.Context, productID string, quantity int) error
	ClearBasket(ctx context.Context, customerID string) error
}

// OrderStore owns orders and their status.
type OrderStore interface {
	// WithinTx runs fn inside a single database transaction. A non-nil error
	// from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(OrderTx) error) error

	GetOrder(ctx context.Context, orderID string) (*model.Order, []model.OrderLine, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)

	// SetStatus updates the order's status and reports whether the order
	// existed.
	SetStatus(ctx context.Context, orderID string, statusID int) (bool, error)
	StatusExists(ctx context.Context, statusID int) (bool, error)
	GetStatusName(ctx context.Context, statusID int) (string, error)
}

// CatalogStore is the product CRUD surface used outside of checkout.
type CatalogStore interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, productID string) error
}

// CustomerStore manages customer accounts.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
}
