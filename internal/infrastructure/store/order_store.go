package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ec-shop/internal/model"
)

// PostgresOrderStore implements OrderStore over PostgreSQL
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// WithinTx runs fn against a single transaction. The checkout commit relies
// on this being the sole unit of mutual exclusion: stock and discount
// counters are only ever touched through the in-place decrements below.
func (s *PostgresOrderStore) WithinTx(ctx context.Context, fn func(OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}

	if err := fn(&pgOrderTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

type pgOrderTx struct {
	tx *sql.Tx
}

func (t *pgOrderTx) InsertOrder(ctx context.Context, o model.Order) error {
	// status_id is left to the schema default, which points at the seeded
	// "placed" status. The status set is managed administratively.
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, shipping_address_id, price_paid, placed_on)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.CustomerID, o.ShippingAddressID, o.PricePaid, o.PlacedOn)
	if err != nil {
		return fmt.Errorf("insert order: %w", translateError(err))
	}
	return nil
}

func (t *pgOrderTx) InsertLine(ctx context.Context, l model.OrderLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
	`, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice)
	if err != nil {
		return fmt.Errorf("insert order line: %w", translateError(err))
	}
	return nil
}

func (t *pgOrderTx) InsertDiscountUsage(ctx context.Context, orderID, discountID string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_discounts (order_id, discount_code_id)
		VALUES ($1, $2)
	`, orderID, discountID)
	if err != nil {
		return fmt.Errorf("insert discount usage: %w", translateError(err))
	}
	return nil
}

func (t *pgOrderTx) DecrementDiscountUses(ctx context.Context, discountID string) error {
	// remaining_uses = -1 means unlimited and stays untouched. An exhausted
	// limited code matches no row: it was spent between resolve and commit,
	// and the conflict deliberately rolls the whole checkout back instead of
	// letting the order keep a discount with no use left.
	res, err := t.tx.ExecContext(ctx, `
		UPDATE discount_codes
		SET remaining_uses = CASE WHEN remaining_uses > 0 THEN remaining_uses - 1 ELSE remaining_uses END
		WHERE id = $1 AND (remaining_uses > 0 OR remaining_uses = -1)
	`, discountID)
	if err != nil {
		return fmt.Errorf("decrement discount uses: %w", translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement discount uses: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("discount %s: %w", discountID, ErrStockConflict)
	}
	return nil
}

func (t *pgOrderTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrStockConflict)
	}
	return nil
}

func (t *pgOrderTx) ClearBasket(ctx context.Context, customerID string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM basket_lines WHERE customer_id = $1`, customerID)
	if err != nil {
		return fmt.Errorf("clear basket: %w", translateError(err))
	}
	return nil
}

// Read side

func (s *PostgresOrderStore) GetOrder(ctx context.Context, orderID string) (*model.Order, []model.OrderLine, error) {
	var o model.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, shipping_address_id, price_paid, placed_on, status_id
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.CustomerID, &o.ShippingAddressID, &o.PricePaid, &o.PlacedOn, &o.StatusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_id
	`, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, nil, fmt.Errorf("get order lines: %w", err)
		}
		lines = append(lines, l)
	}
	return &o, lines, rows.Err()
}

func (s *PostgresOrderStore) ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, shipping_address_id, price_paid, placed_on, status_id
		FROM orders
		WHERE customer_id = $1
		ORDER BY placed_on DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ShippingAddressID, &o.PricePaid, &o.PlacedOn, &o.StatusID); err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresOrderStore) SetStatus(ctx context.Context, orderID string, statusID int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status_id = $2 WHERE id = $1`, orderID, statusID)
	if err != nil {
		return false, fmt.Errorf("set order status: %w", translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set order status: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresOrderStore) StatusExists(ctx context.Context, statusID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_statuses WHERE id = $1)`, statusID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order status: %w", err)
	}
	return exists, nil
}

func (s *PostgresOrderStore) GetStatusName(ctx context.Context, statusID int) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM order_statuses WHERE id = $1`, statusID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get status name: %w", err)
	}
	return name, nil
}
