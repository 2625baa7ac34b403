package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ec-shop/internal/model"
)

// PostgresBasketStore implements BasketStore over PostgreSQL
type PostgresBasketStore struct {
	db *sql.DB
}

func NewPostgresBasketStore(db *sql.DB) *PostgresBasketStore {
	return &PostgresBasketStore{db: db}
}

// GetSnapshot returns the basket joined with live price and availability.
// A line is available when the requested quantity fits the current stock and
// the product is still on sale. Deleted products simply drop out of the join.
func (s *PostgresBasketStore) GetSnapshot(ctx context.Context, customerID string) ([]model.SnapshotLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.product_id, p.name, b.quantity, p.price,
		       (b.quantity <= p.stock AND p.available) AS available
		FROM basket_lines b
		INNER JOIN products p ON p.id = b.product_id
		WHERE b.customer_id = $1
		ORDER BY b.product_id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("basket snapshot: %w", translateError(err))
	}
	defer rows.Close()

	var snapshot []model.SnapshotLine
	for rows.Next() {
		var l model.SnapshotLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Available); err != nil {
			return nil, fmt.Errorf("basket snapshot: %w", err)
		}
		snapshot = append(snapshot, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("basket snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *PostgresBasketStore) GetLines(ctx context.Context, customerID string) ([]model.BasketLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, product_id, quantity
		FROM basket_lines
		WHERE customer_id = $1
		ORDER BY product_id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("get basket: %w", translateError(err))
	}
	defer rows.Close()

	var lines []model.BasketLine
	for rows.Next() {
		var l model.BasketLine
		if err := rows.Scan(&l.CustomerID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("get basket: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *PostgresBasketStore) UpsertLine(ctx context.Context, line model.BasketLine) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO basket_lines (customer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity
	`, line.CustomerID, line.ProductID, line.Quantity)
	if err != nil {
		return fmt.Errorf("upsert basket line: %w", translateError(err))
	}
	return nil
}

func (s *PostgresBasketStore) DeleteLine(ctx context.Context, customerID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM basket_lines WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID)
	if err != nil {
		return fmt.Errorf("delete basket line: %w", translateError(err))
	}
	return nil
}
