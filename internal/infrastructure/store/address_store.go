package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/ec-shop/internal/model"
)

// PostgresAddressStore implements AddressStore over PostgreSQL
type PostgresAddressStore struct {
	db *sql.DB
}

func NewPostgresAddressStore(db *sql.DB) *PostgresAddressStore {
	return &PostgresAddressStore{db: db}
}

// OwnedBy reports whether the address belongs to the customer. A missing
// address and someone else's address are indistinguishable on purpose: the
// checkout boundary treats both as an authorization failure.
func (s *PostgresAddressStore) OwnedBy(ctx context.Context, addressID, customerID string) (bool, error) {
	var owned bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM shipping_addresses
			WHERE id = $1 AND customer_id = $2
		)
	`, addressID, customerID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("check address ownership: %w", err)
	}
	return owned, nil
}

func (s *PostgresAddressStore) ListByCustomer(ctx context.Context, customerID string) ([]model.ShippingAddress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, line1, line2, city, postal_code, country
		FROM shipping_addresses
		WHERE customer_id = $1
		ORDER BY id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.ShippingAddress
	for rows.Next() {
		var a model.ShippingAddress
		var line2 sql.NullString
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Line1, &line2, &a.City, &a.PostalCode, &a.Country); err != nil {
			return nil, fmt.Errorf("list addresses: %w", err)
		}
		a.Line2 = line2.String
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (s *PostgresAddressStore) Create(ctx context.Context, a *model.ShippingAddress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shipping_addresses (id, customer_id, line1, line2, city, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.CustomerID, a.Line1, nullString(a.Line2), a.City, a.PostalCode, a.Country)
	if err != nil {
		return fmt.Errorf("create address: %w", translateError(err))
	}
	return nil
}

// nullString maps empty strings to SQL NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
