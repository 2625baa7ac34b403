package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-shop/internal/model"
)

// PostgresCustomerStore implements CustomerStore over PostgreSQL
type PostgresCustomerStore struct {
	db *sql.DB
}

func NewPostgresCustomerStore(db *sql.DB) *PostgresCustomerStore {
	return &PostgresCustomerStore{db: db}
}

func (s *PostgresCustomerStore) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

func (s *PostgresCustomerStore) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.get(ctx, `WHERE email = $1`, email)
}

func (s *PostgresCustomerStore) get(ctx context.Context, where string, arg any) (*model.Customer, error) {
	var c model.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, role, created_at
		FROM customers `+where,
		arg).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Name, &c.Role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (s *PostgresCustomerStore) Create(ctx context.Context, c *model.Customer) error {
	c.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Email, c.PasswordHash, c.Name, c.Role, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", translateError(err))
	}
	return nil
}
