package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/ec-shop/internal/model"
)

// PostgresDiscountStore implements DiscountStore over PostgreSQL
type PostgresDiscountStore struct {
	db *sql.DB
}

func NewPostgresDiscountStore(db *sql.DB) *PostgresDiscountStore {
	return &PostgresDiscountStore{db: db}
}

// GetByCode looks a code up by its exact, case-sensitive value.
func (s *PostgresDiscountStore) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	var dc model.DiscountCode
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, percent, stackable, remaining_uses, active
		FROM discount_codes
		WHERE code = $1
	`, code).Scan(&dc.ID, &dc.Code, &dc.Percent, &dc.Stackable, &dc.RemainingUses, &dc.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get discount code: %w", err)
	}
	return &dc, nil
}

func (s *PostgresDiscountStore) Create(ctx context.Context, dc *model.DiscountCode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discount_codes (id, code, percent, stackable, remaining_uses, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, dc.ID, dc.Code, dc.Percent, dc.Stackable, dc.RemainingUses, dc.Active)
	if err != nil {
		return fmt.Errorf("create discount code: %w", translateError(err))
	}
	return nil
}

func (s *PostgresDiscountStore) List(ctx context.Context) ([]model.DiscountCode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, percent, stackable, remaining_uses, active
		FROM discount_codes
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list discount codes: %w", err)
	}
	defer rows.Close()

	var codes []model.DiscountCode
	for rows.Next() {
		var dc model.DiscountCode
		if err := rows.Scan(&dc.ID, &dc.Code, &dc.Percent, &dc.Stackable, &dc.RemainingUses, &dc.Active); err != nil {
			return nil, fmt.Errorf("list discount codes: %w", err)
		}
		codes = append(codes, dc)
	}
	return codes, rows.Err()
}
