package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// Resolver validates submitted discount codes against current state and the
// stacking rule. It never mutates remaining uses; that happens only inside
// the commit transaction, so a code cannot be spent by a checkout that was
// never placed.
type Resolver struct {
	discounts store.DiscountStore
}

func NewResolver(discounts store.DiscountStore) *Resolver {
	return &Resolver{discounts: discounts}
}

// Resolve looks up each code (case-sensitive, exact match) and returns the
// resolved set, deduplicated and in submission order.
//
// Unknown, inactive and exhausted codes are collected into an
// *InvalidDiscountError; a storage failure during lookup returns a wrapped
// error instead, so the caller can tell "your codes are bad" apart from
// "we could not check your codes". With more than one code, every resolved
// code must be stackable or the whole set is rejected with ErrNotStackable.
func (r *Resolver) Resolve(ctx context.Context, codes []string) ([]model.DiscountCode, error) {
	seen := make(map[string]bool, len(codes))
	var resolved []model.DiscountCode
	var invalid []string

	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true

		dc, err := r.discounts.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				invalid = append(invalid, code)
				continue
			}
			return nil, fmt.Errorf("resolve discount %q: %w", code, err)
		}
		if dc.RemainingUses == 0 || !dc.Active {
			invalid = append(invalid, code)
			continue
		}
		resolved = append(resolved, *dc)
	}

	if len(invalid) > 0 {
		return nil, &InvalidDiscountError{Codes: invalid}
	}

	// A single code applies regardless of its stackable flag.
	if len(resolved) > 1 {
		for _, dc := range resolved {
			if !dc.Stackable {
				return nil, ErrNotStackable
			}
		}
	}

	return resolved, nil
}
