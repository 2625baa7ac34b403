package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ec-shop/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() (*Resolver, *mocks.MockDiscountStore) {
	discounts := mocks.NewMockDiscountStore()
	return NewResolver(discounts), discounts
}

// ============================================
// Resolve Tests
// ============================================

func TestResolver_Resolve_ValidCodes(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "SPRING", Percent: 10, Stackable: true, RemainingUses: 5, Active: true})
	discounts.Add(model.DiscountCode{ID: "d2", Code: "LOYAL", Percent: 5, Stackable: true, RemainingUses: -1, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"SPRING", "LOYAL"})

	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "d1", resolved[0].ID)
	assert.Equal(t, "d2", resolved[1].ID)
}

func TestResolver_Resolve_UnknownCode(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "SPRING", Percent: 10, RemainingUses: 5, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"SPRING", "NOPE"})

	var invalid *InvalidDiscountError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"NOPE"}, invalid.Codes)
	assert.Nil(t, resolved)
}

func TestResolver_Resolve_InactiveCode(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "OLD", Percent: 10, RemainingUses: 5, Active: false})

	_, err := resolver.Resolve(ctx, []string{"OLD"})

	var invalid *InvalidDiscountError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"OLD"}, invalid.Codes)
}

func TestResolver_Resolve_ExhaustedCode(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "GONE", Percent: 10, RemainingUses: 0, Active: true})

	_, err := resolver.Resolve(ctx, []string{"GONE"})

	var invalid *InvalidDiscountError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"GONE"}, invalid.Codes)
}

func TestResolver_Resolve_UnlimitedCodeIsValid(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "FOREVER", Percent: 10, RemainingUses: -1, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"FOREVER"})

	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, -1, resolved[0].RemainingUses)
}

func TestResolver_Resolve_CollectsAllInvalidCodes(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "OK", Percent: 10, RemainingUses: 5, Active: true})
	discounts.Add(model.DiscountCode{ID: "d2", Code: "GONE", Percent: 10, RemainingUses: 0, Active: true})

	_, err := resolver.Resolve(ctx, []string{"OK", "GONE", "NOPE"})

	var invalid *InvalidDiscountError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"GONE", "NOPE"}, invalid.Codes)
}

func TestResolver_Resolve_StorageError(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	lookupErr := errors.New("connection refused")
	discounts.LookupErr = lookupErr
	discounts.FailingLookups["SPRING"] = true

	resolved, err := resolver.Resolve(ctx, []string{"SPRING"})

	// A failed lookup is not the caller's fault.
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	var invalid *InvalidDiscountError
	assert.False(t, errors.As(err, &invalid))
	assert.Nil(t, resolved)
}

func TestResolver_Resolve_Deduplicates(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "SPRING", Percent: 10, RemainingUses: 5, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"SPRING", "SPRING", "SPRING"})

	require.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, []string{"SPRING"}, discounts.GetByCodeCalls)
}

// ============================================
// Stacking Tests
// ============================================

func TestResolver_Resolve_SingleNonStackableCode(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "SOLO", Percent: 20, Stackable: false, RemainingUses: 5, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"SOLO"})

	// Alone, a non-stackable code is fine.
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestResolver_Resolve_NonStackablePairRejected(t *testing.T) {
	resolver, discounts := newTestResolver()
	ctx := context.Background()

	discounts.Add(model.DiscountCode{ID: "d1", Code: "SOLO", Percent: 20, Stackable: false, RemainingUses: 5, Active: true})
	discounts.Add(model.DiscountCode{ID: "d2", Code: "SPRING", Percent: 10, Stackable: true, RemainingUses: 5, Active: true})

	resolved, err := resolver.Resolve(ctx, []string{"SPRING", "SOLO"})

	assert.ErrorIs(t, err, ErrNotStackable)
	assert.Nil(t, resolved)
}

func TestResolver_Resolve_EmptyInput(t *testing.T) {
	resolver, _ := newTestResolver()
	ctx := context.Background()

	resolved, err := resolver.Resolve(ctx, nil)

	require.NoError(t, err)
	assert.Empty(t, resolved)
}
