package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/ec-shop/internal/infrastructure/store"
)

var (
	// ErrNotStackable means more than one code was submitted and at least
	// one of them does not allow stacking.
	ErrNotStackable = errors.New("discount codes cannot be combined")
)

// InvalidDiscountError reports codes that resolved cleanly but are not
// usable (unknown, inactive, or exhausted). It is the caller's fault and
// distinct from a resolution failure, which surfaces as a wrapped storage
// error instead.
type InvalidDiscountError struct {
	Codes []string
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("invalid discount codes: %s", strings.Join(e.Codes, ", "))
}

// classify buckets a commit failure for logging. All of these roll the
// transaction back and surface as ResultError to the boundary.
func classify(err error) string {
	switch {
	case errors.Is(err, store.ErrStockConflict):
		return "state conflict"
	case errors.Is(err, store.ErrForeignKey):
		return "referential failure"
	default:
		return "storage failure"
	}
}
