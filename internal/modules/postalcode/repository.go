package postalcode

import (
	"context"

	"github.com/georgemunganga/promoled-directory/internal/geo"
)

// Repository stores the coordinate table. Replace swaps the whole table; a
// failed Replace leaves the previous one in place.
type Repository interface {
	Load(ctx context.Context) (geo.Index, error)
	Replace(ctx context.Context, idx geo.Index) error
}
