package ports

import (
	"context"
	"foodcart-service/internal/domain"
)

// Contract for turning an address into coordinates, hiding any caching.
// ok=false means no coordinates are available; it is not an error.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (coords domain.Coordinates, ok bool)
}
