package ports

import (
	"context"
	"foodcart-service/internal/domain"
	"time"
)

// Port: volatile read-through accelerator in front of LocationStore.
// Implementations enforce the TTL themselves.
type LocationCache interface {
	// Return the remembered coordinates. ok=false on miss; a hit with nil coords is a remembered negative.
	Get(ctx context.Context, address string) (coords *domain.Coordinates, ok bool, err error)
	Set(ctx context.Context, address string, coords *domain.Coordinates, ttl time.Duration) error
}
