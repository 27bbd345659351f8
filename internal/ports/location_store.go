package ports

import (
	"context"
	"foodcart-service/internal/domain"
	"time"
)

// Port: durable address -> coordinates records.
// Freshness is decided by the caller from UpdatedAt; the store never expires rows.
type LocationStore interface {
	// Return the record for an exact address; ok=false if none exists.
	Get(ctx context.Context, address string) (loc domain.CachedLocation, ok bool, err error)
	// Insert or replace the record, bumping UpdatedAt to at. A nil coords stores a negative entry.
	Upsert(ctx context.Context, address string, coords *domain.Coordinates, at time.Time) error
	// List records ordered by address for operator inspection.
	List(ctx context.Context, limit, offset int) ([]domain.CachedLocation, error)
}
