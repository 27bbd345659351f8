package ports

import (
	"context"
	"foodcart-service/internal/domain"
)

// Contract for resolving a street address to coordinates through an external service.
// Failures are classified with domain.ErrGeocodeNotFound or domain.ErrGeocodeTransient.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
