package ports

import "foodcart-service/internal/domain"

// Contract for straight-line distance between two points.
type DistanceCalculator interface {
	// Return kilometers between a and b. Invalid input yields an error wrapping domain.ErrDistanceComputation.
	DistanceKm(a, b domain.Coordinates) (float64, error)
}
