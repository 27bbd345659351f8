package services

import (
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/ports"
	"math"
)

const (
	FormulaGreatCircle = "greatcircle"
	FormulaVincenty    = "vincenty"
)

// Mean Earth radius (IUGG).
const earthRadiusKm = 6371.0088

// WGS-84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = (1 - wgs84F) * wgs84A
)

func NewDistanceCalculator(formula string) (ports.DistanceCalculator, error) {
	switch formula {
	case "", FormulaGreatCircle:
		return GreatCircle{}, nil
	case FormulaVincenty:
		return Vincenty{}, nil
	default:
		return nil, fmt.Errorf("distance calculator: unknown formula %q", formula)
	}
}

// GreatCircle is the haversine distance on a spherical Earth.
type GreatCircle struct{}

func (GreatCircle) DistanceKm(a, b domain.Coordinates) (float64, error) {
	if err := checkPoints(a, b); err != nil {
		return 0, err
	}

	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := sq(math.Sin(dLat/2)) + math.Cos(lat1)*math.Cos(lat2)*sq(math.Sin(dLon/2))
	// Rounding can push h a hair outside [0, 1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))

	d := 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("great circle %v -> %v: %w", a, b, domain.ErrDistanceComputation)
	}
	return d, nil
}

// Vincenty is the inverse geodesic on the WGS-84 ellipsoid. It fails to
// converge for nearly antipodal points and reports that as an error.
type Vincenty struct {
	MaxIterations int
}

func (v Vincenty) DistanceKm(a, b domain.Coordinates) (float64, error) {
	if err := checkPoints(a, b); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	maxIter := v.MaxIterations
	if maxIter <= 0 {
		maxIter = 200
	}

	L := radians(b.Lon - a.Lon)
	U1 := math.Atan((1 - wgs84F) * math.Tan(radians(a.Lat)))
	U2 := math.Atan((1 - wgs84F) * math.Tan(radians(b.Lat)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	var (
		sinSigma, cosSigma, sigma float64
		cosSqAlpha, cos2SigmaM    float64
		converged                 bool
	)

	lambda := L
	for i := 0; i < maxIter; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)

		sinSigma = math.Sqrt(sq(cosU2*sinLambda) + sq(cosU1*sinU2-sinU1*cosU2*cosLambda))
		if sinSigma == 0 {
			return 0, nil
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sq(sinAlpha)
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			// Both points on the equator.
			cos2SigmaM = 0
		}

		C := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*wgs84F*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*sq(cos2SigmaM))))

		if math.Abs(lambda-prev) < 1e-12 {
			converged = true
			break
		}
	}
	if !converged {
		return 0, fmt.Errorf("vincenty %v -> %v: no convergence after %d iterations: %w", a, b, maxIter, domain.ErrDistanceComputation)
	}

	uSq := cosSqAlpha * (sq(wgs84A) - sq(wgs84B)) / sq(wgs84B)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*sq(cos2SigmaM))-
		B/6*cos2SigmaM*(-3+4*sq(sinSigma))*(-3+4*sq(cos2SigmaM))))

	meters := wgs84B * A * (sigma - deltaSigma)
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0, fmt.Errorf("vincenty %v -> %v: %w", a, b, domain.ErrDistanceComputation)
	}
	return meters / 1000, nil
}

func checkPoints(a, b domain.Coordinates) error {
	if !a.Valid() {
		return fmt.Errorf("invalid point %v: %w", a, domain.ErrDistanceComputation)
	}
	if !b.Valid() {
		return fmt.Errorf("invalid point %v: %w", b, domain.ErrDistanceComputation)
	}
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func sq(x float64) float64 { return x * x }
