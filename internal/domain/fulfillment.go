package domain

import (
	"math"
	"strconv"
)

const (
	MarkerCoordinatesUnavailable = "coordinates unavailable"
	MarkerDistanceError          = "distance computation error"
)

type CandidateStatus int

const (
	CandidateResolved CandidateStatus = iota
	CandidateCoordinatesUnavailable
	CandidateDistanceError
)

// FulfillmentCandidate pairs a restaurant able to cook the whole order with
// its distance to the delivery address. DistanceKm is meaningful only when
// Status is CandidateResolved.
type FulfillmentCandidate struct {
	Restaurant *Restaurant
	DistanceKm float64
	Status     CandidateStatus
}

// SortKey orders resolved candidates by distance and everything else last.
func (c FulfillmentCandidate) SortKey() float64 {
	if c.Status != CandidateResolved {
		return math.Inf(1)
	}
	return c.DistanceKm
}

// Display renders the distance the way managers see it, e.g. "6.79 km",
// or the error marker.
func (c FulfillmentCandidate) Display() string {
	switch c.Status {
	case CandidateResolved:
		return strconv.FormatFloat(c.DistanceKm, 'f', -1, 64) + " km"
	case CandidateDistanceError:
		return MarkerDistanceError
	default:
		return MarkerCoordinatesUnavailable
	}
}

// OrderPlan is what the manager view renders for one pending order.
type OrderPlan struct {
	Order      *Order
	Candidates []FulfillmentCandidate
}
