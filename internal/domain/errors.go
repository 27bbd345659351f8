package domain

import "errors"

var (
	// The geocoder answered but had no place for the address.
	ErrGeocodeNotFound = errors.New("geocode: address not found")
	// Network failure, timeout, bad status or malformed payload.
	ErrGeocodeTransient = errors.New("geocode: transient failure")

	ErrDistanceComputation = errors.New("distance computation error")
)
