package domain

import "time"

// CachedLocation is the persistent geocoding record for one address.
// A nil Coordinates is a negative entry: the geocoder had no answer for the
// address when it was last asked. Negative entries expire like positive ones.
type CachedLocation struct {
	Address     string
	Coordinates *Coordinates
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the record is older than ttl at now.
func (l CachedLocation) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(l.UpdatedAt) > ttl
}
