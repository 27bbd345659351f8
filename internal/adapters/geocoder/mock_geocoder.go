package geocoder

import (
	"context"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/errs"
	"sync"
)

// MockGeocoder answers from a fixed table and counts calls per address.
// Addresses missing from the table are NotFound; addresses listed in
// Failing return a transient error.
type MockGeocoder struct {
	mu      sync.Mutex
	known   map[string]domain.Coordinates
	failing map[string]bool
	calls   map[string]int
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(known))
	for k, v := range known {
		m[k] = v
	}
	return &MockGeocoder{
		known:   m,
		failing: map[string]bool{},
		calls:   map[string]int{},
	}
}

// Fail makes subsequent lookups of address return a transient error.
func (g *MockGeocoder) Fail(address string) {
	g.mu.Lock()
	g.failing[address] = true
	g.mu.Unlock()
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[address]++

	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, errs.Mark(err, domain.ErrGeocodeTransient)
	}
	if g.failing[address] {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("mock geocode %q: upstream unavailable", address), domain.ErrGeocodeTransient)
	}

	c, ok := g.known[address]
	if !ok {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("mock geocode %q: no results", address), domain.ErrGeocodeNotFound)
	}
	return c, nil
}

// Calls returns how many times address was looked up.
func (g *MockGeocoder) Calls(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}

// TotalCalls returns the number of lookups across all addresses.
func (g *MockGeocoder) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}
