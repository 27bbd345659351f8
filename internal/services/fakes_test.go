package services

import (
	"context"
	"errors"
	"foodcart-service/internal/domain"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// memStore is an in-memory ports.LocationStore that counts calls.
type memStore struct {
	mu      sync.Mutex
	recs    map[string]domain.CachedLocation
	gets    int
	upserts int

	getErr    error
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]domain.CachedLocation{}}
}

func (s *memStore) Get(_ context.Context, address string) (domain.CachedLocation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return domain.CachedLocation{}, false, s.getErr
	}
	loc, ok := s.recs[address]
	return loc, ok, nil
}

func (s *memStore) Upsert(_ context.Context, address string, coords *domain.Coordinates, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	loc, ok := s.recs[address]
	if !ok {
		loc = domain.CachedLocation{Address: address, CreatedAt: at}
	}
	if coords != nil {
		c := *coords
		loc.Coordinates = &c
	} else {
		loc.Coordinates = nil
	}
	loc.UpdatedAt = at
	s.recs[address] = loc
	return nil
}

func (s *memStore) List(_ context.Context, limit, offset int) ([]domain.CachedLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CachedLocation, 0, len(s.recs))
	for _, l := range s.recs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) put(address string, coords *domain.Coordinates, at time.Time) {
	_ = s.Upsert(context.Background(), address, coords, at)
	s.mu.Lock()
	s.upserts = 0
	s.mu.Unlock()
}

func (s *memStore) record(address string) (domain.CachedLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.recs[address]
	return loc, ok
}

func (s *memStore) counts() (gets, upserts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.upserts
}

// staticResolver answers from a fixed table and tracks peak concurrency.
type staticResolver struct {
	coords map[string]domain.Coordinates
	delay  time.Duration

	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (r *staticResolver) Resolve(ctx context.Context, address string) (domain.Coordinates, bool) {
	r.calls.Add(1)
	n := r.inflight.Add(1)
	defer r.inflight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if r.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Coordinates{}, false
		case <-time.After(r.delay):
		}
	}

	c, ok := r.coords[address]
	return c, ok
}

// latAsDistance reports the destination latitude as the distance and fails
// for negative latitudes, which lets tests pick exact distances.
type latAsDistance struct{}

func (latAsDistance) DistanceKm(_, b domain.Coordinates) (float64, error) {
	if b.Lat < 0 {
		return 0, errors.Join(errors.New("fake failure"), domain.ErrDistanceComputation)
	}
	return b.Lat, nil
}

// fakeRepo is a ports.OrderRepository over fixed slices.
type fakeRepo struct {
	orders      []*domain.Order
	restaurants []*domain.Restaurant
	products    []*domain.Product
	items       []domain.MenuItem
	err         error
}

func (f *fakeRepo) ListUnprocessedOrders(context.Context) ([]*domain.Order, error) {
	return f.orders, f.err
}

func (f *fakeRepo) ListRestaurants(context.Context) ([]*domain.Restaurant, error) {
	return f.restaurants, f.err
}

func (f *fakeRepo) ListProducts(context.Context) ([]*domain.Product, error) {
	return f.products, f.err
}

func (f *fakeRepo) ListMenuItems(context.Context) ([]domain.MenuItem, error) {
	return f.items, f.err
}
