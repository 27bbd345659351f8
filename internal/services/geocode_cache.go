package services

import (
	"context"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/clock"
	"foodcart-service/internal/pkg/errs"
	"foodcart-service/internal/platform/obs"
	"foodcart-service/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStoreTTL  = 30 * 24 * time.Hour
	DefaultMemoryTTL = time.Hour
)

// GeocodeCache resolves addresses through a volatile memory tier, then the
// durable store, then the live geocoder. Positive and negative answers are
// both persisted so a missing address is not re-fetched until its record
// expires.
type GeocodeCache struct {
	memory   ports.LocationCache
	store    ports.LocationStore
	geocoder ports.Geocoder

	clock     clock.Clock
	storeTTL  time.Duration
	memoryTTL time.Duration
	log       *zap.Logger

	inflight singleflight.Group
}

type GeocodeCacheOption func(*GeocodeCache)

func WithClock(c clock.Clock) GeocodeCacheOption {
	return func(g *GeocodeCache) { g.clock = c }
}

func WithStoreTTL(d time.Duration) GeocodeCacheOption {
	return func(g *GeocodeCache) { g.storeTTL = d }
}

func WithMemoryTTL(d time.Duration) GeocodeCacheOption {
	return func(g *GeocodeCache) { g.memoryTTL = d }
}

func WithCacheLogger(l *zap.Logger) GeocodeCacheOption {
	return func(g *GeocodeCache) { g.log = l }
}

func NewGeocodeCache(memory ports.LocationCache, store ports.LocationStore, geocoder ports.Geocoder, opts ...GeocodeCacheOption) *GeocodeCache {
	g := &GeocodeCache{
		memory:    memory,
		store:     store,
		geocoder:  geocoder,
		clock:     clock.NewRealClock(),
		storeTTL:  DefaultStoreTTL,
		memoryTTL: DefaultMemoryTTL,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type resolution struct {
	coords *domain.Coordinates
	// The lookup was cut short by its caller's context; nothing was written.
	aborted bool
}

// Resolve returns the coordinates of address. ok=false covers a blank
// address, a negative cache entry and any geocoder failure.
func (g *GeocodeCache) Resolve(ctx context.Context, address string) (domain.Coordinates, bool) {
	// Stores reject blank keys, so a blank address could never be cached.
	if strings.TrimSpace(address) == "" {
		return domain.Coordinates{}, false
	}

	coords, hit, err := g.memory.Get(ctx, address)
	if err != nil {
		g.log.Warn("geocode memory read failed", zap.String("address", address), zap.Error(err))
	} else if hit {
		obs.GeocodeLookups.WithLabelValues(obs.TierMemory, lookupOutcome(coords)).Inc()
		return deref(coords)
	}

	// Concurrent misses for one address share a single store read and upstream call.
	ch := g.inflight.DoChan(address, func() (any, error) {
		return g.resolveSlow(ctx, address), nil
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, false
	case res := <-ch:
		r := res.Val.(resolution)
		if r.aborted && ctx.Err() == nil {
			// The shared lookup belonged to a caller that gave up; ours is still live.
			r = g.resolveSlow(ctx, address)
		}
		return deref(r.coords)
	}
}

func (g *GeocodeCache) resolveSlow(ctx context.Context, address string) resolution {
	now := g.clock.Now()

	loc, found, err := g.store.Get(ctx, address)
	switch {
	case err != nil:
		g.log.Warn("geocode store read failed", zap.String("address", address), zap.Error(err))
	case found && !loc.Expired(now, g.storeTTL):
		g.remember(ctx, address, loc.Coordinates)
		obs.GeocodeLookups.WithLabelValues(obs.TierStore, lookupOutcome(loc.Coordinates)).Inc()
		return resolution{coords: loc.Coordinates}
	}

	coords, err := g.geocoder.Geocode(ctx, address)
	if err == nil {
		g.persist(ctx, address, &coords)
		g.remember(ctx, address, &coords)
		obs.GeocodeLookups.WithLabelValues(obs.TierUpstream, "found").Inc()
		return resolution{coords: &coords}
	}

	if ctx.Err() != nil {
		g.log.Debug("geocode abandoned", zap.String("address", address), zap.Error(err))
		return resolution{aborted: true}
	}

	g.persist(ctx, address, nil)
	if errs.Is(err, domain.ErrGeocodeNotFound) {
		g.remember(ctx, address, nil)
		obs.GeocodeLookups.WithLabelValues(obs.TierUpstream, "not_found").Inc()
		g.log.Info("geocode found nothing", zap.String("address", address))
	} else {
		obs.GeocodeLookups.WithLabelValues(obs.TierUpstream, "transient").Inc()
		g.log.Warn("geocode failed, caching negative result", zap.String("address", address), zap.Error(err))
	}
	return resolution{}
}

func (g *GeocodeCache) persist(ctx context.Context, address string, coords *domain.Coordinates) {
	if err := g.store.Upsert(ctx, address, coords, g.clock.Now()); err != nil {
		g.log.Warn("geocode store write failed", zap.String("address", address), zap.Error(err))
	}
}

func (g *GeocodeCache) remember(ctx context.Context, address string, coords *domain.Coordinates) {
	if err := g.memory.Set(ctx, address, coords, g.memoryTTL); err != nil {
		g.log.Warn("geocode memory write failed", zap.String("address", address), zap.Error(err))
	}
}

func deref(c *domain.Coordinates) (domain.Coordinates, bool) {
	if c == nil {
		return domain.Coordinates{}, false
	}
	return *c, true
}

func lookupOutcome(c *domain.Coordinates) string {
	if c == nil {
		return "negative"
	}
	return "found"
}
