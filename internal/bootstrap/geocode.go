package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"foodcart-service/internal/adapters/cache"
	"foodcart-service/internal/adapters/geocoder"
	"foodcart-service/internal/config"
	"foodcart-service/internal/pkg/clock"
	"foodcart-service/internal/platform/db"
	"foodcart-service/internal/ports"
	"foodcart-service/internal/services"
	"time"

	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

// GeocodeStack is the process-wide address resolution pipeline.
// Close releases the Redis connection and stops the memory sweeper.
type GeocodeStack struct {
	Cache *services.GeocodeCache
	Store ports.LocationStore
	Clock clock.Clock

	closers []func()
}

func (s *GeocodeStack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewLocationStore picks the persistent store implementation for driver.
func NewLocationStore(driver string, database *sql.DB, log *zap.Logger) (ports.LocationStore, error) {
	switch driver {
	case db.DriverSqlite:
		return cache.NewSqliteLocationStore(database, log), nil
	case db.DriverPostgres:
		return cache.NewSQLLocationStore(database, log), nil
	default:
		return nil, fmt.Errorf("location store: unsupported driver %q", driver)
	}
}

// NewGeocodeStack wires geocoder, persistent store and memory tier.
// REDIS_URL selects a shared Redis tier; otherwise an in-process map is used.
func NewGeocodeStack(ctx context.Context, cfg config.Config, database *sql.DB, log *zap.Logger) (*GeocodeStack, error) {
	clk := clock.NewRealClock()
	stack := &GeocodeStack{Clock: clk}

	store, err := NewLocationStore(cfg.DB.Driver, database, log.Named("location_store"))
	if err != nil {
		return nil, err
	}
	stack.Store = store

	geo, err := geocoder.NewYandexGeocoder(
		cfg.Geocoder.APIKey,
		geocoder.WithBaseURL(cfg.Geocoder.BaseURL),
		geocoder.WithTimeout(cfg.Geocoder.Timeout),
		geocoder.WithLogger(log.Named("geocoder")),
	)
	if err != nil {
		return nil, err
	}

	var memory ports.LocationCache
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		stack.closers = append(stack.closers, func() { _ = client.Close() })
		memory = cache.NewRedisLocationCache(client)
		log.Info("geocode memory tier: redis")
	} else {
		mem := cache.NewMemoryLocationCache(clk)
		sweepCtx, cancel := context.WithCancel(context.Background())
		go mem.RunSweeper(sweepCtx, sweepInterval)
		stack.closers = append(stack.closers, cancel)
		memory = mem
		log.Info("geocode memory tier: in-process")
	}

	stack.Cache = services.NewGeocodeCache(memory, store, geo,
		services.WithClock(clk),
		services.WithStoreTTL(cfg.Cache.StoreTTL),
		services.WithMemoryTTL(cfg.Cache.MemoryTTL),
		services.WithCacheLogger(log.Named("geocode_cache")),
	)
	return stack, nil
}
