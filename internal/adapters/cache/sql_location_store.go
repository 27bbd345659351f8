package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/platform/obs"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SQLLocationStore is a Postgres-backed ports.LocationStore.
// The unique address key makes Upsert atomic per address, so concurrent
// writers need no extra locking; the last writer wins.
type SQLLocationStore struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewSQLLocationStore(db *sql.DB, log *zap.Logger) *SQLLocationStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLLocationStore{DB: db, log: log}
}

// Fetch the cached record for one exact address.
func (s *SQLLocationStore) Get(ctx context.Context, address string) (_ domain.CachedLocation, _ bool, err error) {
	defer obs.Time(ctx, s.log, "geocode.store.Get")(&err)

	if s.DB == nil {
		return domain.CachedLocation{}, false, errors.New("location store: db is nil")
	}

	q := `
	SELECT address, lat, lon, created_at, updated_at
    FROM cached_locations
    WHERE address = $1;
	`

	var (
		loc      domain.CachedLocation
		lat, lon sql.NullFloat64
	)
	err = s.DB.QueryRowContext(ctx, q, address).Scan(&loc.Address, &lat, &lon, &loc.CreatedAt, &loc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CachedLocation{}, false, nil
	}
	if err != nil {
		return domain.CachedLocation{}, false, fmt.Errorf("get cached location: query cached_locations table: %w", err)
	}

	loc.Coordinates = coordsFromNull(lat, lon)
	return loc, true, nil
}

// Store address -> coordinates, creating the record or refreshing it.
func (s *SQLLocationStore) Upsert(ctx context.Context, address string, coords *domain.Coordinates, at time.Time) (err error) {
	defer obs.Time(ctx, s.log, "geocode.store.Upsert")(&err)

	if s.DB == nil {
		return errors.New("location store: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return errors.New("upsert cached location: empty address key")
	}

	lat, lon := coordsToNull(coords)

	q := `
	INSERT INTO cached_locations (address, lat, lon, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, address, lat, lon, at.UTC()); err != nil {
		return fmt.Errorf("upsert cached location address=%q: %w", address, err)
	}

	return nil
}

// List cached records ordered by address.
func (s *SQLLocationStore) List(ctx context.Context, limit, offset int) (_ []domain.CachedLocation, err error) {
	defer obs.Time(ctx, s.log, "geocode.store.List")(&err)

	if s.DB == nil {
		return nil, errors.New("location store: db is nil")
	}

	q := `
	SELECT address, lat, lon, created_at, updated_at
    FROM cached_locations
    ORDER BY address
    LIMIT $1 OFFSET $2;
	`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cached locations: query cached_locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CachedLocation, 0, limit)
	for rows.Next() {
		var (
			loc      domain.CachedLocation
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&loc.Address, &lat, &lon, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list cached locations: scan rows: %w", err)
		}
		loc.Coordinates = coordsFromNull(lat, lon)
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached locations: row iteration: %w", err)
	}

	return out, nil
}

// A record is positive only when both columns are set.
func coordsFromNull(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}

func coordsToNull(c *domain.Coordinates) (lat, lon sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lon, Valid: true}
}
