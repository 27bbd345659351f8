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

// SQLite timestamps are stored as UTC RFC 3339 text so they sort lexically.
const sqliteTimeLayout = time.RFC3339Nano

// SQLite backed ports.LocationStore for local runs.
// Address keys are matched exactly; callers must not normalize them.
type SqliteLocationStore struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewSqliteLocationStore(db *sql.DB, log *zap.Logger) *SqliteLocationStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SqliteLocationStore{DB: db, log: log}
}

// Fetch the cached record for one exact address.
func (s *SqliteLocationStore) Get(ctx context.Context, address string) (_ domain.CachedLocation, _ bool, err error) {
	defer obs.Time(ctx, s.log, "geocode.store.Get")(&err)

	if s.DB == nil {
		return domain.CachedLocation{}, false, errors.New("location store: db is nil")
	}

	q := `
	SELECT
        address,
        lat,
        lon,
        created_at,
        updated_at
    FROM cached_locations
    WHERE address = ?;
	`

	row := s.DB.QueryRowContext(ctx, q, address)
	loc, err := scanSqliteLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CachedLocation{}, false, nil
	}
	if err != nil {
		return domain.CachedLocation{}, false, fmt.Errorf("get cached location: %w", err)
	}

	return loc, true, nil
}

// Store address -> coordinates, creating the record or refreshing it.
func (s *SqliteLocationStore) Upsert(ctx context.Context, address string, coords *domain.Coordinates, at time.Time) (err error) {
	defer obs.Time(ctx, s.log, "geocode.store.Upsert")(&err)

	if s.DB == nil {
		return errors.New("location store: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return errors.New("upsert cached location: empty address key")
	}

	lat, lon := coordsToNull(coords)
	ts := at.UTC().Format(sqliteTimeLayout)

	// created_at survives the conflict branch; only coordinates and updated_at change.
	q := `
	INSERT INTO cached_locations (
        address,
        lat,
        lon,
        created_at,
        updated_at
    )
    VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (address) DO UPDATE
	SET lat = excluded.lat,
		lon = excluded.lon,
		updated_at = excluded.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, address, lat, lon, ts, ts); err != nil {
		return fmt.Errorf("upsert cached location address=%q: %w", address, err)
	}

	return nil
}

// List cached records ordered by address.
func (s *SqliteLocationStore) List(ctx context.Context, limit, offset int) (_ []domain.CachedLocation, err error) {
	defer obs.Time(ctx, s.log, "geocode.store.List")(&err)

	if s.DB == nil {
		return nil, errors.New("location store: db is nil")
	}

	q := `
	SELECT
        address,
        lat,
        lon,
        created_at,
        updated_at
    FROM cached_locations
    ORDER BY address
    LIMIT ? OFFSET ?;
	`

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cached locations: query cached_locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CachedLocation, 0, limit)
	for rows.Next() {
		loc, err := scanSqliteLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("list cached locations: %w", err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached locations: row iteration: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSqliteLocation(r rowScanner) (domain.CachedLocation, error) {
	var (
		loc                  domain.CachedLocation
		lat, lon             sql.NullFloat64
		createdAt, updatedAt string
	)
	if err := r.Scan(&loc.Address, &lat, &lon, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CachedLocation{}, err
		}
		return domain.CachedLocation{}, fmt.Errorf("scan row: %w", err)
	}

	var err error
	if loc.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return domain.CachedLocation{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if loc.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return domain.CachedLocation{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}

	loc.Coordinates = coordsFromNull(lat, lon)
	return loc, nil
}
