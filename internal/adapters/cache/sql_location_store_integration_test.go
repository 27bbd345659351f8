//go:build integration

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"foodcart-service/internal/adapters/repositories"
	"foodcart-service/internal/domain"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newPostgresStore(t *testing.T) *SQLLocationStore {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "foodcart",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:testpass@%s:%s/foodcart?sslmode=disable", host, port.Port())
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, repositories.InitSchema(ctx, db, repositories.DriverPostgres))

	return NewSQLLocationStore(db, nil)
}

func TestSQLLocationStore_Postgres(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok, err := s.Get(ctx, "Tverskaya 1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Upsert(ctx, "Tverskaya 1", &domain.Coordinates{Lat: 55.76, Lon: 37.62}, first))
	loc, ok, err := s.Get(ctx, "Tverskaya 1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, loc.Coordinates)
	assert.InDelta(t, 55.76, loc.Coordinates.Lat, 1e-9)
	assert.True(t, loc.UpdatedAt.Equal(first))

	later := first.Add(31 * 24 * time.Hour)
	require.NoError(t, s.Upsert(ctx, "Tverskaya 1", nil, later))
	loc, ok, err = s.Get(ctx, "Tverskaya 1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, loc.Coordinates)
	assert.True(t, loc.CreatedAt.Equal(first))
	assert.True(t, loc.UpdatedAt.Equal(later))

	page, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLLocationStore_PostgresConcurrentUpsert(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &domain.Coordinates{Lat: float64(i), Lon: float64(i)}
			assert.NoError(t, s.Upsert(ctx, "same address", c, time.Now()))
		}(i)
	}
	wg.Wait()

	page, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1, "one row per address")
}
