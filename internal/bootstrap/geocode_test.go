package bootstrap

import (
	"context"
	"database/sql"
	"foodcart-service/internal/adapters/cache"
	"foodcart-service/internal/adapters/repositories"
	"foodcart-service/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func testConfig(baseURL string) config.Config {
	var cfg config.Config
	cfg.DB.Driver = "sqlite"
	cfg.Geocoder.APIKey = "test-key"
	cfg.Geocoder.BaseURL = baseURL
	cfg.Geocoder.Timeout = time.Second
	cfg.Cache.StoreTTL = 720 * time.Hour
	cfg.Cache.MemoryTTL = time.Hour
	return cfg
}

func sqliteDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), database, repositories.DriverSqlite))
	return database
}

func yandexStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[
			{"GeoObject":{"Point":{"pos":"37.62 55.76"}}}]}}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewGeocodeStack_MemoryTier(t *testing.T) {
	srv := yandexStub(t)
	database := sqliteDB(t)

	stack, err := NewGeocodeStack(context.Background(), testConfig(srv.URL), database, zap.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	assert.IsType(t, &cache.SqliteLocationStore{}, stack.Store)

	got, ok := stack.Cache.Resolve(context.Background(), "Moscow, Tverskaya 1")
	require.True(t, ok)
	assert.Equal(t, 55.76, got.Lat)
	assert.Equal(t, 37.62, got.Lon)

	loc, found, err := stack.Store.Get(context.Background(), "Moscow, Tverskaya 1")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotNil(t, loc.Coordinates)
}

func TestNewGeocodeStack_RedisTier(t *testing.T) {
	srv := yandexStub(t)
	mr := miniredis.RunT(t)

	cfg := testConfig(srv.URL)
	cfg.Cache.RedisURL = "redis://" + mr.Addr()

	stack, err := NewGeocodeStack(context.Background(), cfg, sqliteDB(t), zap.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	_, ok := stack.Cache.Resolve(context.Background(), "Moscow, Tverskaya 1")
	require.True(t, ok)
	assert.True(t, mr.Exists("geocode_Moscow, Tverskaya 1"))
}

func TestNewGeocodeStack_Errors(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")

	cfg.Geocoder.APIKey = ""
	_, err := NewGeocodeStack(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig("http://127.0.0.1:1")
	cfg.DB.Driver = "mysql"
	_, err = NewGeocodeStack(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig("http://127.0.0.1:1")
	cfg.Cache.RedisURL = "redis://127.0.0.1:1"
	_, err = NewGeocodeStack(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
