package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// required: values that differ per deployment (API keys, database URL).
// default: values shared by all environments (timeouts, TTLs).
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Geocoder GeocoderConfig
	Cache    CacheConfig
	Planner  PlannerConfig
	Log      LogConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path        string `envconfig:"DB_PATH" default:"data/app.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SeedPath    string `envconfig:"SEED_PATH" default:"data/seeds/catalog.json"`
}

type GeocoderConfig struct {
	APIKey  string        `envconfig:"YANDEX_API_KEY" required:"true"`
	BaseURL string        `envconfig:"GEOCODER_BASE_URL" default:"https://geocode-maps.yandex.ru/1.x"`
	Timeout time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	StoreTTL  time.Duration `envconfig:"GEOCODE_STORE_TTL" default:"720h"`
	MemoryTTL time.Duration `envconfig:"GEOCODE_MEMORY_TTL" default:"1h"`
	// Empty selects the in-process memory cache.
	RedisURL string `envconfig:"REDIS_URL"`
}

type PlannerConfig struct {
	Workers         int    `envconfig:"PLANNER_WORKERS" default:"8"`
	DistanceFormula string `envconfig:"DISTANCE_FORMULA" default:"greatcircle"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type CORSConfig struct {
	AllowOrigins []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,OPTIONS"`
	AllowHeaders []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	MaxAge       time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

// DSN returns the data source name for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == "pgx" {
		return c.DatabaseURL
	}
	return c.Path
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Geocoder.APIKey) == "" {
		return errors.New("YANDEX_API_KEY is required")
	}

	switch c.DB.Driver {
	case "sqlite":
	case "pgx":
		if strings.TrimSpace(c.DB.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=pgx")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", c.DB.Driver)
	}

	if c.Geocoder.Timeout <= 0 {
		return errors.New("GEOCODER_TIMEOUT must be positive")
	}
	if c.Cache.StoreTTL <= 0 || c.Cache.MemoryTTL <= 0 {
		return errors.New("GEOCODE_STORE_TTL and GEOCODE_MEMORY_TTL must be positive")
	}
	if c.Planner.Workers < 1 {
		return errors.New("PLANNER_WORKERS must be at least 1")
	}

	switch c.Planner.DistanceFormula {
	case "greatcircle", "vincenty":
	default:
		return fmt.Errorf("DISTANCE_FORMULA must be greatcircle or vincenty, got %q", c.Planner.DistanceFormula)
	}

	return nil
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
