package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DriverPostgres = "pgx"
	DriverSqlite   = "sqlite"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS product_categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category_id INTEGER REFERENCES product_categories(id) ON DELETE SET NULL,
		price REAL NOT NULL CHECK (price >= 0),
		special_status INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS restaurant_menu_items (
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		availability INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (restaurant_id, product_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'unprocessed',
		payment_method TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		firstname TEXT NOT NULL,
		lastname TEXT NOT NULL,
		phonenumber TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		registered_at TEXT NOT NULL,
		called_at TEXT,
		delivered_at TEXT
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 99),
		price REAL NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS cached_locations (
		address TEXT PRIMARY KEY,
		lat REAL,
		lon REAL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
	`CREATE INDEX IF NOT EXISTS idx_cached_locations_updated_at ON cached_locations(updated_at);`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS restaurants (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS product_categories (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		category_id BIGINT REFERENCES product_categories(id) ON DELETE SET NULL,
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		special_status BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS restaurant_menu_items (
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		availability BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (restaurant_id, product_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'unprocessed',
		payment_method TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		firstname TEXT NOT NULL,
		lastname TEXT NOT NULL,
		phonenumber TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		called_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 99),
		price DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS cached_locations (
		address VARCHAR(255) PRIMARY KEY,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
	`CREATE INDEX IF NOT EXISTS idx_cached_locations_updated_at ON cached_locations(updated_at);`,
}

// Initialize the database schema for the given driver.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	var statements []string
	switch driver {
	case DriverSqlite:
		statements = sqliteSchema
	case DriverPostgres:
		statements = postgresSchema
	default:
		return fmt.Errorf("init schema: unsupported driver %q", driver)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
// Queries passed here must not contain literal question marks.
func rebind(driver, q string) string {
	if driver != DriverPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
