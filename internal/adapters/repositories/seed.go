package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type CatalogSeed struct {
	Restaurants []RestaurantSeed `json:"restaurants"`
	Categories  []CategorySeed   `json:"categories"`
	Products    []ProductSeed    `json:"products"`
	MenuItems   []MenuItemSeed   `json:"menu_items"`
	Orders      []OrderSeed      `json:"orders"`
}

type RestaurantSeed struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

type CategorySeed struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductSeed struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	CategoryID    *int    `json:"category_id"`
	Price         float64 `json:"price"`
	SpecialStatus bool    `json:"special_status"`
	Description   string  `json:"description"`
}

type MenuItemSeed struct {
	RestaurantID int  `json:"restaurant_id"`
	ProductID    int  `json:"product_id"`
	Availability bool `json:"availability"`
}

type OrderSeed struct {
	ID            int             `json:"id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Address       string          `json:"address"`
	FirstName     string          `json:"firstname"`
	LastName      string          `json:"lastname"`
	Phone         string          `json:"phonenumber"`
	Comments      string          `json:"comments"`
	RegisteredAt  time.Time       `json:"registered_at"`
	Items         []OrderItemSeed `json:"items"`
}

type OrderItemSeed struct {
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Populate the database with catalogue and order data from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, driver, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed catalog: read %q: %w", jsonPath, err)
	}

	var data CatalogSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed catalog: parse json: %w", err)
	}

	return Seed(ctx, db, driver, data)
}

// Seed upserts the catalogue in a single transaction. Order items are replaced per order.
func Seed(ctx context.Context, db *sql.DB, driver string, data CatalogSeed) error {
	if db == nil {
		return errors.New("seed catalog: DB is nil")
	}
	if err := validateSeed(data); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range data.Restaurants {
		q := rebind(driver, `
		INSERT INTO restaurants (id, name, address, contact_phone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			contact_phone = excluded.contact_phone;
		`)
		if _, err := tx.ExecContext(ctx, q, r.ID, strings.TrimSpace(r.Name), strings.TrimSpace(r.Address), r.ContactPhone); err != nil {
			return fmt.Errorf("seed catalog: insert restaurant id=%d: %w", r.ID, err)
		}
	}

	for _, c := range data.Categories {
		q := rebind(driver, `
		INSERT INTO product_categories (id, name)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name;
		`)
		if _, err := tx.ExecContext(ctx, q, c.ID, c.Name); err != nil {
			return fmt.Errorf("seed catalog: insert category id=%d: %w", c.ID, err)
		}
	}

	for _, p := range data.Products {
		q := rebind(driver, `
		INSERT INTO products (id, name, category_id, price, special_status, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			category_id = excluded.category_id,
			price = excluded.price,
			special_status = excluded.special_status,
			description = excluded.description;
		`)
		var category sql.NullInt64
		if p.CategoryID != nil {
			category = sql.NullInt64{Int64: int64(*p.CategoryID), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, q, p.ID, p.Name, category, p.Price, p.SpecialStatus, p.Description); err != nil {
			return fmt.Errorf("seed catalog: insert product id=%d: %w", p.ID, err)
		}
	}

	for _, m := range data.MenuItems {
		q := rebind(driver, `
		INSERT INTO restaurant_menu_items (restaurant_id, product_id, availability)
		VALUES (?, ?, ?)
		ON CONFLICT (restaurant_id, product_id) DO UPDATE SET availability = excluded.availability;
		`)
		if _, err := tx.ExecContext(ctx, q, m.RestaurantID, m.ProductID, m.Availability); err != nil {
			return fmt.Errorf("seed catalog: insert menu item restaurant=%d product=%d: %w", m.RestaurantID, m.ProductID, err)
		}
	}

	for _, o := range data.Orders {
		status := o.Status
		if status == "" {
			status = "unprocessed"
		}
		registered := o.RegisteredAt
		if registered.IsZero() {
			registered = time.Now()
		}

		q := rebind(driver, `
		INSERT INTO orders (id, status, payment_method, address, firstname, lastname, phonenumber, comments, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			payment_method = excluded.payment_method,
			address = excluded.address,
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			phonenumber = excluded.phonenumber,
			comments = excluded.comments,
			registered_at = excluded.registered_at;
		`)
		if _, err := tx.ExecContext(ctx, q,
			o.ID, status, o.PaymentMethod, strings.TrimSpace(o.Address),
			o.FirstName, o.LastName, o.Phone, o.Comments, timeArg(driver, registered),
		); err != nil {
			return fmt.Errorf("seed catalog: insert order id=%d: %w", o.ID, err)
		}

		if _, err := tx.ExecContext(ctx, rebind(driver, `DELETE FROM order_items WHERE order_id = ?;`), o.ID); err != nil {
			return fmt.Errorf("seed catalog: clear items for order id=%d: %w", o.ID, err)
		}
		for _, it := range o.Items {
			q := rebind(driver, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?);
			`)
			if _, err := tx.ExecContext(ctx, q, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
				return fmt.Errorf("seed catalog: insert item product=%d for order id=%d: %w", it.ProductID, o.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalog: commit tx: %w", err)
	}

	return nil
}

func validateSeed(data CatalogSeed) error {
	for i, r := range data.Restaurants {
		if r.ID <= 0 {
			return fmt.Errorf("invalid restaurant id at index %d: %d", i+1, r.ID)
		}
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("restaurant at index %d: name cannot be empty", i+1)
		}
	}
	for i, p := range data.Products {
		if p.ID <= 0 {
			return fmt.Errorf("invalid product id at index %d: %d", i+1, p.ID)
		}
		if p.Price < 0 {
			return fmt.Errorf("product id=%d: negative price", p.ID)
		}
	}
	for i, o := range data.Orders {
		if o.ID <= 0 {
			return fmt.Errorf("invalid order id at index %d: %d", i+1, o.ID)
		}
		if strings.TrimSpace(o.Address) == "" {
			return fmt.Errorf("order id=%d: address cannot be empty", o.ID)
		}
		for _, it := range o.Items {
			if it.Quantity < 1 || it.Quantity > 99 {
				return fmt.Errorf("order id=%d: quantity %d out of range", o.ID, it.Quantity)
			}
		}
	}
	return nil
}

// SQLite stores timestamps as RFC3339 text; Postgres takes time.Time natively.
func timeArg(driver string, t time.Time) any {
	if driver == DriverSqlite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}
