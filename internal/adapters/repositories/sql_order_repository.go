package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/platform/obs"
	"time"

	"go.uber.org/zap"
)

// SQLOrderRepository reads orders and the catalogue through database/sql.
// Queries carry no placeholders so the same text runs on SQLite and Postgres.
type SQLOrderRepository struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewSQLOrderRepository(db *sql.DB, log *zap.Logger) *SQLOrderRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLOrderRepository{DB: db, log: log}
}

// Retrieve unprocessed orders with their items, ordered by registration time.
func (r *SQLOrderRepository) ListUnprocessedOrders(ctx context.Context) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, r.log, "ListUnprocessedOrders")(&err)

	query := `
	SELECT id, status, payment_method, address, firstname, lastname, phonenumber, comments,
		registered_at, called_at, delivered_at
	FROM orders
	WHERE status = 'unprocessed'
	ORDER BY registered_at, id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed orders: query: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[int]*domain.Order)
	for rows.Next() {
		var (
			o                   domain.Order
			status, payment     string
			registered          dbTime
			calledAt, delivered dbTime
		)
		if err := rows.Scan(
			&o.ID, &status, &payment, &o.Address, &o.FirstName, &o.LastName, &o.Phone, &o.Comments,
			&registered, &calledAt, &delivered,
		); err != nil {
			return nil, fmt.Errorf("list unprocessed orders: scan: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.PaymentMethod = domain.PaymentMethod(payment)
		o.RegisteredAt = registered.Time
		o.CalledAt = calledAt.ptr()
		o.DeliveredAt = delivered.ptr()

		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unprocessed orders: rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsQuery := `
	SELECT oi.order_id, oi.product_id, oi.quantity, oi.price
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	WHERE o.status = 'unprocessed'
	ORDER BY oi.order_id, oi.id;
	`
	itemRows, err := r.DB.QueryContext(ctx, itemsQuery)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed orders: query items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID int
			it      domain.OrderItem
		)
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("list unprocessed orders: scan item: %w", err)
		}
		// An order may flip status between the two queries.
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("list unprocessed orders: item rows: %w", err)
	}

	return orders, nil
}

func (r *SQLOrderRepository) ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error) {
	query := `
	SELECT id, name, address, contact_phone
	FROM restaurants
	ORDER BY name, id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: query: %w", err)
	}
	defer rows.Close()

	var restaurants []*domain.Restaurant
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.ContactPhone); err != nil {
			return nil, fmt.Errorf("list restaurants: scan: %w", err)
		}
		restaurants = append(restaurants, &rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list restaurants: rows: %w", err)
	}

	return restaurants, nil
}

func (r *SQLOrderRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
	SELECT id, name, category_id, price, special_status, description
	FROM products
	ORDER BY name, id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: query: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var (
			p        domain.Product
			category sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &category, &p.Price, &p.SpecialStatus, &p.Description); err != nil {
			return nil, fmt.Errorf("list products: scan: %w", err)
		}
		if category.Valid {
			id := int(category.Int64)
			p.CategoryID = &id
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: rows: %w", err)
	}

	return products, nil
}

func (r *SQLOrderRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	query := `
	SELECT restaurant_id, product_id, availability
	FROM restaurant_menu_items
	ORDER BY restaurant_id, product_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list menu items: query: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.RestaurantID, &m.ProductID, &m.Availability); err != nil {
			return nil, fmt.Errorf("list menu items: scan: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list menu items: rows: %w", err)
	}

	return items, nil
}

// dbTime scans TIMESTAMPTZ values from Postgres and RFC3339 text from SQLite.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("dbTime: unsupported type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("dbTime: parse %q: %w", s, err)
	}
	t.Time, t.Valid = parsed, true
	return nil
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
