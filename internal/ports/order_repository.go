package ports

import (
	"context"
	"foodcart-service/internal/domain"
)

// Port: read access to orders and the restaurant catalogue.
type OrderRepository interface {
	// Retrieve orders with status "unprocessed", items included.
	ListUnprocessedOrders(ctx context.Context) ([]*domain.Order, error)
	ListRestaurants(ctx context.Context) ([]*domain.Restaurant, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	// Retrieve the restaurant x product availability table.
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
}
