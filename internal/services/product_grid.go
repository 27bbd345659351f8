package services

import (
	"context"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/ports"
	"sort"
)

// ProductGrid is the product x restaurant availability table managers use
// to see which kitchen has run out of what.
type ProductGrid struct {
	Restaurants []*domain.Restaurant
	Rows        []ProductRow
}

// ProductRow holds one flag per grid restaurant, in the same order.
// A restaurant without a menu item for the product counts as unavailable.
type ProductRow struct {
	Product   *domain.Product
	Available []bool
}

func BuildProductGrid(restaurants []*domain.Restaurant, products []*domain.Product, items []domain.MenuItem) ProductGrid {
	ordered := make([]*domain.Restaurant, len(restaurants))
	copy(ordered, restaurants)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	type key struct{ restaurant, product int }
	flags := make(map[key]bool, len(items))
	for _, it := range items {
		flags[key{it.RestaurantID, it.ProductID}] = it.Availability
	}

	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		row := ProductRow{Product: p, Available: make([]bool, len(ordered))}
		for i, r := range ordered {
			row.Available[i] = flags[key{r.ID, p.ID}]
		}
		rows = append(rows, row)
	}

	return ProductGrid{Restaurants: ordered, Rows: rows}
}

// LoadProductGrid reads the catalogue and builds the grid.
func LoadProductGrid(ctx context.Context, repo ports.OrderRepository) (ProductGrid, error) {
	restaurants, err := repo.ListRestaurants(ctx)
	if err != nil {
		return ProductGrid{}, fmt.Errorf("product grid: list restaurants: %w", err)
	}
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return ProductGrid{}, fmt.Errorf("product grid: list products: %w", err)
	}
	items, err := repo.ListMenuItems(ctx)
	if err != nil {
		return ProductGrid{}, fmt.Errorf("product grid: list menu items: %w", err)
	}

	return BuildProductGrid(restaurants, products, items), nil
}
