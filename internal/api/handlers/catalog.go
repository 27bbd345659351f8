package handlers

import (
	"foodcart-service/internal/api/dto"
	"foodcart-service/internal/ports"
	"foodcart-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler exposes read-only restaurant and product views.
type CatalogHandler struct {
	Repo ports.OrderRepository
	Log  *zap.Logger
}

func (h *CatalogHandler) Restaurants(c *gin.Context) {
	restaurants, err := h.Repo.ListRestaurants(c.Request.Context())
	if err != nil {
		h.Log.Error("list restaurants failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRestaurantsResponse{Restaurants: make([]dto.RestaurantResponse, 0, len(restaurants))}
	for _, r := range restaurants {
		res.Restaurants = append(res.Restaurants, restaurantResponse(r))
	}

	c.JSON(http.StatusOK, res)
}

// Products returns the product x restaurant availability grid.
func (h *CatalogHandler) Products(c *gin.Context) {
	grid, err := services.LoadProductGrid(c.Request.Context(), h.Repo)
	if err != nil {
		h.Log.Error("load product grid failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ProductGridResponse{
		Restaurants: make([]dto.RestaurantResponse, 0, len(grid.Restaurants)),
		Products:    make([]dto.ProductAvailabilityResponse, 0, len(grid.Rows)),
	}
	for _, r := range grid.Restaurants {
		res.Restaurants = append(res.Restaurants, restaurantResponse(r))
	}
	for _, row := range grid.Rows {
		p := row.Product
		res.Products = append(res.Products, dto.ProductAvailabilityResponse{
			Product: dto.ProductResponse{
				ID:            p.ID,
				Name:          p.Name,
				CategoryID:    p.CategoryID,
				Price:         p.Price,
				SpecialStatus: p.SpecialStatus,
				Description:   p.Description,
			},
			Availability: row.Available,
		})
	}

	c.JSON(http.StatusOK, res)
}
