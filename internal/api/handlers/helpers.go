package handlers

import (
	"foodcart-service/internal/api/dto"
	"foodcart-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func restaurantResponse(r *domain.Restaurant) dto.RestaurantResponse {
	return dto.RestaurantResponse{
		ID:           r.ID,
		Name:         r.Name,
		Address:      r.Address,
		ContactPhone: r.ContactPhone,
	}
}
