package dto

type RestaurantResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

type ListRestaurantsResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
}

type ProductResponse struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	CategoryID    *int    `json:"category_id"`
	Price         float64 `json:"price"`
	SpecialStatus bool    `json:"special_status"`
	Description   string  `json:"description"`
}

// ProductAvailabilityResponse carries one flag per entry of
// ProductGridResponse.Restaurants, in the same order.
type ProductAvailabilityResponse struct {
	Product      ProductResponse `json:"product"`
	Availability []bool          `json:"availability"`
}

type ProductGridResponse struct {
	Restaurants []RestaurantResponse          `json:"restaurants"`
	Products    []ProductAvailabilityResponse `json:"products"`
}
