package dto

import "time"

type OrderItemResponse struct {
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CandidateResponse is one restaurant able to cook the order. DistanceKm is
// null when Distance holds an error marker instead of a number.
type CandidateResponse struct {
	RestaurantID   int      `json:"restaurant_id"`
	RestaurantName string   `json:"restaurant_name"`
	Address        string   `json:"address"`
	Distance       string   `json:"distance"`
	DistanceKm     *float64 `json:"distance_km"`
}

type OrderResponse struct {
	ID            int                 `json:"id"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Address       string              `json:"address"`
	FirstName     string              `json:"firstname"`
	LastName      string              `json:"lastname"`
	Phone         string              `json:"phonenumber"`
	Comments      string              `json:"comments"`
	RegisteredAt  time.Time           `json:"registered_at"`
	CalledAt      *time.Time          `json:"called_at"`
	DeliveredAt   *time.Time          `json:"delivered_at"`
	TotalPrice    float64             `json:"total_price"`
	Items         []OrderItemResponse `json:"items"`
	Restaurants   []CandidateResponse `json:"restaurants"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
