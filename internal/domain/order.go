package domain

import "time"

type OrderStatus string

const (
	OrderStatusUnprocessed OrderStatus = "unprocessed"
	OrderStatusUnderway    OrderStatus = "underway"
	OrderStatusDelivery    OrderStatus = "delivery"
	OrderStatusCompleted   OrderStatus = "completed"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentElectronic PaymentMethod = "electronic"
)

// Represents a customer order awaiting or undergoing fulfillment.
// Items carry the price captured at the moment the order was placed.
type Order struct {
	ID            int
	Status        OrderStatus
	PaymentMethod PaymentMethod
	Address       string
	FirstName     string
	LastName      string
	Phone         string
	Comments      string
	RegisteredAt  time.Time
	CalledAt      *time.Time
	DeliveredAt   *time.Time
	Items         []OrderItem
}

// A single line of an order.
type OrderItem struct {
	ProductID int
	Quantity  int
	Price     float64
}

// TotalPrice sums price x quantity over all items.
func (o *Order) TotalPrice() float64 {
	total := 0.0
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
