package domain

// Restaurant is a kitchen that can fulfill orders from its menu.
type Restaurant struct {
	ID           int
	Name         string
	Address      string
	ContactPhone string
}

// Product is a catalogue item that restaurants may stock.
type Product struct {
	ID            int
	Name          string
	CategoryID    *int
	Price         float64
	SpecialStatus bool
	Description   string
}

// MenuItem links a restaurant to a product it can prepare.
// Availability is toggled by staff when the item runs out.
type MenuItem struct {
	RestaurantID int
	ProductID    int
	Availability bool
}
