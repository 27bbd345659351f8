package dto

import "time"

type LocationResponse struct {
	Address   string    `json:"address"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Expired   bool      `json:"expired"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}
