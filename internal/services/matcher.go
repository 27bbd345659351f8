package services

import (
	"foodcart-service/internal/domain"
	"sort"
)

// Availability maps a product id to the restaurants that currently have it
// available, in ascending restaurant id order. Built once per planning pass
// and read-only afterwards.
type Availability map[int][]int

func BuildAvailability(items []domain.MenuItem) Availability {
	av := make(Availability)
	for _, it := range items {
		if !it.Availability {
			continue
		}
		av[it.ProductID] = append(av[it.ProductID], it.RestaurantID)
	}
	for _, ids := range av {
		sort.Ints(ids)
	}
	return av
}

// MatchRestaurants returns the restaurants able to prepare every product in
// items. A product nobody stocks, or an order without items, yields an empty set.
func MatchRestaurants(items []domain.OrderItem, av Availability) map[int]struct{} {
	var candidates map[int]struct{}

	for _, it := range items {
		stocked, ok := av[it.ProductID]
		if !ok || len(stocked) == 0 {
			return map[int]struct{}{}
		}

		if candidates == nil {
			candidates = make(map[int]struct{}, len(stocked))
			for _, id := range stocked {
				candidates[id] = struct{}{}
			}
			continue
		}

		keep := make(map[int]struct{}, len(stocked))
		for _, id := range stocked {
			if _, ok := candidates[id]; ok {
				keep[id] = struct{}{}
			}
		}
		candidates = keep
		if len(candidates) == 0 {
			return candidates
		}
	}

	if candidates == nil {
		return map[int]struct{}{}
	}
	return candidates
}
