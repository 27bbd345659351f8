package services

import (
	"context"
	"errors"
	"foodcart-service/internal/adapters/cache"
	"foodcart-service/internal/adapters/geocoder"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/clock"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restaurant(id int, name, address string) *domain.Restaurant {
	return &domain.Restaurant{ID: id, Name: name, Address: address}
}

func TestPlan_SortsByDistanceWithMarkersLast(t *testing.T) {
	// Candidate distances conceptually [null, 3.2, error, 1.1].
	restaurants := []*domain.Restaurant{
		restaurant(1, "A", "no coords"),
		restaurant(2, "B", "far"),
		restaurant(3, "C", "broken"),
		restaurant(4, "D", "near"),
	}
	resolver := &staticResolver{coords: map[string]domain.Coordinates{
		"order":  {Lat: 0, Lon: 0},
		"far":    {Lat: 3.2},
		"broken": {Lat: -1},
		"near":   {Lat: 1.1},
	}}
	catalog := NewCatalog(restaurants, menu([2]int{1, 10}, [2]int{2, 10}, [2]int{3, 10}, [2]int{4, 10}))
	planner := NewFulfillmentPlanner(resolver, latAsDistance{}, 4, nil)

	order := &domain.Order{ID: 1, Address: "order", Items: orderOf(10)}
	plan, err := planner.Plan(context.Background(), order, catalog)
	require.NoError(t, err)
	require.Len(t, plan.Candidates, 4)
	assert.Same(t, order, plan.Order)

	assert.Equal(t, 4, plan.Candidates[0].Restaurant.ID)
	assert.Equal(t, "1.1 km", plan.Candidates[0].Display())
	assert.Equal(t, 2, plan.Candidates[1].Restaurant.ID)
	assert.Equal(t, "3.2 km", plan.Candidates[1].Display())

	markers := []string{plan.Candidates[2].Display(), plan.Candidates[3].Display()}
	assert.ElementsMatch(t, []string{domain.MarkerCoordinatesUnavailable, domain.MarkerDistanceError}, markers)
}

func TestPlan_RoundsToTwoDecimals(t *testing.T) {
	resolver := &staticResolver{coords: map[string]domain.Coordinates{
		"order": {},
		"r":     {Lat: 6.78912},
	}}
	catalog := NewCatalog([]*domain.Restaurant{restaurant(1, "R", "r")}, menu([2]int{1, 10}))
	planner := NewFulfillmentPlanner(resolver, latAsDistance{}, 2, nil)

	plan, err := planner.Plan(context.Background(), &domain.Order{Address: "order", Items: orderOf(10)}, catalog)
	require.NoError(t, err)
	require.Len(t, plan.Candidates, 1)
	assert.Equal(t, 6.79, plan.Candidates[0].DistanceKm)
	assert.Equal(t, "6.79 km", plan.Candidates[0].Display())
}

func TestPlan_NoFulfillingRestaurant(t *testing.T) {
	resolver := &staticResolver{}
	catalog := NewCatalog([]*domain.Restaurant{restaurant(1, "R", "r")}, menu([2]int{1, 10}))
	planner := NewFulfillmentPlanner(resolver, GreatCircle{}, 2, nil)

	plan, err := planner.Plan(context.Background(), &domain.Order{Address: "order", Items: orderOf(10, 99)}, catalog)
	require.NoError(t, err)
	assert.Empty(t, plan.Candidates)
	assert.Equal(t, int32(1), resolver.calls.Load(), "order address is still resolved")
}

func TestPlan_MoscowScenario(t *testing.T) {
	clk := clock.NewMockClock(t0)
	geo := geocoder.NewMockGeocoder(map[string]domain.Coordinates{
		"Moscow, Tverskaya 1": {Lat: 55.76, Lon: 37.62},
		"Moscow, Yakimanka 5": {Lat: 55.70, Lon: 37.60},
	})
	gc := NewGeocodeCache(cache.NewMemoryLocationCache(clk), newMemStore(), geo, WithClock(clk))
	planner := NewFulfillmentPlanner(gc, GreatCircle{}, 4, nil)

	catalog := NewCatalog([]*domain.Restaurant{restaurant(1, "Star Burger", "Moscow, Yakimanka 5")}, menu([2]int{1, 10}))
	plan, err := planner.Plan(context.Background(), &domain.Order{Address: "Moscow, Tverskaya 1", Items: orderOf(10)}, catalog)
	require.NoError(t, err)
	require.Len(t, plan.Candidates, 1)

	c := plan.Candidates[0]
	require.Equal(t, domain.CandidateResolved, c.Status)
	assert.InDelta(t, 6.7, c.DistanceKm, 0.15)
	assert.True(t, strings.HasSuffix(c.Display(), " km"), c.Display())
}

func TestPlan_OrderAddressTransientFailure(t *testing.T) {
	clk := clock.NewMockClock(t0)
	store := newMemStore()
	geo := geocoder.NewMockGeocoder(map[string]domain.Coordinates{
		"Moscow, Yakimanka 5": {Lat: 55.70, Lon: 37.60},
		"Moscow, Arbat 12":    {Lat: 55.75, Lon: 37.59},
	})
	geo.Fail("Moscow, Tverskaya 1")
	gc := NewGeocodeCache(cache.NewMemoryLocationCache(clk), store, geo, WithClock(clk))
	planner := NewFulfillmentPlanner(gc, GreatCircle{}, 4, nil)

	catalog := NewCatalog(
		[]*domain.Restaurant{
			restaurant(1, "Yakimanka", "Moscow, Yakimanka 5"),
			restaurant(2, "Arbat", "Moscow, Arbat 12"),
		},
		menu([2]int{1, 10}, [2]int{2, 10}),
	)
	plan, err := planner.Plan(context.Background(), &domain.Order{Address: "Moscow, Tverskaya 1", Items: orderOf(10)}, catalog)
	require.NoError(t, err)
	require.Len(t, plan.Candidates, 2)

	for _, c := range plan.Candidates {
		assert.Equal(t, domain.MarkerCoordinatesUnavailable, c.Display())
	}

	rec, ok := store.record("Moscow, Tverskaya 1")
	require.True(t, ok)
	assert.Nil(t, rec.Coordinates, "failed address is cached as a negative record")
}

func TestPlan_EqualKeysKeepNameOrder(t *testing.T) {
	resolver := &staticResolver{coords: map[string]domain.Coordinates{"order": {}}}
	restaurants := []*domain.Restaurant{
		restaurant(3, "Charlie", "x"),
		restaurant(1, "Alpha", "y"),
		restaurant(2, "Bravo", "z"),
	}
	catalog := NewCatalog(restaurants, menu([2]int{1, 10}, [2]int{2, 10}, [2]int{3, 10}))
	planner := NewFulfillmentPlanner(resolver, latAsDistance{}, 3, nil)

	plan, err := planner.Plan(context.Background(), &domain.Order{Address: "order", Items: orderOf(10)}, catalog)
	require.NoError(t, err)

	var names []string
	for _, c := range plan.Candidates {
		names = append(names, c.Restaurant.Name)
	}
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names)
}

func TestPlan_CanceledContext(t *testing.T) {
	resolver := &staticResolver{coords: map[string]domain.Coordinates{"order": {}, "r": {}}}
	catalog := NewCatalog([]*domain.Restaurant{restaurant(1, "R", "r")}, menu([2]int{1, 10}))
	planner := NewFulfillmentPlanner(resolver, GreatCircle{}, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := planner.Plan(ctx, &domain.Order{Address: "order", Items: orderOf(10)}, catalog)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPlanUnprocessed(t *testing.T) {
	repo := &fakeRepo{
		orders: []*domain.Order{
			{ID: 1, Address: "o1", Items: orderOf(10)},
			{ID: 2, Address: "o2", Items: orderOf(10, 20)},
			{ID: 3, Address: "o3", Items: orderOf(99)},
		},
		restaurants: []*domain.Restaurant{restaurant(1, "A", "r1"), restaurant(2, "B", "r2")},
		items:       menu([2]int{1, 10}, [2]int{2, 10}, [2]int{2, 20}),
	}
	resolver := &staticResolver{coords: map[string]domain.Coordinates{
		"o1": {}, "o2": {}, "o3": {},
		"r1": {Lat: 5}, "r2": {Lat: 2},
	}}
	planner := NewFulfillmentPlanner(resolver, latAsDistance{}, 3, nil)

	plans, err := planner.PlanUnprocessed(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	assert.Equal(t, 1, plans[0].Order.ID)
	require.Len(t, plans[0].Candidates, 2)
	assert.Equal(t, "B", plans[0].Candidates[0].Restaurant.Name)
	assert.Equal(t, "A", plans[0].Candidates[1].Restaurant.Name)

	assert.Equal(t, 2, plans[1].Order.ID)
	require.Len(t, plans[1].Candidates, 1)
	assert.Equal(t, 2, plans[1].Candidates[0].Restaurant.ID)

	assert.Equal(t, 3, plans[2].Order.ID)
	assert.Empty(t, plans[2].Candidates)
}

func TestPlanUnprocessed_RepositoryError(t *testing.T) {
	planner := NewFulfillmentPlanner(&staticResolver{}, GreatCircle{}, 2, nil)

	_, err := planner.PlanUnprocessed(context.Background(), &fakeRepo{err: errors.New("db down")})
	assert.ErrorContains(t, err, "db down")
}

func TestPlanUnprocessed_BoundsConcurrentLookups(t *testing.T) {
	const workers = 3

	var (
		orders      []*domain.Order
		restaurants []*domain.Restaurant
		items       []domain.MenuItem
		coords      = map[string]domain.Coordinates{}
	)
	for i := 1; i <= 10; i++ {
		addr := "r" + string(rune('a'+i))
		restaurants = append(restaurants, restaurant(i, addr, addr))
		items = append(items, domain.MenuItem{RestaurantID: i, ProductID: 10, Availability: true})
		coords[addr] = domain.Coordinates{Lat: float64(i)}
	}
	for i := 1; i <= 10; i++ {
		addr := "o" + string(rune('a'+i))
		orders = append(orders, &domain.Order{ID: i, Address: addr, Items: orderOf(10)})
		coords[addr] = domain.Coordinates{}
	}

	resolver := &staticResolver{coords: coords, delay: 2 * time.Millisecond}
	planner := NewFulfillmentPlanner(resolver, latAsDistance{}, workers, nil)

	plans, err := planner.PlanUnprocessed(context.Background(), &fakeRepo{orders: orders, restaurants: restaurants, items: items})
	require.NoError(t, err)
	require.Len(t, plans, 10)
	for _, p := range plans {
		require.Len(t, p.Candidates, 10)
		assert.Equal(t, "1 km", p.Candidates[0].Display())
	}

	assert.LessOrEqual(t, resolver.peak.Load(), int32(workers))
	assert.Equal(t, int32(10+10*10), resolver.calls.Load())
}
