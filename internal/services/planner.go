package services

import (
	"context"
	"errors"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/platform/obs"
	"foodcart-service/internal/ports"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultPlannerWorkers = 8

// Catalog is the snapshot one planning pass works from.
type Catalog struct {
	Restaurants  map[int]*domain.Restaurant
	Availability Availability
}

func NewCatalog(restaurants []*domain.Restaurant, items []domain.MenuItem) *Catalog {
	byID := make(map[int]*domain.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}
	return &Catalog{Restaurants: byID, Availability: BuildAvailability(items)}
}

// FulfillmentPlanner lists, for each pending order, the restaurants that can
// cook all of it, nearest first.
//
// Orders are planned concurrently and restaurants within an order are
// resolved concurrently. Every address resolution takes a slot from one
// shared semaphore, so the number of in-flight lookups never exceeds the
// worker count no matter how the fan-out nests.
type FulfillmentPlanner struct {
	resolver ports.AddressResolver
	distance ports.DistanceCalculator
	workers  int
	slots    *semaphore.Weighted
	log      *zap.Logger
}

func NewFulfillmentPlanner(resolver ports.AddressResolver, distance ports.DistanceCalculator, workers int, log *zap.Logger) *FulfillmentPlanner {
	if workers < 1 {
		workers = DefaultPlannerWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FulfillmentPlanner{
		resolver: resolver,
		distance: distance,
		workers:  workers,
		slots:    semaphore.NewWeighted(int64(workers)),
		log:      log,
	}
}

// Plan builds the sorted candidate list for one order. The only error is the
// caller's context ending; every other failure becomes a candidate marker.
func (p *FulfillmentPlanner) Plan(ctx context.Context, order *domain.Order, catalog *Catalog) (domain.OrderPlan, error) {
	if order == nil {
		return domain.OrderPlan{}, errors.New("plan order: order is nil")
	}

	restaurants := p.candidates(order, catalog)
	plan := domain.OrderPlan{Order: order, Candidates: make([]domain.FulfillmentCandidate, len(restaurants))}

	// The order address is resolved even without candidates so the cache is warm
	// once a restaurant restocks.
	orderCoords, orderOK := p.resolve(ctx, order.Address)
	if len(restaurants) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.OrderPlan{}, fmt.Errorf("plan order id=%d: %w", order.ID, err)
		}
		return plan, nil
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, r := range restaurants {
		g.Go(func() error {
			restCoords, restOK := p.resolve(ctx, r.Address)
			plan.Candidates[i] = p.candidate(r, orderCoords, orderOK, restCoords, restOK)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.OrderPlan{}, fmt.Errorf("plan order id=%d: %w", order.ID, err)
	}

	sort.SliceStable(plan.Candidates, func(i, j int) bool {
		return plan.Candidates[i].SortKey() < plan.Candidates[j].SortKey()
	})
	return plan, nil
}

// PlanUnprocessed plans every unprocessed order from one catalogue snapshot.
func (p *FulfillmentPlanner) PlanUnprocessed(ctx context.Context, repo ports.OrderRepository) (_ []domain.OrderPlan, err error) {
	defer obs.Time(ctx, p.log, "PlanUnprocessed")(&err)

	orders, err := repo.ListUnprocessedOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan orders: list unprocessed orders: %w", err)
	}
	restaurants, err := repo.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan orders: list restaurants: %w", err)
	}
	items, err := repo.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan orders: list menu items: %w", err)
	}

	catalog := NewCatalog(restaurants, items)
	plans := make([]domain.OrderPlan, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, o := range orders {
		g.Go(func() error {
			plan, err := p.Plan(gctx, o, catalog)
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan orders: %w", err)
	}

	return plans, nil
}

// candidates returns the matching restaurants ordered by name, then id, so
// that candidates with equal sort keys come out in a stable order.
func (p *FulfillmentPlanner) candidates(order *domain.Order, catalog *Catalog) []*domain.Restaurant {
	if catalog == nil {
		return nil
	}

	ids := MatchRestaurants(order.Items, catalog.Availability)
	out := make([]*domain.Restaurant, 0, len(ids))
	for id := range ids {
		r, ok := catalog.Restaurants[id]
		if !ok {
			p.log.Warn("menu item references unknown restaurant", zap.Int("restaurant_id", id))
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (p *FulfillmentPlanner) resolve(ctx context.Context, address string) (domain.Coordinates, bool) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return domain.Coordinates{}, false
	}
	defer p.slots.Release(1)

	return p.resolver.Resolve(ctx, address)
}

func (p *FulfillmentPlanner) candidate(r *domain.Restaurant, orderCoords domain.Coordinates, orderOK bool, restCoords domain.Coordinates, restOK bool) domain.FulfillmentCandidate {
	c := domain.FulfillmentCandidate{Restaurant: r, Status: domain.CandidateCoordinatesUnavailable}
	if !orderOK || !restOK {
		return c
	}

	d, err := p.distance.DistanceKm(orderCoords, restCoords)
	if err != nil {
		p.log.Warn("distance computation failed", zap.Int("restaurant_id", r.ID), zap.Error(err))
		c.Status = domain.CandidateDistanceError
		return c
	}

	c.Status = domain.CandidateResolved
	c.DistanceKm = math.Round(d*100) / 100
	return c
}
