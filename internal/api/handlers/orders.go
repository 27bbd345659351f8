package handlers

import (
	"context"
	"foodcart-service/internal/api/dto"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/ports"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderPlanner interface {
	PlanUnprocessed(ctx context.Context, repo ports.OrderRepository) ([]domain.OrderPlan, error)
}

// OrderHandler serves the manager's pending-order board.
type OrderHandler struct {
	Repo    ports.OrderRepository
	Planner OrderPlanner
	Log     *zap.Logger
}

// List returns every unprocessed order with the restaurants that can cook
// it, nearest first.
func (h *OrderHandler) List(c *gin.Context) {
	plans, err := h.Planner.PlanUnprocessed(c.Request.Context(), h.Repo)
	if err != nil {
		if c.Request.Context().Err() != nil {
			// Client went away; nobody is left to read the response.
			c.Abort()
			return
		}
		h.Log.Error("plan orders failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(plans))}
	for _, p := range plans {
		res.Orders = append(res.Orders, orderResponse(p))
	}

	c.JSON(http.StatusOK, res)
}

func orderResponse(p domain.OrderPlan) dto.OrderResponse {
	o := p.Order

	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}

	candidates := make([]dto.CandidateResponse, 0, len(p.Candidates))
	for _, cand := range p.Candidates {
		cr := dto.CandidateResponse{
			RestaurantID:   cand.Restaurant.ID,
			RestaurantName: cand.Restaurant.Name,
			Address:        cand.Restaurant.Address,
			Distance:       cand.Display(),
		}
		if cand.Status == domain.CandidateResolved {
			d := cand.DistanceKm
			cr.DistanceKm = &d
		}
		candidates = append(candidates, cr)
	}

	return dto.OrderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Address:       o.Address,
		FirstName:     o.FirstName,
		LastName:      o.LastName,
		Phone:         o.Phone,
		Comments:      o.Comments,
		RegisteredAt:  o.RegisteredAt,
		CalledAt:      o.CalledAt,
		DeliveredAt:   o.DeliveredAt,
		TotalPrice:    o.TotalPrice(),
		Items:         items,
		Restaurants:   candidates,
	}
}
