package handlers

import (
	"foodcart-service/internal/api/dto"
	"foodcart-service/internal/pkg/clock"
	"foodcart-service/internal/ports"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLocationsLimit = 50
	maxLocationsLimit     = 500
)

// LocationHandler lets operators inspect the persistent geocoding cache.
type LocationHandler struct {
	Store    ports.LocationStore
	Clock    clock.Clock
	StoreTTL time.Duration
	Log      *zap.Logger
}

func (h *LocationHandler) List(c *gin.Context) {
	limit, ok := intQuery(c, "limit", defaultLocationsLimit)
	if !ok || limit < 1 || limit > maxLocationsLimit {
		writeError(c, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok || offset < 0 {
		writeError(c, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	locs, err := h.Store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.Log.Error("list cached locations failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	now := h.Clock.Now()
	res := dto.ListLocationsResponse{
		Locations: make([]dto.LocationResponse, 0, len(locs)),
		Limit:     limit,
		Offset:    offset,
	}
	for _, l := range locs {
		lr := dto.LocationResponse{
			Address:   l.Address,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
			Expired:   l.Expired(now, h.StoreTTL),
		}
		if l.Coordinates != nil {
			lat, lon := l.Coordinates.Lat, l.Coordinates.Lon
			lr.Lat, lr.Lon = &lat, &lon
		}
		res.Locations = append(res.Locations, lr)
	}

	c.JSON(http.StatusOK, res)
}

func intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
