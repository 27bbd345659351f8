package api

import (
	"foodcart-service/internal/api/handlers"
	"foodcart-service/internal/config"
	"foodcart-service/internal/pkg/clock"
	"foodcart-service/internal/ports"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Repo      ports.OrderRepository
	Planner   handlers.OrderPlanner
	Locations ports.LocationStore
	Clock     clock.Clock
	StoreTTL  time.Duration
	CORS      config.CORSConfig
	Log       *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = clock.NewRealClock()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(d.Log), metrics())
	if len(d.CORS.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: d.CORS.AllowOrigins,
			AllowMethods: d.CORS.AllowMethods,
			AllowHeaders: d.CORS.AllowHeaders,
			MaxAge:       d.CORS.MaxAge,
		}))
	}

	orders := &handlers.OrderHandler{Repo: d.Repo, Planner: d.Planner, Log: d.Log}
	catalog := &handlers.CatalogHandler{Repo: d.Repo, Log: d.Log}
	locations := &handlers.LocationHandler{Store: d.Locations, Clock: d.Clock, StoreTTL: d.StoreTTL, Log: d.Log}

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	manager := r.Group("/manager")
	manager.GET("/orders", orders.List)
	manager.GET("/products", catalog.Products)
	manager.GET("/restaurants", catalog.Restaurants)
	manager.GET("/locations", locations.List)

	return r
}
