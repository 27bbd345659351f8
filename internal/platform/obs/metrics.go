package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup tiers reported by GeocodeLookups.
const (
	TierMemory   = "memory"
	TierStore    = "store"
	TierUpstream = "upstream"
)

var (
	// Address resolutions, by the tier that answered and whether coordinates came back.
	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcart_geocode_lookups_total",
			Help: "Address resolutions by answering tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// Calls to the external geocoding API.
	GeocoderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcart_geocoder_requests_total",
			Help: "External geocoder calls by outcome",
		},
		[]string{"outcome"},
	)

	GeocoderLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodcart_geocoder_request_duration_seconds",
			Help:    "External geocoder latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodcart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodcart_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)
