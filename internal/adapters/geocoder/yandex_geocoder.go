package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/errs"
	"foodcart-service/internal/platform/obs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://geocode-maps.yandex.ru/1.x"

// YandexGeocoder implements ports.Geocoder against the Yandex geocoder HTTP API.
//
// It is a protocol adapter only: one GET per call, no retries, no caching.
// Every failure is marked with domain.ErrGeocodeNotFound or domain.ErrGeocodeTransient.
// The geocoder is safe for concurrent use.
type YandexGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	log     *zap.Logger
}

type Option func(*YandexGeocoder)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(g *YandexGeocoder) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(g *YandexGeocoder) { g.session.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *YandexGeocoder) { g.log = l }
}

func NewYandexGeocoder(apiKey string, opts ...Option) (*YandexGeocoder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("yandex geocoder: api key is empty")
	}

	g := &YandexGeocoder{
		session: &http.Client{Timeout: 5 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

type geocodeResponse struct {
	Response *struct {
		GeoObjectCollection *struct {
			FeatureMember []struct {
				GeoObject *struct {
					Point *struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// Geocode resolves address using the most relevant (first) result only.
func (g *YandexGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, g.log, "yandex.Geocode")(&err)

	start := time.Now()
	defer func() {
		obs.GeocoderLatency.Observe(time.Since(start).Seconds())
		obs.GeocoderRequests.WithLabelValues(outcome(err)).Inc()
	}()

	req, err := g.newRequest(ctx, address)
	if err != nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: %w", address, err), domain.ErrGeocodeTransient)
	}

	resp, err := g.do(req)
	if err != nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: execute request: %w", address, err), domain.ErrGeocodeTransient)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: decode response: %w", address, err), domain.ErrGeocodeTransient)
	}

	if decoded.Response == nil || decoded.Response.GeoObjectCollection == nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: response has no GeoObjectCollection", address), domain.ErrGeocodeTransient)
	}

	members := decoded.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: no results", address), domain.ErrGeocodeNotFound)
	}

	first := members[0].GeoObject
	if first == nil || first.Point == nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: result has no Point", address), domain.ErrGeocodeTransient)
	}

	coords, err := parsePos(first.Point.Pos)
	if err != nil {
		return domain.Coordinates{}, errs.Mark(fmt.Errorf("geocode %q: %w", address, err), domain.ErrGeocodeTransient)
	}

	return coords, nil
}

// parsePos parses the "<lon> <lat>" position string Yandex returns.
func parsePos(pos string) (domain.Coordinates, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid position format %q", pos)
	}

	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", parts[1], err)
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("position %q out of range", pos)
	}
	return c, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errs.Is(err, domain.ErrGeocodeNotFound):
		return "not_found"
	default:
		return "transient"
	}
}
