package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/metrics"
)

// FeatureCollection is the GeoJSON document returned by the provider.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Properties struct {
	XID      string  `json:"xid"`
	Name     string  `json:"name"`
	Dist     float64 `json:"dist"`
	Kinds    string  `json:"kinds"`
	OSM      string  `json:"osm"`
	Wikidata string  `json:"wikidata"`
}

// ExternalServiceError reports a failed, timed out or unreadable provider call.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("places provider: %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// errAbandoned marks calls cut short by the caller's context; they say nothing
// about provider health and do not count toward tripping the breaker.
var errAbandoned = errors.New("request abandoned by caller")

// ClientConfig configures the provider client. Zero values get defaults.
type ClientConfig struct {
	BaseURL          string
	APIKey           string
	Language         string
	Limit            int
	Timeout          time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
	HTTPClient       *http.Client
}

// Client calls an OpenTripMap-compatible radius endpoint.
type Client struct {
	baseURL string
	apiKey  string
	lang    string
	limit   int
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*FeatureCollection]
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	threshold := cfg.BreakerThreshold
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		lang:    cfg.Language,
		limit:   cfg.Limit,
		timeout: cfg.Timeout,
		http:    hc,
		breaker: gobreaker.NewCircuitBreaker[*FeatureCollection](gobreaker.Settings{
			Name:    "places",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errAbandoned)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warnf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Fetch performs one lookup. Every failure is returned as *ExternalServiceError.
func (c *Client) Fetch(ctx context.Context, q Query) (*FeatureCollection, error) {
	start := time.Now()
	fc, err := c.breaker.Execute(func() (*FeatureCollection, error) {
		fc, err := c.fetch(ctx, q)
		if err != nil && ctx.Err() != nil {
			return nil, &ExternalServiceError{Op: "request", Err: fmt.Errorf("%w: %w", errAbandoned, ctx.Err())}
		}
		return fc, err
	})
	metrics.PlacesLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, errAbandoned) {
			outcome = "abandoned"
		}
		metrics.PlacesRequests.WithLabelValues(outcome).Inc()
		var ese *ExternalServiceError
		if errors.As(err, &ese) {
			return nil, err
		}
		return nil, &ExternalServiceError{Op: "circuit breaker", Err: err}
	}
	metrics.PlacesRequests.WithLabelValues("ok").Inc()
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, q Query) (*FeatureCollection, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(q), nil)
	if err != nil {
		return nil, &ExternalServiceError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ExternalServiceError{Op: "request", Err: fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(b))}
	}

	var fc FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, &ExternalServiceError{Op: "decode", Err: err}
	}
	return &fc, nil
}

func (c *Client) endpoint(q Query) string {
	v := url.Values{}
	v.Set("radius", strconv.Itoa(q.RadiusMeters))
	v.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	v.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	if q.Categories != "" {
		v.Set("kinds", q.Categories)
	}
	v.Set("format", "geojson")
	v.Set("limit", strconv.Itoa(c.limit))
	if c.apiKey != "" {
		v.Set("apikey", c.apiKey)
	}
	return c.baseURL + "/" + url.PathEscape(c.lang) + "/places/radius?" + v.Encode()
}
