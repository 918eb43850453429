package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "1", "geometry": {"type": "Point", "coordinates": [-80.19, 25.76]},
     "properties": {"xid": "N1", "name": "Bayfront Park", "dist": 120.5, "kinds": "natural,urban_environment"}},
    {"type": "Feature", "id": "2", "geometry": {"type": "Point", "coordinates": [-80.2, 25.77]},
     "properties": {"xid": "N2", "name": "", "dist": 300, "kinds": "natural"}}
  ]
}`

func TestFetch_BuildsRequestAndDecodes(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCollection))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k1", Limit: 50})
	fc, err := c.Fetch(context.Background(), Query{Lat: 25.761681, Lon: -80.191788, RadiusMeters: 20000, Categories: "natural,sport"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Bayfront Park", fc.Features[0].Properties.Name)
	assert.Equal(t, []float64{-80.19, 25.76}, fc.Features[0].Geometry.Coordinates)

	assert.Equal(t, "/en/places/radius", gotPath)
	assert.Equal(t, "20000", gotQuery["radius"])
	assert.Equal(t, "25.761681", gotQuery["lat"])
	assert.Equal(t, "-80.191788", gotQuery["lon"])
	assert.Equal(t, "natural,sport", gotQuery["kinds"])
	assert.Equal(t, "geojson", gotQuery["format"])
	assert.Equal(t, "50", gotQuery["limit"])
	assert.Equal(t, "k1", gotQuery["apikey"])
}

func TestFetch_EmptyCategoriesOmitsKinds(t *testing.T) {
	var hasKinds bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKinds = r.URL.Query()["kinds"]
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	fc, err := NewClient(ClientConfig{BaseURL: srv.URL}).Fetch(context.Background(), Query{RadiusMeters: 1})
	require.NoError(t, err)
	require.Empty(t, fc.Features)
	require.False(t, hasKinds)
}

func TestFetch_Non2xxIsExternalServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Fetch(context.Background(), Query{})
	var ese *ExternalServiceError
	require.True(t, errors.As(err, &ese))
	require.Contains(t, err.Error(), "502")
}

func TestFetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features": [ {`))
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).Fetch(context.Background(), Query{})
	var ese *ExternalServiceError
	require.True(t, errors.As(err, &ese))
	require.Equal(t, "decode", ese.Op)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), Query{})
	var ese *ExternalServiceError
	require.True(t, errors.As(err, &ese))
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, BreakerThreshold: 2, BreakerCooldown: time.Minute})
	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), Query{})
		require.Error(t, err)
	}
	_, err := c.Fetch(context.Background(), Query{})
	var ese *ExternalServiceError
	require.True(t, errors.As(err, &ese))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 2, calls)
}

func TestFetch_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCollection))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, BreakerThreshold: 2, BreakerCooldown: time.Minute})
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := c.Fetch(cancelled, Query{})
		var ese *ExternalServiceError
		require.True(t, errors.As(err, &ese))
		require.ErrorIs(t, err, context.Canceled)
	}
	require.Equal(t, gobreaker.StateClosed, c.breaker.State())

	fc, err := c.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
}

func TestFetch_ProviderTimeoutStillTripsBreaker(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 30 * time.Millisecond, BreakerThreshold: 2, BreakerCooldown: time.Minute})
	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), Query{})
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, c.breaker.State())
}
