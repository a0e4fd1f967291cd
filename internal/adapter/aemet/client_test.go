package aemet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// newFeedServer serves the OpenData two-step protocol: the endpoint path
// answers with an envelope pointing at /datos, which serves the payload.
func newFeedServer(t *testing.T, endpoint, payload string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		fmt.Fprintf(w, `{"estado":200,"datos":"%s/datos"}`, srv.URL)
	})
	mux.HandleFunc("/datos", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, payload)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStations(t *testing.T) {
	payload := `[
		{"idema":"0201D","ubi":"BARCELONA","lat":41.39,"lon":2.17,"alt":408,"prec":3.4,"pint":12.1,"fint":"2026-08-06T11:50:00Z"},
		{"idema":"0076","ubi":"OFFLINE","lat":41.29,"lon":2.07,"prec":1.0,"pint":2.0,"fint":"2026-08-06T11:50:00Z","online":false},
		{"idema":"XXXX","ubi":"PLACEHOLDER","lat":0,"lon":0,"prec":5},
		{"idema":"NEG","ubi":"NEGATIVE","lat":41.5,"lon":2.0,"prec":-1,"pint":-0.5,"fint":"bad-timestamp"}
	]`
	srv := newFeedServer(t, stationsEndpoint, payload)

	stations, err := testClient(srv.URL).FetchStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 3, "placeholder at (0,0) is dropped")

	bcn := stations[0]
	assert.Equal(t, "0201D", bcn.ID)
	assert.Equal(t, "BARCELONA", bcn.Name)
	assert.Equal(t, 3.4, bcn.Precipitation)
	assert.Equal(t, 12.1, bcn.Intensity)
	assert.True(t, bcn.Online)
	assert.Equal(t, time.Date(2026, 8, 6, 11, 50, 0, 0, time.UTC), bcn.ObservedAt)

	assert.False(t, stations[1].Online)

	neg := stations[2]
	assert.Zero(t, neg.Precipitation, "negative depth floors to zero")
	assert.Zero(t, neg.Intensity)
	assert.True(t, neg.ObservedAt.IsZero(), "unparseable timestamp is zero")
}

func TestFetchStations_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchStations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchRadar(t *testing.T) {
	payload := `{
		"product_time":"2026-08-06T11:45:00Z",
		"pixels":[
			{"lat":41.5,"lon":2.0,"dbz":35},
			{"lat":0,"lon":0,"dbz":10},
			{"lat":41.52,"lon":2.02,"dbz":-5}
		]
	}`
	srv := newFeedServer(t, radarEndpoint, payload)

	fetcher := NewRadarFetcher(testClient(srv.URL), 4)
	grid, err := fetcher.FetchRadar(context.Background())
	require.NoError(t, err)

	require.Len(t, grid.Pixels, 2, "zero-coordinate pixels are dropped")
	assert.Equal(t, 35.0, grid.Pixels[0].DBZ)
	assert.Equal(t, -5.0, grid.Pixels[1].DBZ, "negative dBZ is legal")
	assert.Equal(t, time.Date(2026, 8, 6, 11, 45, 0, 0, time.UTC), grid.ProductTime)
}

func TestFetchRadar_CachesByProduct(t *testing.T) {
	var datosHits int
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc(radarEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"estado":200,"datos":"%s/datos/prod-1"}`, srv.URL)
	})
	mux.HandleFunc("/datos/prod-1", func(w http.ResponseWriter, _ *http.Request) {
		datosHits++
		fmt.Fprint(w, `{"product_time":"2026-08-06T11:45:00Z","pixels":[{"lat":41.5,"lon":2.0,"dbz":20}]}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	fetcher := NewRadarFetcher(testClient(srv.URL), 4)

	first, err := fetcher.FetchRadar(context.Background())
	require.NoError(t, err)
	second, err := fetcher.FetchRadar(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, datosHits, "same product decodes once")
	assert.Same(t, first, second)
}

func TestGridCache_Eviction(t *testing.T) {
	c := newGridCache(2)
	g1 := &domain.RadarGrid{}
	g2 := &domain.RadarGrid{}
	g3 := &domain.RadarGrid{}

	c.put("p1", g1)
	c.put("p2", g2)

	// Touch p1 so p2 becomes the eviction candidate.
	_, ok := c.get("p1")
	require.True(t, ok)

	c.put("p3", g3)

	_, ok = c.get("p2")
	assert.False(t, ok, "least recently used entry evicted")
	got, ok := c.get("p1")
	require.True(t, ok)
	assert.Same(t, g1, got)
}
