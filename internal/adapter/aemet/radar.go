package aemet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
)

const radarEndpoint = "/red/radar/nacional"

// rawRadar is the decoded national composite payload.
type rawRadar struct {
	ProductTime string     `json:"product_time"`
	Pixels      []rawPixel `json:"pixels"`
}

type rawPixel struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	DBZ float64 `json:"dbz"`
}

// RadarFetcher decodes reflectivity grids, memoizing by product so a grid
// is decoded once per radar update rather than once per cycle (the product
// refreshes slower than the cycle cadence).
type RadarFetcher struct {
	client *Client
	cache  *gridCache
}

// NewRadarFetcher wraps a client with a product-keyed grid cache.
func NewRadarFetcher(client *Client, cacheSize int) *RadarFetcher {
	return &RadarFetcher{
		client: client,
		cache:  newGridCache(cacheSize),
	}
}

// FetchRadar implements pipeline.RadarFetcher.
func (f *RadarFetcher) FetchRadar(ctx context.Context) (*domain.RadarGrid, error) {
	env, err := f.client.fetchEnvelope(ctx, radarEndpoint)
	if err != nil {
		return nil, fmt.Errorf("radar feed: %w", err)
	}
	if env.Datos == "" {
		return nil, fmt.Errorf("radar feed: empty datos url (estado %d)", env.Estado)
	}

	// The datos URL identifies the product instance.
	if grid, ok := f.cache.get(env.Datos); ok {
		return grid, nil
	}

	payload, err := f.client.fetchDatos(ctx, env.Datos)
	if err != nil {
		return nil, fmt.Errorf("radar feed: %w", err)
	}

	grid, err := decodeGrid(payload)
	if err != nil {
		return nil, fmt.Errorf("radar feed: %w", err)
	}

	f.cache.put(env.Datos, grid)
	return grid, nil
}

func decodeGrid(payload []byte) (*domain.RadarGrid, error) {
	var raw rawRadar
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}

	productTime, err := time.Parse(time.RFC3339, raw.ProductTime)
	if err != nil {
		productTime = time.Time{}
	}

	grid := &domain.RadarGrid{
		Pixels:      make([]domain.RadarPixel, 0, len(raw.Pixels)),
		ProductTime: productTime,
	}
	for _, p := range raw.Pixels {
		if p.Lat == 0 && p.Lon == 0 {
			continue
		}
		grid.Pixels = append(grid.Pixels, domain.RadarPixel{Lat: p.Lat, Lon: p.Lon, DBZ: p.DBZ})
	}
	return grid, nil
}
