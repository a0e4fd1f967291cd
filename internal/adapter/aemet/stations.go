package aemet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
)

const stationsEndpoint = "/observacion/convencional/todas"

// rawStation is one row of the station-network payload. Temperature,
// humidity, pressure, and wind columns exist upstream but are not consumed
// by the warning core.
type rawStation struct {
	ID            string  `json:"idema"`
	Name          string  `json:"ubi"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Altitude      float64 `json:"alt"`
	Precipitation float64 `json:"prec"`
	Intensity     float64 `json:"pint"`
	Timestamp     string  `json:"fint"`
	Online        *bool   `json:"online"` // absent means online
}

// FetchStations implements pipeline.StationFetcher: it downloads the
// latest network observation set and normalizes it. Stations at (0, 0)
// are placeholder rows and are discarded; negative depths and intensities
// floor to zero.
func (c *Client) FetchStations(ctx context.Context) ([]domain.Station, error) {
	payload, err := c.fetchPayload(ctx, stationsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("station feed: %w", err)
	}

	var rows []rawStation
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("station feed: decode payload: %w", err)
	}

	stations := make([]domain.Station, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		s, ok := normalizeStation(row)
		if !ok {
			dropped++
			continue
		}
		stations = append(stations, s)
	}
	if dropped > 0 {
		c.logger.Debug("discarded placeholder stations", "count", dropped)
	}
	return stations, nil
}

func normalizeStation(row rawStation) (domain.Station, bool) {
	if row.ID == "" || (row.Lat == 0 && row.Lon == 0) {
		return domain.Station{}, false
	}

	online := true
	if row.Online != nil {
		online = *row.Online
	}

	observedAt, err := time.Parse(time.RFC3339, row.Timestamp)
	if err != nil {
		observedAt = time.Time{}
	}

	return domain.Station{
		ID:            row.ID,
		Name:          row.Name,
		Lat:           row.Lat,
		Lon:           row.Lon,
		Altitude:      row.Altitude,
		Precipitation: max(row.Precipitation, 0),
		Intensity:     max(row.Intensity, 0),
		Online:        online,
		ObservedAt:    observedAt,
	}, true
}
