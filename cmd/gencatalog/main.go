// Command gencatalog writes a sample basin catalogue for local runs and
// demos. The basins are loosely modelled on the Catalan coastal rivers
// that motivated the warning thresholds.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"gopkg.in/yaml.v3"
)

func main() {
	out := flag.String("out", "basins.yaml", "output path")
	flag.Parse()

	doc := struct {
		Basins []domain.Basin `yaml:"basins"`
	}{Basins: sampleBasins()}

	data, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal catalogue:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write catalogue:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d basins to %s\n", len(doc.Basins), *out)
}

func sampleBasins() []domain.Basin {
	return []domain.Basin{
		{
			ID:         "besos",
			Name:       "Besòs",
			Type:       "coastal",
			Area:       1020,
			Bounds:     domain.Bounds{North: 41.80, South: 41.40, East: 2.45, West: 2.00},
			Outlet:     domain.Geo{Lat: 41.42, Lon: 2.23},
			Thresholds: domain.Thresholds{Yellow: 120, Orange: 350, Red: 700},
			Subcatchments: []domain.Subcatchment{
				{
					ID: "congost", Area: 225, CurveNumber: 76, Slope: 9,
					ChannelLength: 24,
					Bounds:        domain.Bounds{North: 41.80, South: 41.60, East: 2.30, West: 2.10},
					Routing:       &domain.RoutingParams{K: 1.8, X: 0.2, Reaches: 3},
				},
				{
					ID: "mogent", Area: 180, CurveNumber: 74, Slope: 7,
					ChannelLength: 21,
					Bounds:        domain.Bounds{North: 41.70, South: 41.50, East: 2.45, West: 2.20},
					Routing:       &domain.RoutingParams{K: 1.4, X: 0.2, Reaches: 2},
				},
				{
					ID: "ripoll", Area: 210, CurveNumber: 79, Slope: 11,
					ChannelLength: 26,
					Bounds:        domain.Bounds{North: 41.75, South: 41.50, East: 2.15, West: 2.00},
					Routing:       &domain.RoutingParams{K: 1.6, X: 0.15, Reaches: 2},
				},
				{
					ID: "baix-besos", Area: 405, CurveNumber: 86, Slope: 3,
					TimeOfConcentration: 2.2,
					Bounds:              domain.Bounds{North: 41.55, South: 41.40, East: 2.35, West: 2.05},
				},
			},
		},
		{
			ID:         "llobregat",
			Name:       "Llobregat",
			Type:       "coastal",
			Area:       4948,
			Bounds:     domain.Bounds{North: 42.30, South: 41.30, East: 2.10, West: 1.40},
			Outlet:     domain.Geo{Lat: 41.31, Lon: 2.05},
			Thresholds: domain.Thresholds{Yellow: 250, Orange: 700, Red: 1500},
			Subcatchments: []domain.Subcatchment{
				{
					ID: "alt-llobregat", Area: 1340, CurveNumber: 68, Slope: 18,
					ChannelLength: 62,
					Bounds:        domain.Bounds{North: 42.30, South: 41.95, East: 2.00, West: 1.60},
					Routing:       &domain.RoutingParams{K: 3.5, X: 0.25, Reaches: 4},
				},
				{
					ID: "cardener", Area: 1370, CurveNumber: 70, Slope: 14,
					ChannelLength: 58,
					Bounds:        domain.Bounds{North: 42.25, South: 41.80, East: 1.80, West: 1.40},
					Routing:       &domain.RoutingParams{K: 3.0, X: 0.25, Reaches: 3},
				},
				{
					ID: "anoia", Area: 930, CurveNumber: 75, Slope: 8,
					ChannelLength: 48,
					Bounds:        domain.Bounds{North: 41.75, South: 41.40, East: 1.85, West: 1.45},
					Routing:       &domain.RoutingParams{K: 2.2, X: 0.2, Reaches: 2},
				},
				{
					ID: "baix-llobregat", Area: 1308, CurveNumber: 83, Slope: 4,
					TimeOfConcentration: 3.5,
					Bounds:              domain.Bounds{North: 41.60, South: 41.30, East: 2.10, West: 1.75},
				},
			},
		},
		{
			// No subcatchment geometry yet: exercises the lumped fallback.
			ID:         "tordera",
			Name:       "Tordera",
			Type:       "coastal",
			Area:       876,
			Bounds:     domain.Bounds{North: 41.85, South: 41.60, East: 2.80, West: 2.35},
			Outlet:     domain.Geo{Lat: 41.65, Lon: 2.78},
			Thresholds: domain.Thresholds{Yellow: 100, Orange: 280, Red: 600},
		},
	}
}
