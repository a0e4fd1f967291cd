package hydrology

import "github.com/couchcryptid/flood-alert-service/internal/domain"

// Shared fixtures for the hydrology tests.

var testBounds = domain.Bounds{North: 41.6, South: 41.5, East: 2.1, West: 2.0}

func subcatchment(id string, area, cn, slope float64) domain.Subcatchment {
	return domain.Subcatchment{
		ID:          id,
		Area:        area,
		CurveNumber: cn,
		Slope:       slope,
		Bounds:      testBounds,
		Routing:     &domain.RoutingParams{K: 1, X: 0.1, Reaches: 1},
	}
}

func basinWith(subs ...domain.Subcatchment) domain.Basin {
	return domain.Basin{
		ID:            "llobregat",
		Name:          "Llobregat",
		Area:          totalArea(subs),
		Bounds:        testBounds,
		Thresholds:    domain.Thresholds{Yellow: 50, Orange: 150, Red: 300},
		Subcatchments: subs,
	}
}

func totalArea(subs []domain.Subcatchment) float64 {
	var sum float64
	for _, s := range subs {
		sum += s.Area
	}
	return sum
}

func rainFor(subs []domain.Subcatchment, precip, intensity float64) domain.BasinRainfall {
	rain := domain.BasinRainfall{Method: domain.EstimateGaugeIDW}
	var weighted, area float64
	for _, s := range subs {
		rain.Subcatchments = append(rain.Subcatchments, domain.RainfallEstimate{
			SubcatchmentID: s.ID,
			Precipitation:  precip,
			Intensity:      intensity,
			Method:         domain.EstimateGaugeIDW,
		})
		weighted += precip * s.Area
		area += s.Area
	}
	if area > 0 {
		rain.MeanPrecip = weighted / area
	}
	rain.MaxIntensity = intensity
	return rain
}
