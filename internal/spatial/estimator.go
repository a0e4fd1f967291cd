package spatial

import (
	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/couchcryptid/flood-alert-service/internal/geo"
)

const (
	// basinGaugeMargin widens the basin box when selecting gauges so
	// stations just outside the divide still contribute.
	basinGaugeMargin = 0.15
	// subcatchmentGaugeMargin widens subcatchment boxes the same way.
	subcatchmentGaugeMargin = 0.08
)

// EstimateBasin produces the per-subcatchment rainfall estimate for one
// basin. Gauges must be online and inside the expanded basin bounds; radar
// pixels are clipped to the basin bounds with no margin. A basin without
// subcatchments falls back to a single estimate over the whole basin box.
func EstimateBasin(basin domain.Basin, stations []domain.Station, radar *domain.RadarGrid) domain.BasinRainfall {
	gauges := filterGauges(stations, basin.Bounds.Expand(basinGaugeMargin))
	pixels := filterPixels(radar, basin.Bounds)

	if len(basin.Subcatchments) == 0 {
		est := estimateRegion(basin.Bounds, gauges, pixels)
		return domain.BasinRainfall{
			Subcatchments: []domain.RainfallEstimate{est},
			MeanPrecip:    est.Precipitation,
			MaxIntensity:  est.Intensity,
			Method:        est.Method,
		}
	}

	out := domain.BasinRainfall{
		Subcatchments: make([]domain.RainfallEstimate, 0, len(basin.Subcatchments)),
	}
	var weightedP, totalArea float64
	for _, sub := range basin.Subcatchments {
		subGauges := filterInBounds(gauges, sub.Bounds.Expand(subcatchmentGaugeMargin))
		subPixels := filterSamplesInBounds(pixels, sub.Bounds)

		est := estimateRegion(sub.Bounds, subGauges, subPixels)
		est.SubcatchmentID = sub.ID
		out.Subcatchments = append(out.Subcatchments, est)

		weightedP += est.Precipitation * sub.Area
		totalArea += sub.Area
		if est.Intensity > out.MaxIntensity {
			out.MaxIntensity = est.Intensity
		}
	}
	if totalArea > 0 {
		out.MeanPrecip = weightedP / totalArea
	}
	out.Method = basinMethod(out.Subcatchments)
	return out
}

// estimateRegion picks the estimation method from the available inputs.
func estimateRegion(region domain.Bounds, gauges []domain.Station, radar []geo.Sample) domain.RainfallEstimate {
	est := domain.RainfallEstimate{
		GaugeCount: len(gauges),
		RadarCount: len(radar),
	}

	var stats fieldStats
	switch {
	case len(gauges) > 0 && len(radar) > 0:
		stats = mergeFields(region, gauges, radar)
		est.Method = domain.EstimateFusion
	case len(gauges) > 0:
		stats = gaugeFields(region, gauges)
		est.Method = domain.EstimateGaugeIDW
	case len(radar) > 0:
		stats = radarFields(region, radar)
		est.Method = domain.EstimateRadar
	default:
		est.Method = domain.EstimateNoData
		return est
	}

	est.Precipitation = stats.meanDepth
	est.Intensity = stats.maxIntensity
	return est
}

// basinMethod reduces subcatchment method tags to a basin-level tag,
// keeping the richest method that contributed anywhere.
func basinMethod(estimates []domain.RainfallEstimate) string {
	best := domain.EstimateNoData
	rank := func(m string) int {
		switch m {
		case domain.EstimateFusion:
			return 3
		case domain.EstimateGaugeIDW:
			return 2
		case domain.EstimateRadar:
			return 1
		default:
			return 0
		}
	}
	for _, e := range estimates {
		if rank(e.Method) > rank(best) {
			best = e.Method
		}
	}
	return best
}

// filterGauges keeps online stations inside the box.
func filterGauges(stations []domain.Station, box domain.Bounds) []domain.Station {
	out := make([]domain.Station, 0, len(stations))
	for _, s := range stations {
		if s.Online && box.Contains(s.Lat, s.Lon) {
			out = append(out, s)
		}
	}
	return out
}

func filterInBounds(stations []domain.Station, box domain.Bounds) []domain.Station {
	out := make([]domain.Station, 0, len(stations))
	for _, s := range stations {
		if box.Contains(s.Lat, s.Lon) {
			out = append(out, s)
		}
	}
	return out
}

// filterPixels converts in-bounds radar pixels to depth samples using the
// Marshall–Palmer relation.
func filterPixels(radar *domain.RadarGrid, box domain.Bounds) []geo.Sample {
	if radar == nil {
		return nil
	}
	out := make([]geo.Sample, 0, len(radar.Pixels))
	for _, p := range radar.Pixels {
		if box.Contains(p.Lat, p.Lon) {
			out = append(out, geo.Sample{Lat: p.Lat, Lon: p.Lon, Value: RainRate(p.DBZ, MarshallPalmer)})
		}
	}
	return out
}

func filterSamplesInBounds(samples []geo.Sample, box domain.Bounds) []geo.Sample {
	out := make([]geo.Sample, 0, len(samples))
	for _, s := range samples {
		if box.Contains(s.Lat, s.Lon) {
			out = append(out, s)
		}
	}
	return out
}
