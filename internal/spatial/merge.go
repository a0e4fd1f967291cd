package spatial

import (
	"math"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/couchcryptid/flood-alert-service/internal/geo"
)

const (
	// gridResolution is the estimation grid spacing in degrees.
	gridResolution = 0.02
	// radarWeight is the radar share of the fused value.
	radarWeight = 0.4
	// minRadarDepth: below this radar depth a gauge/radar ratio is unstable.
	minRadarDepth = 0.1
	// dryRadarBias replaces the ratio when radar is dry but the gauge is wet.
	dryRadarBias = 3.0
	// maxBiasRatio caps individual gauge/radar ratios.
	maxBiasRatio = 5.0
	// Correction field clamp.
	minCorrection = 0.1
	maxCorrection = 5.0
)

// fieldStats aggregates the two target quantities over the estimation grid:
// the mean areal depth and the peak intensity.
type fieldStats struct {
	meanDepth    float64
	maxIntensity float64
	cells        int
}

// biasSamples builds gauge/radar ratio samples for conditional merging.
// For every gauge the nearest radar pixel is found by brute-force
// haversine scan (acceptable at current pixel counts; a spatial index can
// replace the scan without changing results).
func biasSamples(gauges []domain.Station, radar []geo.Sample) []geo.Sample {
	bias := make([]geo.Sample, 0, len(gauges))
	for _, g := range gauges {
		nearest := -1
		best := math.Inf(1)
		for i, p := range radar {
			if d := geo.Haversine(g.Lat, g.Lon, p.Lat, p.Lon); d < best {
				best = d
				nearest = i
			}
		}
		if nearest < 0 {
			continue
		}
		radarDepth := radar[nearest].Value
		var ratio float64
		switch {
		case radarDepth > minRadarDepth:
			ratio = math.Min(g.Precipitation/radarDepth, maxBiasRatio)
		case g.Precipitation > 0:
			ratio = dryRadarBias
		default:
			continue
		}
		bias = append(bias, geo.Sample{Lat: g.Lat, Lon: g.Lon, Value: ratio})
	}
	return bias
}

// round3 snaps a grid coordinate to three decimals so the grid is identical
// across runs regardless of accumulated float error.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// forEachGridPoint sweeps the fixed regular grid over the region.
func forEachGridPoint(region domain.Bounds, fn func(lat, lon float64)) {
	for i := 0; ; i++ {
		lat := round3(region.South + float64(i)*gridResolution)
		if lat > region.North {
			break
		}
		for j := 0; ; j++ {
			lon := round3(region.West + float64(j)*gridResolution)
			if lon > region.East {
				break
			}
			fn(lat, lon)
		}
	}
}

// mergeFields runs conditional merging (Sinclair & Pegram style) over the
// region: radar depths corrected by the interpolated gauge/radar bias
// field, blended with the gauge field at the fixed radar weight. The depth
// grid feeds the mean; the intensity grid (gauge intensity blended with
// radar rain rate under the same correction) feeds the max.
func mergeFields(region domain.Bounds, gauges []domain.Station, radar []geo.Sample) fieldStats {
	depths := make([]geo.Sample, len(gauges))
	intensities := make([]geo.Sample, len(gauges))
	for i, g := range gauges {
		depths[i] = geo.Sample{Lat: g.Lat, Lon: g.Lon, Value: g.Precipitation}
		intensities[i] = geo.Sample{Lat: g.Lat, Lon: g.Lon, Value: g.Intensity}
	}
	bias := biasSamples(gauges, radar)

	var stats fieldStats
	forEachGridPoint(region, func(lat, lon float64) {
		radarVal := Interpolate(lat, lon, radar)

		correction := 1.0
		if len(bias) > 0 {
			correction = clamp(Interpolate(lat, lon, bias), minCorrection, maxCorrection)
		}

		stationDepth := Interpolate(lat, lon, depths)
		stationIntensity := Interpolate(lat, lon, intensities)

		fusedDepth := radarWeight*(radarVal*correction) + (1-radarWeight)*stationDepth
		fusedIntensity := radarWeight*(radarVal*correction) + (1-radarWeight)*stationIntensity

		stats.meanDepth += fusedDepth
		if fusedIntensity > stats.maxIntensity {
			stats.maxIntensity = fusedIntensity
		}
		stats.cells++
	})
	if stats.cells > 0 {
		stats.meanDepth /= float64(stats.cells)
	}
	return stats
}

// gaugeFields estimates from gauges alone: IDW of the depth field for the
// mean, IDW of the intensity field for the max.
func gaugeFields(region domain.Bounds, gauges []domain.Station) fieldStats {
	depths := make([]geo.Sample, len(gauges))
	intensities := make([]geo.Sample, len(gauges))
	for i, g := range gauges {
		depths[i] = geo.Sample{Lat: g.Lat, Lon: g.Lon, Value: g.Precipitation}
		intensities[i] = geo.Sample{Lat: g.Lat, Lon: g.Lon, Value: g.Intensity}
	}

	var stats fieldStats
	forEachGridPoint(region, func(lat, lon float64) {
		stats.meanDepth += Interpolate(lat, lon, depths)
		if v := Interpolate(lat, lon, intensities); v > stats.maxIntensity {
			stats.maxIntensity = v
		}
		stats.cells++
	})
	if stats.cells > 0 {
		stats.meanDepth /= float64(stats.cells)
	}
	return stats
}

// radarFields estimates from radar alone; the rain-rate grid serves as both
// depth and intensity.
func radarFields(region domain.Bounds, radar []geo.Sample) fieldStats {
	var stats fieldStats
	forEachGridPoint(region, func(lat, lon float64) {
		v := Interpolate(lat, lon, radar)
		stats.meanDepth += v
		if v > stats.maxIntensity {
			stats.maxIntensity = v
		}
		stats.cells++
	})
	if stats.cells > 0 {
		stats.meanDepth /= float64(stats.cells)
	}
	return stats
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
