package spatial

import (
	"testing"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/couchcryptid/flood-alert-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = domain.Bounds{North: 41.6, South: 41.5, East: 2.1, West: 2.0}

func testBasin(subs ...domain.Subcatchment) domain.Basin {
	return domain.Basin{
		ID:            "bes",
		Name:          "Besòs",
		Area:          100,
		Bounds:        testBounds,
		Subcatchments: subs,
	}
}

func onlineStation(id string, lat, lon, precip, intensity float64) domain.Station {
	return domain.Station{ID: id, Lat: lat, Lon: lon, Precipitation: precip, Intensity: intensity, Online: true}
}

func TestEstimateBasin_GaugeOnly(t *testing.T) {
	basin := testBasin(domain.Subcatchment{ID: "s1", Area: 50, Bounds: testBounds})
	stations := []domain.Station{
		onlineStation("g1", 41.55, 2.05, 10, 20),
		onlineStation("g2", 41.56, 2.06, 14, 28),
	}

	rain := EstimateBasin(basin, stations, nil)

	require.Len(t, rain.Subcatchments, 1)
	est := rain.Subcatchments[0]
	assert.Equal(t, "s1", est.SubcatchmentID)
	assert.Equal(t, domain.EstimateGaugeIDW, est.Method)
	assert.Equal(t, 2, est.GaugeCount)
	assert.Zero(t, est.RadarCount)
	// Interpolated depth stays within the sample range.
	assert.GreaterOrEqual(t, est.Precipitation, 10.0)
	assert.LessOrEqual(t, est.Precipitation, 14.0)
	assert.LessOrEqual(t, est.Intensity, 28.0)
	assert.Equal(t, domain.EstimateGaugeIDW, rain.Method)
}

func TestEstimateBasin_OfflineAndOutOfBoundsGaugesExcluded(t *testing.T) {
	basin := testBasin(domain.Subcatchment{ID: "s1", Area: 50, Bounds: testBounds})
	offline := onlineStation("g1", 41.55, 2.05, 10, 10)
	offline.Online = false
	farAway := onlineStation("g2", 45.0, 7.0, 99, 99)

	rain := EstimateBasin(basin, []domain.Station{offline, farAway}, nil)

	require.Len(t, rain.Subcatchments, 1)
	assert.Equal(t, domain.EstimateNoData, rain.Subcatchments[0].Method)
	assert.Zero(t, rain.MeanPrecip)
}

func TestEstimateBasin_RadarOnly(t *testing.T) {
	basin := testBasin(domain.Subcatchment{ID: "s1", Area: 50, Bounds: testBounds})
	radar := &domain.RadarGrid{Pixels: []domain.RadarPixel{
		{Lat: 41.55, Lon: 2.05, DBZ: 35},
		{Lat: 41.56, Lon: 2.06, DBZ: 35},
	}}

	rain := EstimateBasin(basin, nil, radar)

	require.Len(t, rain.Subcatchments, 1)
	est := rain.Subcatchments[0]
	assert.Equal(t, domain.EstimateRadar, est.Method)
	assert.Equal(t, 2, est.RadarCount)
	// 35 dBZ ≈ 5.6 mm/h everywhere on the grid.
	assert.InDelta(t, 5.615, est.Intensity, 0.05)
	assert.Equal(t, domain.EstimateRadar, rain.Method)
}

func TestEstimateBasin_Fusion(t *testing.T) {
	basin := testBasin(domain.Subcatchment{ID: "s1", Area: 50, Bounds: testBounds})
	stations := []domain.Station{onlineStation("g1", 41.55, 2.05, 11, 22)}
	radar := &domain.RadarGrid{Pixels: []domain.RadarPixel{{Lat: 41.55, Lon: 2.05, DBZ: 35}}}

	rain := EstimateBasin(basin, stations, radar)

	require.Len(t, rain.Subcatchments, 1)
	est := rain.Subcatchments[0]
	assert.Equal(t, domain.EstimateFusion, est.Method)
	assert.Equal(t, 1, est.GaugeCount)
	assert.Equal(t, 1, est.RadarCount)
	assert.Positive(t, est.Precipitation)
	assert.Equal(t, domain.EstimateFusion, rain.Method)
}

func TestEstimateBasin_AreaWeightedMean(t *testing.T) {
	north := domain.Bounds{North: 41.6, South: 41.55, East: 2.1, West: 2.0}
	south := domain.Bounds{North: 41.55, South: 41.5, East: 2.1, West: 2.0}
	basin := testBasin(
		domain.Subcatchment{ID: "wet", Area: 30, Bounds: north},
		domain.Subcatchment{ID: "dry", Area: 10, Bounds: south},
	)
	stations := []domain.Station{
		onlineStation("g1", 41.58, 2.05, 20, 40),
		onlineStation("g2", 41.52, 2.05, 0, 0),
	}

	rain := EstimateBasin(basin, stations, nil)

	require.Len(t, rain.Subcatchments, 2)
	wet, dry := rain.Subcatchments[0], rain.Subcatchments[1]
	assert.Greater(t, wet.Precipitation, dry.Precipitation)
	want := (wet.Precipitation*30 + dry.Precipitation*10) / 40
	assert.InDelta(t, want, rain.MeanPrecip, 1e-9)
	assert.Equal(t, wet.Intensity, rain.MaxIntensity)
}

func TestEstimateBasin_NoSubcatchmentsFallsBackToWholeBasin(t *testing.T) {
	basin := testBasin()
	stations := []domain.Station{onlineStation("g1", 41.55, 2.05, 8, 16)}

	rain := EstimateBasin(basin, stations, nil)

	require.Len(t, rain.Subcatchments, 1)
	assert.Empty(t, rain.Subcatchments[0].SubcatchmentID)
	assert.Equal(t, domain.EstimateGaugeIDW, rain.Method)
	assert.Positive(t, rain.MeanPrecip)
}

func TestBiasSamples(t *testing.T) {
	radar := []geo.Sample{{Lat: 41.55, Lon: 2.05, Value: 2.0}}

	t.Run("ratio capped at five", func(t *testing.T) {
		gauges := []domain.Station{onlineStation("g", 41.55, 2.05, 20, 0)}
		bias := biasSamples(gauges, radar)
		require.Len(t, bias, 1)
		assert.Equal(t, 5.0, bias[0].Value)
	})

	t.Run("dry radar wet gauge uses fixed bias", func(t *testing.T) {
		dry := []geo.Sample{{Lat: 41.55, Lon: 2.05, Value: 0.05}}
		gauges := []domain.Station{onlineStation("g", 41.55, 2.05, 4, 0)}
		bias := biasSamples(gauges, dry)
		require.Len(t, bias, 1)
		assert.Equal(t, 3.0, bias[0].Value)
	})

	t.Run("dry radar dry gauge produces no sample", func(t *testing.T) {
		dry := []geo.Sample{{Lat: 41.55, Lon: 2.05, Value: 0.05}}
		gauges := []domain.Station{onlineStation("g", 41.55, 2.05, 0, 0)}
		assert.Empty(t, biasSamples(gauges, dry))
	})
}

func TestForEachGridPoint(t *testing.T) {
	var points int
	forEachGridPoint(domain.Bounds{North: 41.54, South: 41.5, East: 2.04, West: 2.0}, func(lat, lon float64) {
		points++
	})
	// 0.04° span at 0.02° resolution: 3 × 3 points, edges included.
	assert.Equal(t, 9, points)
}
