package hydrology

import (
	"log/slog"
	"testing"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() *Model {
	return NewModel(slog.Default())
}

func TestModelRun_DryBasin(t *testing.T) {
	sub := subcatchment("s1", 100, 75, 5)
	sub.TimeOfConcentration = 2
	basin := basinWith(sub)
	rain := rainFor(basin.Subcatchments, 0, 0)

	result, err := newTestModel().Run(basin, rain)
	require.NoError(t, err)

	assert.Equal(t, domain.ModelSemiDistributed, result.Method)
	assert.Zero(t, result.PeakFlow)
	assert.Equal(t, domain.EstimateGaugeIDW, result.Estimation)
	require.Len(t, result.Subcatchments, 1)
	assert.Zero(t, result.Subcatchments[0].EffectiveRainfall)
}

func TestModelRun_WetBasinProducesPositivePeak(t *testing.T) {
	basin := basinWith(subcatchment("s1", 100, 80, 5))
	rain := rainFor(basin.Subcatchments, 50, 20)

	result, err := newTestModel().Run(basin, rain)
	require.NoError(t, err)

	assert.Positive(t, result.PeakFlow)
	assert.Equal(t, 0.25, result.TimeStep)
	require.Len(t, result.Subcatchments, 1)

	sr := result.Subcatchments[0]
	assert.InDelta(t, 13.80, sr.EffectiveRainfall, 0.01)
	assert.Positive(t, sr.ClarkPeak)
	// Routing can only attenuate.
	assert.LessOrEqual(t, sr.RoutedPeak, sr.ClarkPeak+1e-6)
	for _, p := range result.Composite {
		assert.GreaterOrEqual(t, p.Flow, 0.0)
	}
}

func TestModelRun_RationalPeakReference(t *testing.T) {
	sub := subcatchment("s1", 10, 85, 5)
	basin := basinWith(sub)
	rain := rainFor(basin.Subcatchments, 30, 20)

	result, err := newTestModel().Run(basin, rain)
	require.NoError(t, err)

	// C(85) = 0.72: Q = 0.72·20·10/3.6 = 40 exactly.
	require.Len(t, result.Subcatchments, 1)
	assert.InDelta(t, 40.0, result.Subcatchments[0].RationalPeak, 1e-9)
}

func TestModelRun_CompositeIsSumOfRouted(t *testing.T) {
	s1 := subcatchment("s1", 80, 80, 5)
	s2 := subcatchment("s2", 40, 70, 8)
	s2.Routing = &domain.RoutingParams{K: 2, X: 0.2, Reaches: 2}
	basin := basinWith(s1, s2)
	rain := rainFor(basin.Subcatchments, 60, 25)

	result, err := newTestModel().Run(basin, rain)
	require.NoError(t, err)
	require.Len(t, result.Subcatchments, 2)

	for i, p := range result.Composite {
		var want float64
		for _, sr := range result.Subcatchments {
			if i < len(sr.Routed) {
				want += sr.Routed[i].Flow
			}
		}
		assert.InDelta(t, want, p.Flow, 1e-9, "sample %d", i)
	}

	peak, at := result.Composite.Peak()
	assert.Equal(t, peak, result.PeakFlow)
	assert.Equal(t, at, result.PeakTime)
}

func TestModelRun_SubcatchmentWithoutRoutingDischargesDirectly(t *testing.T) {
	sub := subcatchment("s1", 50, 80, 5)
	sub.Routing = nil
	basin := basinWith(sub)
	rain := rainFor(basin.Subcatchments, 40, 15)

	result, err := newTestModel().Run(basin, rain)
	require.NoError(t, err)

	sr := result.Subcatchments[0]
	assert.Equal(t, sr.ClarkPeak, sr.RoutedPeak)
}

func TestModelRun_ValidationFailure(t *testing.T) {
	bad := basinWith(subcatchment("s1", 100, 120, 5))
	rain := rainFor(bad.Subcatchments, 10, 5)

	_, err := newTestModel().Run(bad, rain)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "llobregat", vErr.BasinID)
	assert.Equal(t, "curve_number", vErr.Field)
}

func TestModelRun_LumpedFallback(t *testing.T) {
	basin := basinWith() // no subcatchments
	basin.Area = 200

	t.Run("dry lumped basin", func(t *testing.T) {
		rain := domain.BasinRainfall{Method: domain.EstimateGaugeIDW}
		result, err := newTestModel().Run(basin, rain)
		require.NoError(t, err)
		assert.Equal(t, domain.ModelLumped, result.Method)
		assert.Zero(t, result.PeakFlow)
	})

	t.Run("wet lumped basin reports max of rational and clark", func(t *testing.T) {
		rain := domain.BasinRainfall{
			Method:       domain.EstimateGaugeIDW,
			MeanPrecip:   60,
			MaxIntensity: 30,
		}
		result, err := newTestModel().Run(basin, rain)
		require.NoError(t, err)

		// Coarse table at CN 75 gives C = 0.40:
		// Q_rational = 0.40·30·200/3.6 ≈ 666.7 m³/s.
		rational := 0.40 * 30 * 200 / 3.6
		clarkPeak, _ := result.Composite.Peak()
		assert.InDelta(t, max(rational, clarkPeak), result.PeakFlow, 1e-9)
		assert.Positive(t, result.PeakFlow)
	})
}

func TestModelRun_IsPure(t *testing.T) {
	basin := basinWith(subcatchment("s1", 100, 80, 5), subcatchment("s2", 60, 70, 3))
	rain := rainFor(basin.Subcatchments, 45, 18)
	m := newTestModel()

	r1, err := m.Run(basin, rain)
	require.NoError(t, err)
	r2, err := m.Run(basin, rain)
	require.NoError(t, err)

	r1.ComputedAt = r2.ComputedAt
	assert.Empty(t, cmp.Diff(r1, r2))
}

func TestRunoffCoefficientTables(t *testing.T) {
	// The fine table steps every 5 CN points, the coarse legacy table
	// every 10; they agree on the decades and diverge between them.
	assert.Equal(t, 0.85, runoffCoefficient(92))
	assert.Equal(t, 0.72, runoffCoefficient(85))
	assert.Equal(t, 0.50, runoffCoefficient(76))
	assert.Equal(t, 0.15, runoffCoefficient(40))

	assert.Equal(t, 0.85, runoffCoefficientCoarse(92))
	assert.Equal(t, 0.60, runoffCoefficientCoarse(85))
	assert.Equal(t, 0.40, runoffCoefficientCoarse(76))
	assert.Equal(t, 0.15, runoffCoefficientCoarse(40))
}
