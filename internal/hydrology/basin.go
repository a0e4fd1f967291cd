package hydrology

import (
	"log/slog"
	"math"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
)

// lumpedCurveNumber stands in for basins whose catalogue entry has no
// subcatchments and therefore no CN of its own.
const lumpedCurveNumber = 75

// Model runs the semi-distributed rainfall-runoff computation for a basin.
// It is safe for concurrent use across distinct basins.
type Model struct {
	logger *slog.Logger
}

// NewModel creates a Model logging through the given logger.
func NewModel(logger *slog.Logger) *Model {
	return &Model{logger: logger}
}

// Run validates the basin and produces its composite outlet hydrograph
// from the rainfall estimate. Validation failures return a
// *ValidationError and a zero result; the caller records it and moves on
// to the next basin.
func (m *Model) Run(basin domain.Basin, rain domain.BasinRainfall) (domain.BasinResult, error) {
	if err := ValidateBasin(basin); err != nil {
		return domain.BasinResult{}, err
	}

	if len(basin.Subcatchments) == 0 {
		return m.runLumped(basin, rain), nil
	}
	return m.runDistributed(basin, rain), nil
}

// runDistributed models every subcatchment, routes each to the outlet, and
// superposes the routed hydrographs sample-by-sample.
func (m *Model) runDistributed(basin domain.Basin, rain domain.BasinRainfall) domain.BasinResult {
	result := domain.BasinResult{
		BasinID:       basin.ID,
		Method:        domain.ModelSemiDistributed,
		Estimation:    rain.Method,
		TimeStep:      TimeStep,
		MeanPrecip:    rain.MeanPrecip,
		MaxIntensity:  rain.MaxIntensity,
		Subcatchments: make([]domain.SubcatchmentResult, 0, len(basin.Subcatchments)),
		ComputedAt:    domain.Now(),
	}

	for i, sub := range basin.Subcatchments {
		est := estimateFor(rain, sub.ID, i)
		sr := m.runSubcatchment(basin.ID, sub, est)
		result.Subcatchments = append(result.Subcatchments, sr)
	}

	result.Composite = superpose(result.Subcatchments)
	result.PeakFlow, result.PeakTime = result.Composite.Peak()
	return result
}

// runSubcatchment applies loss, Clark, and routing for one unit.
func (m *Model) runSubcatchment(basinID string, sub domain.Subcatchment, est domain.RainfallEstimate) domain.SubcatchmentResult {
	tc := TimeOfConcentration(sub)
	sr := domain.SubcatchmentResult{
		SubcatchmentID: sub.ID,
		Area:           sub.Area,
		CurveNumber:    sub.CurveNumber,
		Tc:             tc,
		Precipitation:  est.Precipitation,
		Intensity:      est.Intensity,
		RationalPeak:   RationalPeak(sub.CurveNumber, est.Intensity, sub.Area),
	}

	sr.EffectiveRainfall = EffectiveRainfall(est.Precipitation, sub.CurveNumber)
	if sr.EffectiveRainfall <= 0 {
		return sr
	}

	local := ClarkHydrograph(sub, sr.EffectiveRainfall, TimeStep)
	sr.ClarkPeak, _ = local.Peak()

	routed := local
	if sub.Routing != nil {
		var skipped int
		routed, skipped = Route(local, *sub.Routing, TimeStep)
		if skipped > 0 {
			m.logger.Warn("muskingum reach skipped, unstable denominator",
				"basin", basinID, "subcatchment", sub.ID, "reaches_skipped", skipped)
		}
	}
	sr.Routed = routed
	sr.RoutedPeak, _ = routed.Peak()
	return sr
}

// runLumped is the compatibility shim for basins without subcatchment
// geometry: the basin runs as a single synthetic unit under a default CN
// and the coarse rational table, reporting whichever peak is larger.
func (m *Model) runLumped(basin domain.Basin, rain domain.BasinRainfall) domain.BasinResult {
	synthetic := domain.Subcatchment{
		ID:          basin.ID,
		Area:        basin.Area,
		CurveNumber: lumpedCurveNumber,
	}

	pe := EffectiveRainfall(rain.MeanPrecip, lumpedCurveNumber)
	var composite domain.Hydrograph
	var clarkPeak, peakTime float64
	if pe > 0 {
		composite = ClarkHydrograph(synthetic, pe, TimeStep)
		clarkPeak, peakTime = composite.Peak()
	}

	rational := rationalPeakCoarse(lumpedCurveNumber, rain.MaxIntensity, basin.Area)
	peak := math.Max(clarkPeak, rational)

	return domain.BasinResult{
		BasinID:      basin.ID,
		Method:       domain.ModelLumped,
		Estimation:   rain.Method,
		TimeStep:     TimeStep,
		Composite:    composite,
		PeakFlow:     peak,
		PeakTime:     peakTime,
		MeanPrecip:   rain.MeanPrecip,
		MaxIntensity: rain.MaxIntensity,
		ComputedAt:   domain.Now(),
	}
}

// estimateFor finds the rainfall estimate for a subcatchment, preferring
// id match and falling back to position.
func estimateFor(rain domain.BasinRainfall, id string, index int) domain.RainfallEstimate {
	for _, est := range rain.Subcatchments {
		if est.SubcatchmentID == id {
			return est
		}
	}
	if index < len(rain.Subcatchments) {
		return rain.Subcatchments[index]
	}
	return domain.RainfallEstimate{SubcatchmentID: id, Method: domain.EstimateNoData}
}

// superpose sums routed hydrographs index-by-index out to the longest one.
func superpose(subs []domain.SubcatchmentResult) domain.Hydrograph {
	var longest int
	for _, sr := range subs {
		if len(sr.Routed) > longest {
			longest = len(sr.Routed)
		}
	}
	if longest == 0 {
		return nil
	}

	composite := make(domain.Hydrograph, longest)
	for i := range composite {
		composite[i].Time = float64(i) * TimeStep
		for _, sr := range subs {
			if i < len(sr.Routed) {
				composite[i].Flow += sr.Routed[i].Flow
			}
		}
	}
	return composite
}
