package hydrology

import (
	"fmt"
	"math"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
)

// TimeStep is the fixed hydrograph sampling step in hours.
const TimeStep = 0.25

// Defaults applied when the catalogue omits optional parameters.
const (
	defaultSlopePercent = 5.0
	// channelLengthFactor scales √area into a main-channel length estimate.
	channelLengthFactor = 1.5
	// storageFactor derives the Clark storage coefficient from tc.
	storageFactor = 0.7
)

// TimeOfConcentration returns the subcatchment's tc in hours. An explicit
// value wins; otherwise Témez: tc = 0.3·(L/S^0.25)^0.76 with L in km and
// S in percent, deriving L from the area and S from the default slope
// when absent.
func TimeOfConcentration(sub domain.Subcatchment) float64 {
	if sub.TimeOfConcentration > 0 {
		return sub.TimeOfConcentration
	}
	length := sub.ChannelLength
	if length <= 0 {
		length = math.Sqrt(sub.Area) * channelLengthFactor
	}
	slope := sub.Slope
	if slope <= 0 {
		slope = defaultSlopePercent
	}
	return 0.3 * math.Pow(length/math.Pow(slope, 0.25), 0.76)
}

// storageCoefficient returns the Clark reservoir constant R in hours.
func storageCoefficient(sub domain.Subcatchment, tc float64) float64 {
	if sub.StorageCoefficient > 0 {
		return sub.StorageCoefficient
	}
	return storageFactor * tc
}

// ValidationError tags an unphysical basin parameter. It fails only the
// basin that carries it; the cycle continues with the others.
type ValidationError struct {
	BasinID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("basin %s: invalid %s: %s", e.BasinID, e.Field, e.Reason)
}

// ValidateBasin checks the physical parameter ranges before a model run.
func ValidateBasin(basin domain.Basin) error {
	fail := func(field, reason string) error {
		return &ValidationError{BasinID: basin.ID, Field: field, Reason: reason}
	}
	for _, sub := range basin.Subcatchments {
		if sub.Area <= 0 {
			return fail("area", fmt.Sprintf("subcatchment %s: area %.3f must be positive", sub.ID, sub.Area))
		}
		if sub.CurveNumber < 30 || sub.CurveNumber > 100 {
			return fail("curve_number", fmt.Sprintf("subcatchment %s: CN %.1f outside [30, 100]", sub.ID, sub.CurveNumber))
		}
		if r := sub.Routing; r != nil {
			if r.K <= 0 {
				return fail("routing.k", fmt.Sprintf("subcatchment %s: K %.3f must be positive", sub.ID, r.K))
			}
			if r.X < 0 || r.X > 0.5 {
				return fail("routing.x", fmt.Sprintf("subcatchment %s: X %.3f outside [0, 0.5]", sub.ID, r.X))
			}
			if r.Reaches < 1 {
				return fail("routing.reaches", fmt.Sprintf("subcatchment %s: reaches %d must be at least 1", sub.ID, r.Reaches))
			}
		}
	}
	return nil
}
