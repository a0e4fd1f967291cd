package hydrology

import (
	"math"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
)

// timeArea is the dimensionless cumulative time-area curve: a symmetric
// parabolic S-curve, clamped outside [0, 1]. The linear triangular
// approximation is NOT an acceptable substitute; outputs diverge.
func timeArea(u float64) float64 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	if u <= 0.5 {
		return 2 * u * u
	}
	return 1 - 2*(1-u)*(1-u)
}

// ClarkHydrograph builds the subcatchment's unit-hydrograph response to an
// effective rainfall depth pe (mm) at step dt (hours). Rainfall translates
// through the time-area curve as inflow volume fractions, then attenuates
// through a linear reservoir with coefficient R.
func ClarkHydrograph(sub domain.Subcatchment, pe, dt float64) domain.Hydrograph {
	tc := TimeOfConcentration(sub)
	r := storageCoefficient(sub, tc)

	steps := int(math.Ceil((tc + 4*r) / dt))
	if steps < 1 {
		steps = 1
	}

	// Total runoff volume in m³: mm over km².
	volume := pe / 1000 * sub.Area * 1e6

	c1 := dt / (r + 0.5*dt)
	c2 := 1 - c1

	h := make(domain.Hydrograph, steps)
	var q float64
	for i := 0; i < steps; i++ {
		ti := float64(i) * dt

		var inflow float64
		if ti <= tc && tc > 0 {
			frac := timeArea(ti/tc) - timeArea((ti-dt)/tc)
			if frac > 0 {
				inflow = frac * volume / (dt * 3600)
			}
		}

		q = c1*inflow + c2*q
		if q < 0 {
			q = 0
		}
		h[i] = domain.HydrographPoint{Time: ti, Flow: q}
	}
	return h
}
