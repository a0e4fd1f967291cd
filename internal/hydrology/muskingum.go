package hydrology

import "github.com/couchcryptid/flood-alert-service/internal/domain"

// Route applies Muskingum channel routing to an inflow hydrograph at step
// dt (hours). The reach transfer is applied params.Reaches times in
// series, each pass feeding the next; sample times are preserved.
//
// A non-positive denominator D = K − K·X + 0.5·dt would make the scheme
// unstable, so such a reach is skipped; the returned count lets the caller
// log the guard.
func Route(in domain.Hydrograph, params domain.RoutingParams, dt float64) (out domain.Hydrograph, skippedReaches int) {
	out = in
	for reach := 0; reach < params.Reaches; reach++ {
		d := params.K - params.K*params.X + 0.5*dt
		if d <= 0 {
			skippedReaches++
			continue
		}

		c0 := (-params.K*params.X + 0.5*dt) / d
		c1 := (params.K*params.X + 0.5*dt) / d
		c2 := (params.K - params.K*params.X - 0.5*dt) / d

		routed := make(domain.Hydrograph, len(out))
		for i, p := range out {
			if i == 0 {
				routed[0] = p
				continue
			}
			q := c0*p.Flow + c1*out[i-1].Flow + c2*routed[i-1].Flow
			if q < 0 {
				q = 0
			}
			routed[i] = domain.HydrographPoint{Time: p.Time, Flow: q}
		}
		out = routed
	}
	return out, skippedReaches
}
