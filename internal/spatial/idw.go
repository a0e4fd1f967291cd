package spatial

import (
	"math"

	"github.com/couchcryptid/flood-alert-service/internal/geo"
)

const (
	// idwPower is the inverse-distance exponent.
	idwPower = 2
	// idwRadiusKm is the search radius; samples beyond it carry no weight.
	idwRadiusKm = 50.0
)

// Interpolate estimates the sample field at (lat, lon) by inverse-distance
// weighting. A sample closer than 10 m short-circuits to that sample's
// value; the first such sample in slice order wins. Returns 0 when no
// sample lies within the search radius.
func Interpolate(lat, lon float64, samples []geo.Sample) float64 {
	var sumW, sumWV float64
	for _, s := range samples {
		d := geo.Haversine(lat, lon, s.Lat, s.Lon)
		if d < geo.CoincidentKm {
			return s.Value
		}
		if d > idwRadiusKm {
			continue
		}
		w := 1 / math.Pow(d, idwPower)
		sumW += w
		sumWV += w * s.Value
	}
	if sumW == 0 {
		return 0
	}
	return sumWV / sumW
}
