// Package hydrology turns areal rainfall into outlet discharge.
//
// The semi-distributed model runs per subcatchment: SCS curve-number loss
// separates effective rainfall, a Clark unit hydrograph (parabolic
// time-area curve translated through a linear reservoir) shapes the local
// response, and Muskingum routing carries it down the channel path to the
// outlet. Routed hydrographs superpose sample-by-sample into the composite
// outlet hydrograph. A rational-method peak is computed alongside as a
// sanity reference, and basins without subcatchments fall back to a lumped
// single-unit run.
//
// All functions are pure: the same basin and rainfall always produce the
// same result, and distinct basins may be processed concurrently.
package hydrology
