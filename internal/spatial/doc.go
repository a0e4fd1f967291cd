// Package spatial estimates areal rainfall over basins and subcatchments.
//
// Point gauge observations are spread with inverse-distance weighting
// (power 2, 50 km search radius). When a radar reflectivity grid is
// available the gauge field conditions the radar field Sinclair–Pegram
// style: radar depths are corrected by an interpolated gauge/radar bias
// ratio, then blended with the gauge field. Every estimate degrades
// gracefully: no radar falls back to pure gauge IDW, no gauges to
// radar-only, neither to zeros, and the outcome is tagged with a method
// string so consumers can tell a dry basin from a blind one.
package spatial
