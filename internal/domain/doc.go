// Package domain models the flash-flood early-warning pipeline's data.
//
// # Data Sources
//
// Rainfall observations come from a wide-area automatic weather-station
// network polled on a fixed cadence. Each station reports accumulated
// precipitation depth (mm over the reporting interval) and instantaneous
// rain intensity (mm/h), plus an online flag. Stations with zero
// coordinates are placeholder rows in the upstream feed and are discarded.
//
// Radar reflectivity comes from the national composite product as a grid of
// (lat, lon, dBZ) pixels. Reflectivity is converted to rain rate through a
// Z–R power law (see the spatial package); availability is feature-flagged
// by the AEMET API key, so the pipeline must run gauge-only when unset.
//
// # Basins and Subcatchments
//
// A basin is a hydrographic unit with an outlet, discharge thresholds in
// m³/s, and an ordered list of subcatchments. Each subcatchment carries an
// SCS curve number (30–100), an area in km², a slope in percent, and
// optionally a main-channel length, a time of concentration, a linear
// reservoir storage coefficient, and Muskingum routing parameters
// describing the channel path to the outlet. Missing values are derived:
//
//	tc = 0.3·(L/S^0.25)^0.76 (Témez), L defaulting to √area·1.5 km, S to 5%
//	R  = 0.7·tc
//
// The catalogue is loaded once at startup and is immutable afterwards.
//
// # Units
//
// Depths are mm, intensities mm/h, areas km², flows m³/s, times hours,
// coordinates decimal degrees WGS-84. Hydrographs sample flow at a fixed
// step of 0.25 h.
//
// # Snapshots
//
// Every processing cycle builds a fresh Snapshot (stations, basin results,
// radar grid, active alerts) and publishes it atomically. Readers never
// observe a half-updated cycle; see the pipeline package.
package domain
