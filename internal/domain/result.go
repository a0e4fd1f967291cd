package domain

import "time"

// Rainfall estimation method tags, from richest to poorest input set.
// Consumers use these to tell degraded cycles apart from wet silence.
const (
	EstimateFusion   = "distributed_fusion"
	EstimateGaugeIDW = "distributed_idw"
	EstimateRadar    = "radar_only"
	EstimateNoData   = "no_data"
)

// RainfallEstimate is the spatial rainfall estimate for one subcatchment
// (or for a whole basin in the lumped fallback).
type RainfallEstimate struct {
	SubcatchmentID string  `json:"subcatchment_id,omitempty"`
	Precipitation  float64 `json:"precipitation"` // mean areal depth, mm
	Intensity      float64 `json:"intensity"`     // peak grid intensity, mm/h
	Method         string  `json:"method"`
	GaugeCount     int     `json:"gauge_count"`
	RadarCount     int     `json:"radar_count"`
}

// BasinRainfall aggregates per-subcatchment estimates. Mean precipitation
// is area-weighted; intensity is the maximum over subcatchments.
type BasinRainfall struct {
	Subcatchments []RainfallEstimate `json:"subcatchments"`
	MeanPrecip    float64            `json:"mean_precip"`
	MaxIntensity  float64            `json:"max_intensity"`
	Method        string             `json:"method"`
}

// Basin model method tags.
const (
	ModelSemiDistributed = "semi-distributed"
	ModelLumped          = "lumped"
)

// SubcatchmentResult holds the hydrological outcome for one subcatchment.
type SubcatchmentResult struct {
	SubcatchmentID    string     `json:"subcatchment_id"`
	Area              float64    `json:"area"`
	CurveNumber       float64    `json:"curve_number"`
	Tc                float64    `json:"tc"` // effective time of concentration, hours
	Precipitation     float64    `json:"precipitation"`
	Intensity         float64    `json:"intensity"`
	EffectiveRainfall float64    `json:"effective_rainfall"` // mm
	ClarkPeak         float64    `json:"clark_peak"`         // m³/s before routing
	RoutedPeak        float64    `json:"routed_peak"`        // m³/s at the outlet
	RationalPeak      float64    `json:"rational_peak"`      // m³/s, sanity reference
	Routed            Hydrograph `json:"-"`
}

// BasinResult is the outcome of one basin's pipeline run within a cycle.
// A validation failure leaves Error non-empty and the numeric fields zero;
// classification treats such basins as green.
type BasinResult struct {
	BasinID       string               `json:"basin_id"`
	Method        string               `json:"method"` // semi-distributed or lumped
	Estimation    string               `json:"estimation"`
	TimeStep      float64              `json:"time_step"` // hours
	Composite     Hydrograph           `json:"composite,omitempty"`
	PeakFlow      float64              `json:"peak_flow"`
	PeakTime      float64              `json:"peak_time"`
	MeanPrecip    float64              `json:"mean_precip"`
	MaxIntensity  float64              `json:"max_intensity"`
	Subcatchments []SubcatchmentResult `json:"subcatchments,omitempty"`
	Error         string               `json:"error,omitempty"`
	ComputedAt    time.Time            `json:"computed_at"`
}

// Snapshot is the immutable outcome of one complete cycle. The pipeline
// builds a fresh Snapshot and swaps it atomically; nothing mutates a
// published snapshot.
type Snapshot struct {
	Stations  map[string]Station     `json:"stations"`
	Results   map[string]BasinResult `json:"results"`
	Radar     *RadarGrid             `json:"radar,omitempty"`
	Alerts    []Alert                `json:"alerts"`
	UpdatedAt time.Time              `json:"updated_at"`
}
