// Package alert classifies basin results into colour-coded warning levels
// and keeps the rolling alert history.
package alert

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/google/uuid"
)

// Intensity and precipitation trigger thresholds, shared by every basin.
// Discharge thresholds come from the basin catalogue.
const (
	redIntensity    = 60.0
	orangeIntensity = 30.0
	yellowIntensity = 15.0

	redPrecip    = 100.0
	orangePrecip = 50.0
	yellowPrecip = 20.0
)

// Level applies the classification ladder top-down, first match wins.
// Basins that failed validation classify as green.
func Level(result domain.BasinResult, thresholds domain.Thresholds) domain.AlertLevel {
	if result.Error != "" {
		return domain.LevelGreen
	}
	q, i, p := result.PeakFlow, result.MaxIntensity, result.MeanPrecip
	switch {
	case q >= thresholds.Red || i >= redIntensity || p >= redPrecip:
		return domain.LevelRed
	case q >= thresholds.Orange || i >= orangeIntensity || p >= orangePrecip:
		return domain.LevelOrange
	case q >= thresholds.Yellow || i >= yellowIntensity || p >= yellowPrecip:
		return domain.LevelYellow
	default:
		return domain.LevelGreen
	}
}

// Classify evaluates a basin result and returns the alert to emit, or nil
// when the basin is green.
func Classify(basin domain.Basin, result domain.BasinResult) *domain.Alert {
	level := Level(result, basin.Thresholds)
	if level == domain.LevelGreen {
		return nil
	}
	return &domain.Alert{
		ID:            uuid.NewString(),
		BasinID:       basin.ID,
		BasinName:     basin.Name,
		Level:         level,
		Message:       message(basin, result, level),
		Flow:          result.PeakFlow,
		Precipitation: result.MeanPrecip,
		Intensity:     result.MaxIntensity,
		Timestamp:     domain.Now(),
	}
}

// message names the trigger that fired the level, preferring discharge.
func message(basin domain.Basin, result domain.BasinResult, level domain.AlertLevel) string {
	threshold, intensityTrigger := basin.Thresholds.Yellow, yellowIntensity
	switch level {
	case domain.LevelRed:
		threshold, intensityTrigger = basin.Thresholds.Red, redIntensity
	case domain.LevelOrange:
		threshold, intensityTrigger = basin.Thresholds.Orange, orangeIntensity
	}

	if result.PeakFlow >= threshold {
		return fmt.Sprintf("%s: forecast peak flow %.1f m³/s reaches the %s threshold (%.0f m³/s)",
			basin.Name, result.PeakFlow, level, threshold)
	}
	if result.MaxIntensity >= intensityTrigger {
		return fmt.Sprintf("%s: rainfall intensity %.1f mm/h at %s level", basin.Name, result.MaxIntensity, level)
	}
	return fmt.Sprintf("%s: accumulated rainfall %.1f mm at %s level", basin.Name, result.MeanPrecip, level)
}

// SortBySeverity orders alerts red first, stable within a level.
func SortBySeverity(alerts []domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level.Rank() < alerts[j].Level.Rank()
	})
}
