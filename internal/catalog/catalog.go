// Package catalog loads the declarative basin catalogue. The catalogue is
// read once at startup and treated as immutable for the life of the
// process.
package catalog

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// areaMismatchTolerance is the relative divergence between the declared
// basin area and the subcatchment sum above which a warning is logged.
// The sum is not enforced.
const areaMismatchTolerance = 0.10

type file struct {
	Basins []domain.Basin `yaml:"basins"`
}

// Load reads and validates the catalogue at path.
func Load(path string, logger *slog.Logger) ([]domain.Basin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return Parse(data, logger)
}

// Parse decodes a catalogue document and validates every basin.
func Parse(data []byte, logger *slog.Logger) ([]domain.Basin, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(f.Basins) == 0 {
		return nil, fmt.Errorf("catalogue contains no basins")
	}

	seen := make(map[string]bool, len(f.Basins))
	for _, b := range f.Basins {
		if err := validateBasin(b); err != nil {
			return nil, err
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("catalogue: duplicate basin id %q", b.ID)
		}
		seen[b.ID] = true
		warnAreaMismatch(b, logger)
	}
	return f.Basins, nil
}

func validateBasin(b domain.Basin) error {
	if b.ID == "" {
		return fmt.Errorf("catalogue: basin with empty id")
	}
	if !b.Bounds.Valid() {
		return fmt.Errorf("catalogue: basin %s: malformed bounds", b.ID)
	}
	th := b.Thresholds
	if !(th.Yellow < th.Orange && th.Orange < th.Red) {
		return fmt.Errorf("catalogue: basin %s: thresholds must be strictly increasing", b.ID)
	}
	for _, sub := range b.Subcatchments {
		if sub.ID == "" {
			return fmt.Errorf("catalogue: basin %s: subcatchment with empty id", b.ID)
		}
		if !sub.Bounds.Valid() {
			return fmt.Errorf("catalogue: basin %s: subcatchment %s: malformed bounds", b.ID, sub.ID)
		}
	}
	return nil
}

// warnAreaMismatch logs when subcatchment areas diverge from the declared
// basin area. Physical parameter ranges are checked per cycle by the
// hydrology model, not here, so a bad CN disables one basin rather than
// the whole catalogue.
func warnAreaMismatch(b domain.Basin, logger *slog.Logger) {
	if len(b.Subcatchments) == 0 || b.Area <= 0 || logger == nil {
		return
	}
	var sum float64
	for _, sub := range b.Subcatchments {
		sum += sub.Area
	}
	if math.Abs(sum-b.Area)/b.Area > areaMismatchTolerance {
		logger.Warn("subcatchment areas diverge from basin area",
			"basin", b.ID, "declared", b.Area, "sum", sum)
	}
}
