// Package pipeline coordinates the periodic estimate-route-classify cycle
// and publishes each cycle's outcome as an atomically swapped snapshot.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/alert"
	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/couchcryptid/flood-alert-service/internal/hydrology"
	"github.com/couchcryptid/flood-alert-service/internal/observability"
	"github.com/couchcryptid/flood-alert-service/internal/spatial"
)

// StationFetcher retrieves the latest station-network observations.
type StationFetcher interface {
	FetchStations(ctx context.Context) ([]domain.Station, error)
}

// RadarFetcher retrieves the latest decoded reflectivity grid.
type RadarFetcher interface {
	FetchRadar(ctx context.Context) (*domain.RadarGrid, error)
}

// AlertPublisher pushes emitted alerts to subscribers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []domain.Alert) error
}

// Coordinator runs cycles over the basin catalogue. Basins are independent
// and processed on a bounded worker pool; each basin's pipeline is
// internally sequential. The catalogue is immutable after construction.
type Coordinator struct {
	basins    []domain.Basin
	stations  StationFetcher
	radar     RadarFetcher // nil when radar is disabled
	publisher AlertPublisher
	model     *hydrology.Model
	history   *alert.History
	logger    *slog.Logger
	metrics   *observability.Metrics
	workers   int

	snapshot atomic.Pointer[domain.Snapshot]
}

// New creates a Coordinator. radar and publisher may be nil to disable the
// radar feed and broadcasting respectively.
func New(basins []domain.Basin, stations StationFetcher, radar RadarFetcher, publisher AlertPublisher,
	logger *slog.Logger, metrics *observability.Metrics, workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		basins:    basins,
		stations:  stations,
		radar:     radar,
		publisher: publisher,
		model:     hydrology.NewModel(logger),
		history:   alert.NewHistory(),
		logger:    logger,
		metrics:   metrics,
		workers:   workers,
	}
}

// Snapshot returns the latest published snapshot, or nil before the first
// completed cycle. The returned value is immutable.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	return c.snapshot.Load()
}

// History returns the rolling alert history.
func (c *Coordinator) History() *alert.History {
	return c.history
}

// CheckReadiness returns nil once at least one cycle has been published.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if c.snapshot.Load() == nil {
		return errors.New("no cycle has completed yet")
	}
	return nil
}

// RunCycle executes one complete cycle: fetch feeds, process every basin,
// classify, swap the snapshot, broadcast. Feed failures degrade to the
// previous snapshot's data; basin failures are recorded per basin. The
// cycle never partially applies: the swap is the only mutation visible to
// readers.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	start := time.Now()
	prev := c.snapshot.Load()

	stations := c.fetchStations(ctx, prev)
	radar := c.fetchRadar(ctx, prev)

	// Interpolation consumes stations in slice order; sort by id so a
	// cycle re-run over the same inputs is byte-identical (map iteration
	// would reorder float summation and colocated-gauge wins).
	stationList := make([]domain.Station, 0, len(stations))
	online := 0
	for _, s := range stations {
		stationList = append(stationList, s)
		if s.Online {
			online++
		}
	}
	sort.Slice(stationList, func(i, j int) bool { return stationList[i].ID < stationList[j].ID })

	results, alerts := c.processBasins(ctx, stationList, radar)

	alert.SortBySeverity(alerts)
	c.history.Append(alerts...)

	next := &domain.Snapshot{
		Stations:  stations,
		Results:   results,
		Radar:     radar,
		Alerts:    alerts,
		UpdatedAt: domain.Now(),
	}
	c.snapshot.Store(next)

	c.metrics.CyclesTotal.Inc()
	c.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	c.metrics.StationsOnline.Set(float64(online))
	if radar != nil {
		c.metrics.RadarPixels.Set(float64(len(radar.Pixels)))
	} else {
		c.metrics.RadarPixels.Set(0)
	}
	for _, a := range alerts {
		c.metrics.AlertsEmitted.WithLabelValues(string(a.Level)).Inc()
	}

	c.logger.Info("cycle complete",
		"basins", len(results),
		"stations", len(stations),
		"alerts", len(alerts),
		"duration", time.Since(start),
	)

	if c.publisher != nil && len(alerts) > 0 {
		if err := c.publisher.PublishAlerts(ctx, alerts); err != nil {
			c.logger.Error("alert broadcast failed", "error", err)
		}
	}
	return nil
}

// fetchStations pulls the station feed, deduplicating by id with later
// observations replacing earlier ones. On failure the previous snapshot's
// stations carry over.
func (c *Coordinator) fetchStations(ctx context.Context, prev *domain.Snapshot) map[string]domain.Station {
	observations, err := c.stations.FetchStations(ctx)
	if err != nil {
		c.logger.Error("station feed fetch failed, reusing previous cycle", "error", err)
		c.metrics.FeedFetchErrors.WithLabelValues("stations").Inc()
		if prev != nil {
			return prev.Stations
		}
		return map[string]domain.Station{}
	}

	stations := make(map[string]domain.Station, len(observations))
	for _, s := range observations {
		stations[s.ID] = s
	}
	return stations
}

// fetchRadar pulls the reflectivity grid when the feed is enabled,
// carrying the previous grid over on failure.
func (c *Coordinator) fetchRadar(ctx context.Context, prev *domain.Snapshot) *domain.RadarGrid {
	if c.radar == nil {
		return nil
	}
	grid, err := c.radar.FetchRadar(ctx)
	if err != nil {
		c.logger.Error("radar feed fetch failed, reusing previous cycle", "error", err)
		c.metrics.FeedFetchErrors.WithLabelValues("radar").Inc()
		if prev != nil {
			return prev.Radar
		}
		return nil
	}
	return grid
}

// processBasins fans the catalogue out over the worker pool and gathers
// results and emitted alerts. Errors stay local to their basin.
func (c *Coordinator) processBasins(ctx context.Context, stations []domain.Station, radar *domain.RadarGrid) (map[string]domain.BasinResult, []domain.Alert) {
	type outcome struct {
		result domain.BasinResult
		alert  *domain.Alert
	}

	outcomes := make([]outcome, len(c.basins))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				basin := c.basins[idx]
				result := c.processBasin(basin, stations, radar)
				outcomes[idx] = outcome{
					result: result,
					alert:  alert.Classify(basin, result),
				}
			}
		}()
	}

submit:
	for idx := range c.basins {
		select {
		case <-ctx.Done():
			break submit
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	results := make(map[string]domain.BasinResult, len(c.basins))
	var alerts []domain.Alert
	for _, o := range outcomes {
		if o.result.BasinID == "" {
			continue // cancelled before processing
		}
		results[o.result.BasinID] = o.result
		if o.alert != nil {
			alerts = append(alerts, *o.alert)
		}
	}
	return results, alerts
}

// processBasin runs one basin's estimate-route pipeline, mapping a
// validation failure to an error record.
func (c *Coordinator) processBasin(basin domain.Basin, stations []domain.Station, radar *domain.RadarGrid) domain.BasinResult {
	start := time.Now()
	rain := spatial.EstimateBasin(basin, stations, radar)
	c.metrics.EstimationMethod.WithLabelValues(rain.Method).Inc()

	result, err := c.model.Run(basin, rain)
	if err != nil {
		c.logger.Warn("basin rejected by validation", "basin", basin.ID, "error", err)
		c.metrics.BasinsFailed.Inc()
		return domain.BasinResult{
			BasinID:    basin.ID,
			Estimation: rain.Method,
			Error:      err.Error(),
			ComputedAt: domain.Now(),
		}
	}

	c.metrics.BasinsProcessed.Inc()
	c.metrics.BasinDuration.Observe(time.Since(start).Seconds())
	return result
}
