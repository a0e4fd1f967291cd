// Package httpapi exposes the read-only REST surface over the latest
// snapshot, plus health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-alert-service/internal/alert"
	"github.com/couchcryptid/flood-alert-service/internal/domain"
	"github.com/couchcryptid/flood-alert-service/internal/spatial"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source is the coordinator surface the API reads from. Handlers read the
// atomically published snapshot and the rolling alert history; they never
// trigger work.
type Source interface {
	Snapshot() *domain.Snapshot
	History() *alert.History
	CheckReadiness(ctx context.Context) error
}

// Server wraps the gin engine and the underlying HTTP server.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	source     Source
	basins     []domain.Basin
	logger     *slog.Logger
}

// NewServer builds the router over the given snapshot source and basin
// catalogue.
func NewServer(addr string, source Source, basins []domain.Basin, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		source: source,
		basins: basins,
		logger: logger,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		api.GET("/snapshot", s.handleSnapshot)
		api.GET("/basins", s.handleBasins)
		api.GET("/basins/:id", s.handleBasin)
		api.GET("/alerts", s.handleAlerts)
		api.GET("/alerts/history", s.handleAlertHistory)
		api.GET("/stations", s.handleStations)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap, ok := s.requireSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"updated_at": snap.UpdatedAt,
		"basins":     s.basinViews(snap),
		"alerts":     snap.Alerts,
		"stations":   len(snap.Stations),
	})
}

func (s *Server) handleBasins(c *gin.Context) {
	snap, ok := s.requireSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.basinViews(snap))
}

func (s *Server) handleBasin(c *gin.Context) {
	snap, ok := s.requireSnapshot(c)
	if !ok {
		return
	}
	id := c.Param("id")
	for _, b := range s.basins {
		if b.ID == id {
			c.JSON(http.StatusOK, basinView(b, snap))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown basin " + id})
}

func (s *Server) handleAlerts(c *gin.Context) {
	snap, ok := s.requireSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Alerts)
}

func (s *Server) handleAlertHistory(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, s.source.History().Recent(limit))
}

type stationView struct {
	domain.Station
	IntensityLabel string `json:"intensity_label"`
}

func (s *Server) handleStations(c *gin.Context) {
	snap, ok := s.requireSnapshot(c)
	if !ok {
		return
	}
	views := make([]stationView, 0, len(snap.Stations))
	for _, st := range snap.Stations {
		views = append(views, stationView{
			Station:        st,
			IntensityLabel: spatial.IntensityLabel(st.Intensity),
		})
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) requireSnapshot(c *gin.Context) (*domain.Snapshot, bool) {
	snap := s.source.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no cycle has completed yet"})
		return nil, false
	}
	return snap, true
}

// basinView joins the immutable catalogue entry with its latest result.
type view struct {
	ID                string                      `json:"id"`
	Name              string                      `json:"name"`
	Type              string                      `json:"type,omitempty"`
	Area              float64                     `json:"area"`
	Outlet            domain.Geo                  `json:"outlet"`
	Bounds            domain.Bounds               `json:"bounds"`
	Thresholds        domain.Thresholds           `json:"thresholds"`
	MeanPrecip        float64                     `json:"mean_precip"`
	MaxIntensity      float64                     `json:"max_intensity"`
	PeakFlow          float64                     `json:"peak_flow"`
	PeakTime          float64                     `json:"peak_time"`
	Method            string                      `json:"method,omitempty"`
	Estimation        string                      `json:"estimation,omitempty"`
	Error             string                      `json:"error,omitempty"`
	Subcatchments     []domain.SubcatchmentResult `json:"subcatchments,omitempty"`
	SubcatchmentCount int                         `json:"subcatchment_count"`
}

func (s *Server) basinViews(snap *domain.Snapshot) []view {
	views := make([]view, 0, len(s.basins))
	for _, b := range s.basins {
		views = append(views, basinView(b, snap))
	}
	return views
}

func basinView(b domain.Basin, snap *domain.Snapshot) view {
	v := view{
		ID:                b.ID,
		Name:              b.Name,
		Type:              b.Type,
		Area:              b.Area,
		Outlet:            b.Outlet,
		Bounds:            b.Bounds,
		Thresholds:        b.Thresholds,
		SubcatchmentCount: len(b.Subcatchments),
	}
	if result, ok := snap.Results[b.ID]; ok {
		v.MeanPrecip = result.MeanPrecip
		v.MaxIntensity = result.MaxIntensity
		v.PeakFlow = result.PeakFlow
		v.PeakTime = result.PeakTime
		v.Method = result.Method
		v.Estimation = result.Estimation
		v.Error = result.Error
		v.Subcatchments = result.Subcatchments
	}
	return v
}
