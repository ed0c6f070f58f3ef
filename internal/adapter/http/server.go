package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-profile-service/internal/display"
	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/couchcryptid/quake-profile-service/internal/session"
)

const maxBodyBytes = 1 << 20

// Dashboard is the session store served by the API.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Create(ctx context.Context) *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string)
	Networks(ctx context.Context) []domain.Network
}

// Server exposes health, readiness, metrics and the dashboard JSON API.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	theme      display.Theme
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api routes.
func NewServer(addr string, dashboard Dashboard, theme display.Theme, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Date range changes wait on the upstream event query.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: dashboard,
		theme:     theme,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dashboard))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/networks", s.handleNetworks)
	mux.HandleFunc("GET /api/theme", s.handleTheme)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleView))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/networks", s.withSession(s.handleNetworksSelect))
	mux.HandleFunc("PUT /api/sessions/{id}/dates", s.withSession(s.handleDates))
	mux.HandleFunc("PUT /api/sessions/{id}/profile", s.withSession(s.handleProfile))
	mux.HandleFunc("PUT /api/sessions/{id}/fit", s.withSession(s.handleFit))
	mux.HandleFunc("PUT /api/sessions/{id}/scale", s.withSession(s.handleScale))
	mux.HandleFunc("GET /api/sessions/{id}/stations.geojson", s.withSession(s.handleStationFeatures))
	mux.HandleFunc("GET /api/sessions/{id}/events.geojson", s.withSession(s.handleEventFeatures))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.dashboard.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Networks(r.Context()))
}

func (s *Server) handleTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		display.Theme
		PlanarExtent [2]geo.PlanarPoint `json:"planar_extent"`
	}{s.theme, s.theme.Extent.Planar()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.dashboard.Create(r.Context())
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.dashboard.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sess.View())
}

type networksRequest struct {
	Networks []string `json:"networks"`
}

func (s *Server) handleNetworksSelect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req networksRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, sess.SelectNetworks(r.Context(), req.Networks))
}

type datesRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req datesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dr, err := domain.ParseDateRange(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := sess.SetDateRange(r.Context(), dr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type profileRequest struct {
	Vertices []geo.PlanarPoint `json:"vertices"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, sess.DrawProfile(req.Vertices))
}

type fitRequest struct {
	Indices []int `json:"indices"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req fitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, sess.SelectFit(req.Indices))
}

type scaleRequest struct {
	Scale float64 `json:"scale"`
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req scaleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := sess.SetEventScale(req.Scale)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStationFeatures(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeGeoJSON(w, session.StationFeatures(sess.View().Stations))
}

func (s *Server) handleEventFeatures(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeGeoJSON(w, session.EventFeatures(sess.View().Events))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeGeoJSON(w http.ResponseWriter, fc *geojson.FeatureCollection) {
	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before committing the status. Encoding failures become a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n')) //nolint:errcheck // best-effort response
}
