// Package session holds per-user dashboard state. Every handler recomputes its
// derived series from scratch and replaces them wholesale, so a View returned
// by one call is never mutated by a later one.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/couchcryptid/quake-profile-service/internal/gr"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
	"github.com/couchcryptid/quake-profile-service/internal/profile"
)

// MaxEventScale bounds the magnitude-to-size factor.
const MaxEventScale = 20.0

// ErrInvalidScale is returned for an event scale outside (0, MaxEventScale].
var ErrInvalidScale = errors.New("event scale must be greater than 0 and at most 20")

// Publisher forwards freshly loaded event catalogs downstream.
type Publisher interface {
	PublishCatalog(ctx context.Context, events []domain.SeismicEvent) error
}

// View is an immutable snapshot of a session's display series.
type View struct {
	ID        string                `json:"id"`
	Networks  []string              `json:"networks"`
	Range     domain.DateRange      `json:"range"`
	Scale     float64               `json:"scale"`
	Stations  []domain.Station      `json:"stations"`
	Events    []domain.SeismicEvent `json:"events"`
	Curve     []gr.CurvePoint       `json:"curve"`
	Vertices  []geo.PlanarPoint     `json:"vertices,omitempty"`
	Profile   *profile.Profile      `json:"profile"`
	Selection []int                 `json:"selection,omitempty"`
	Fit       *gr.Result            `json:"fit"`
	FitLabel  string                `json:"fit_label"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Session serializes the handlers of one dashboard user.
type Session struct {
	catalog   *domain.Catalog
	opts      profile.Options
	publisher Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
	clock     clockwork.Clock

	mu   sync.Mutex
	view View
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ID
}

// View returns the current snapshot.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SelectNetworks replaces the station series with the stations of codes.
// An empty selection clears the map.
func (s *Session) SelectNetworks(ctx context.Context, codes []string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes = slices.Clone(codes)
	s.view.Networks = codes
	s.view.Stations = s.catalog.Stations(ctx, codes)
	s.touch()
	s.logger.Debug("networks selected", "session", s.view.ID, "networks", codes, "stations", len(s.view.Stations))
	return s.view
}

// SetDateRange reloads the event catalog for r, re-extracts the current
// profile against the new events and clears the fit selection.
func (s *Session) SetDateRange(ctx context.Context, r domain.DateRange) (View, error) {
	if err := r.Validate(); err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadEvents(ctx, r)
	s.touch()
	return s.view, nil
}

// DrawProfile sets the profile polyline. Any vertex count other than two
// clears the profile.
func (s *Session) DrawProfile(vertices []geo.PlanarPoint) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Vertices = slices.Clone(vertices)
	s.extractProfile()
	s.touch()
	return s.view
}

// SelectFit fits the Gutenberg-Richter law over the selected curve indices.
// An empty selection clears the fit.
func (s *Session) SelectFit(selection []int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Selection = slices.Clone(selection)
	s.computeFit()
	s.touch()
	return s.view
}

// SetEventScale resizes the event series.
func (s *Session) SetEventScale(scale float64) (View, error) {
	if !(scale > 0 && scale <= MaxEventScale) {
		return View{}, ErrInvalidScale
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Scale = scale
	s.view.Events = domain.Rescale(s.view.Events, scale)
	s.touch()
	return s.view, nil
}

func (s *Session) loadEvents(ctx context.Context, r domain.DateRange) {
	set := s.catalog.Events(ctx, r, s.view.Scale)
	s.view.Range = r
	s.view.Events = set.Events
	s.view.Curve = set.Curve
	s.view.Selection = nil
	s.view.Fit = nil
	s.view.FitLabel = ""
	s.metrics.EventsLoaded.Set(float64(len(set.Events)))
	s.extractProfile()

	s.logger.Info("events loaded",
		"session", s.view.ID,
		"start", domain.FormatDate(r.Start),
		"end", domain.FormatDate(r.End),
		"events", len(set.Events),
	)

	if s.publisher == nil || len(set.Events) == 0 {
		return
	}
	if err := s.publisher.PublishCatalog(ctx, set.Events); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("catalog publish failed", "session", s.view.ID, "error", err)
		return
	}
	s.metrics.CatalogPublished.Add(float64(len(set.Events)))
}

func (s *Session) extractProfile() {
	if len(s.view.Vertices) == 0 {
		s.view.Profile = nil
		return
	}
	p, ok := profile.Extract(s.view.Vertices, s.view.Events, s.opts)
	if !ok {
		s.view.Profile = nil
		s.metrics.ProfilesComputed.WithLabelValues("none").Inc()
		return
	}
	s.view.Profile = &p
	s.metrics.ProfilesComputed.WithLabelValues("profile").Inc()
	s.metrics.ProfileEvents.Observe(float64(len(p.Points)))
}

func (s *Session) computeFit() {
	if len(s.view.Selection) == 0 {
		s.view.Fit = nil
		s.view.FitLabel = ""
		return
	}
	res := gr.Fit(s.view.Curve, s.view.Selection)
	s.view.Fit = &res
	s.view.FitLabel = res.Label()
	if res.Defined {
		s.metrics.FitsComputed.WithLabelValues("defined").Inc()
	} else {
		s.metrics.FitsComputed.WithLabelValues("undefined").Inc()
	}
}

func (s *Session) touch() {
	s.view.UpdatedAt = s.clock.Now().UTC()
}
