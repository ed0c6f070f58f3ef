package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
	"github.com/couchcryptid/quake-profile-service/internal/profile"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Settings are the defaults applied to new sessions.
type Settings struct {
	Scale   float64
	Profile profile.Options
}

// Manager creates and looks up sessions. Sessions share the catalog but no
// mutable state.
type Manager struct {
	catalog   *domain.Catalog
	settings  Settings
	publisher Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
	clock     clockwork.Clock
	checks    []namedCheck

	mu       sync.RWMutex
	sessions map[string]*Session
}

type namedCheck struct {
	name    string
	checker sharedobs.ReadinessChecker
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher forwards every loaded catalog to p.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithClock sets the clock used for session timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithReadinessCheck adds a dependency that must be ready before the
// dashboard reports ready.
func WithReadinessCheck(name string, c sharedobs.ReadinessChecker) Option {
	return func(m *Manager) { m.checks = append(m.checks, namedCheck{name: name, checker: c}) }
}

// NewManager creates a Manager serving sessions from catalog.
func NewManager(catalog *domain.Catalog, settings Settings, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		catalog:  catalog,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session with no networks selected and the events of the
// default date range loaded.
func (m *Manager) Create(ctx context.Context) *Session {
	s := &Session{
		catalog:   m.catalog,
		opts:      m.settings.Profile,
		publisher: m.publisher,
		metrics:   m.metrics,
		logger:    m.logger,
		clock:     m.clock,
		view: View{
			ID:       uuid.NewString(),
			Networks: []string{},
			Scale:    m.settings.Scale,
			Stations: []domain.Station{},
		},
	}

	s.mu.Lock()
	s.loadEvents(ctx, domain.DefaultDateRange())
	s.touch()
	id := s.view.ID
	s.mu.Unlock()

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SessionsActive.Set(float64(n))
	m.logger.Info("session created", "session", id)
	return s
}

// Get returns the session with id, or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete ends a session. Unknown IDs are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SessionsActive.Set(float64(n))
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Networks lists the networks offered for selection.
func (m *Manager) Networks(ctx context.Context) []domain.Network {
	return m.catalog.Networks(ctx)
}

// CheckReadiness reports ready once the upstream catalog has answered and
// every dependency added with WithReadinessCheck is ready.
func (m *Manager) CheckReadiness(ctx context.Context) error {
	if err := m.catalog.CheckReadiness(ctx); err != nil {
		return err
	}
	for _, c := range m.checks {
		if err := c.checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// Expire deletes sessions not updated within idle and returns how many it
// removed. A session with a handler in flight is never idle.
func (m *Manager) Expire(idle time.Duration) int {
	cutoff := m.clock.Now().Add(-idle)

	m.mu.RLock()
	candidates := make(map[string]*Session, len(m.sessions))
	for id, s := range m.sessions {
		candidates[id] = s
	}
	m.mu.RUnlock()

	for id, s := range candidates {
		if !s.mu.TryLock() {
			delete(candidates, id)
			continue
		}
		stale := s.view.UpdatedAt.Before(cutoff)
		s.mu.Unlock()
		if !stale {
			delete(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	m.mu.Lock()
	expired := 0
	for id, s := range candidates {
		if m.sessions[id] == s {
			delete(m.sessions, id)
			expired++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SessionsActive.Set(float64(n))
	m.logger.Info("idle sessions expired", "count", expired, "active", n)
	return expired
}

// Run expires idle sessions every interval until the context is cancelled.
func (m *Manager) Run(ctx context.Context, idle, interval time.Duration) {
	m.logger.Info("session sweeper started", "idle_timeout", idle, "interval", interval)
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session sweeper stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			m.Expire(idle)
		}
	}
}
