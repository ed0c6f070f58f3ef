package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/quake-profile-service/internal/gr"
)

// EventSet is a normalized event catalog and its cumulative magnitude curve.
type EventSet struct {
	Events []SeismicEvent  `json:"events"`
	Curve  []gr.CurvePoint `json:"curve"`
}

// Catalog normalizes upstream records. Upstream errors never escape it: each
// failure is logged and produces an empty collection (graceful degradation).
type Catalog struct {
	source    Source
	bins      gr.Bins
	logger    *slog.Logger
	reachable atomic.Bool
}

// NewCatalog creates a Catalog reading from source.
func NewCatalog(source Source, bins gr.Bins, logger *slog.Logger) *Catalog {
	return &Catalog{source: source, bins: bins, logger: logger}
}

// Bins returns the magnitude bins used for cumulative curves.
func (c *Catalog) Bins() gr.Bins {
	return c.bins
}

// CheckReadiness returns nil once the upstream service has answered at least once.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	if !c.reachable.Load() {
		return errors.New("upstream catalog has not answered yet")
	}
	return nil
}

// Networks lists upstream networks, or none on failure.
func (c *Catalog) Networks(ctx context.Context) []Network {
	networks, err := c.source.Networks(ctx)
	if err != nil {
		c.degrade("networks", err)
		return []Network{}
	}
	c.reachable.Store(true)
	return networks
}

// Stations returns map-ready stations for the selected networks. An empty
// selection yields no stations without querying upstream.
func (c *Catalog) Stations(ctx context.Context, networks []string) []Station {
	if len(networks) == 0 {
		return []Station{}
	}
	raw, err := c.source.Stations(ctx, networks)
	if err != nil {
		c.degrade("stations", err, "networks", networks)
		return []Station{}
	}
	c.reachable.Store(true)
	return NormalizeStations(raw)
}

// Events returns the normalized events of r sized by scale, with their
// cumulative magnitude curve. On failure the set is empty and the curve is
// the single degenerate bin.
func (c *Catalog) Events(ctx context.Context, r DateRange, scale float64) EventSet {
	raw, err := c.source.Events(ctx, r)
	if err != nil {
		c.degrade("events", err, "start", FormatDate(r.Start), "end", FormatDate(r.End))
		raw = nil
	} else {
		c.reachable.Store(true)
	}

	events := NormalizeEvents(raw, scale)
	return EventSet{
		Events: events,
		Curve:  gr.Cumulative(Magnitudes(events), c.bins),
	}
}

func (c *Catalog) degrade(query string, err error, attrs ...any) {
	attrs = append([]any{"query", query, "error", err}, attrs...)
	if errors.Is(err, ErrNoData) {
		// The service answered; it simply has nothing for this query.
		c.reachable.Store(true)
		c.logger.Info("upstream returned no data", attrs...)
		return
	}
	c.logger.Warn("upstream query failed, returning empty result", attrs...)
}
