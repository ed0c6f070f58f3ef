package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Upstream FDSN metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: kind={networks,stations,events}, outcome={success,empty,error}
	UpstreamDuration *prometheus.HistogramVec // labels: kind
	CacheLookups     *prometheus.CounterVec   // labels: kind, result={hit,miss,error}

	// Dashboard computations.
	ProfilesComputed *prometheus.CounterVec // labels: outcome={profile,none}
	ProfileEvents    prometheus.Histogram
	FitsComputed     *prometheus.CounterVec // labels: outcome={defined,undefined}
	EventsLoaded     prometheus.Gauge
	SessionsActive   prometheus.Gauge

	CatalogPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.ProfilesComputed,
		m.ProfileEvents,
		m.FitsComputed,
		m.EventsLoaded,
		m.SessionsActive,
		m.CatalogPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "upstream_requests_total",
			Help:      "FDSN web service requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake",
			Name:      "upstream_request_duration_seconds",
			Help:      "FDSN web service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		ProfilesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "profiles_computed_total",
			Help:      "Cross-section extractions by outcome.",
		}, []string{"outcome"}),
		ProfileEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake",
			Name:      "profile_events",
			Help:      "Number of events inside a profile corridor.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		FitsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "gr_fits_total",
			Help:      "Gutenberg-Richter fits by outcome.",
		}, []string{"outcome"}),
		EventsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake",
			Name:      "events_loaded",
			Help:      "Events in the most recently loaded catalog.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake",
			Name:      "sessions_active",
			Help:      "Open dashboard sessions.",
		}),
		CatalogPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "catalog_events_published_total",
			Help:      "Events written to the catalog topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake",
			Name:      "catalog_publish_errors_total",
			Help:      "Failed catalog publications.",
		}),
	}
}
