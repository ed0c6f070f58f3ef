package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/couchcryptid/quake-profile-service/internal/gr"
	"github.com/couchcryptid/quake-profile-service/internal/profile"
	"github.com/couchcryptid/quake-profile-service/internal/session"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream FDSN web service.
	FDSNBaseURL string
	FDSNTimeout time.Duration

	// Catalog caching. ValkeyAddr switches from the in-memory cache to valkey.
	CacheSize  int
	CacheTTL   time.Duration
	ValkeyAddr string

	// Sessions idle longer than SessionIdleTimeout are swept every SessionSweepInterval.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	// Dashboard parameters.
	EventSizeScale   float64
	CorridorFraction float64
	MagnitudeBins    gr.Bins
	DistanceMethod   geo.Method

	// Catalog publication to Kafka.
	PublishEnabled bool
	KafkaBrokers   []string
	CatalogTopic   string

	ThemeFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fdsnTimeout, err := parseDuration("FDSN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	idleTimeout, err := parseDuration("SESSION_IDLE_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	sweepInterval, err := parseDuration("SESSION_SWEEP_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	scale, err := parseFloat("EVENT_SIZE_SCALE", 6)
	if err != nil || !(scale > 0 && scale <= session.MaxEventScale) {
		return nil, fmt.Errorf("invalid EVENT_SIZE_SCALE: must be in (0, %g]", session.MaxEventScale)
	}
	fraction, err := parseFloat("CORRIDOR_FRACTION", profile.DefaultHalfWidth)
	if err != nil || !(fraction > 0 && fraction < 1) {
		return nil, errors.New("invalid CORRIDOR_FRACTION")
	}

	bins, err := parseBins()
	if err != nil {
		return nil, err
	}

	method, err := geo.ParseMethod(sharedcfg.EnvOrDefault("DISTANCE_METHOD", string(geo.Geodesic)))
	if err != nil {
		return nil, errors.New("invalid DISTANCE_METHOD")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FDSNBaseURL: sharedcfg.EnvOrDefault("FDSN_BASE_URL", "http://84.237.52.214:8080"),
		FDSNTimeout: fdsnTimeout,

		CacheSize:  parseCacheSize(),
		CacheTTL:   cacheTTL,
		ValkeyAddr: os.Getenv("VALKEY_ADDR"),

		SessionIdleTimeout:   idleTimeout,
		SessionSweepInterval: sweepInterval,

		EventSizeScale:   scale,
		CorridorFraction: fraction,
		MagnitudeBins:    bins,
		DistanceMethod:   method,

		PublishEnabled: os.Getenv("CATALOG_PUBLISH_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		CatalogTopic:   sharedcfg.EnvOrDefault("CATALOG_TOPIC", "seismic-catalog"),

		ThemeFile: os.Getenv("THEME_FILE"),
	}

	if cfg.FDSNBaseURL == "" {
		return nil, errors.New("FDSN_BASE_URL is required")
	}
	if cfg.PublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("CATALOG_PUBLISH_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.PublishEnabled && cfg.CatalogTopic == "" {
		return nil, errors.New("CATALOG_PUBLISH_ENABLED is true but CATALOG_TOPIC is empty")
	}

	return cfg, nil
}

// ProfileOptions returns the corridor settings derived from the config.
func (c *Config) ProfileOptions() profile.Options {
	return profile.Options{HalfWidth: c.CorridorFraction, Method: c.DistanceMethod}
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseBins() (gr.Bins, error) {
	start, err1 := parseFloat("MAG_BIN_START", gr.DefaultBins.Start)
	stop, err2 := parseFloat("MAG_BIN_STOP", gr.DefaultBins.Stop)
	step, err3 := parseFloat("MAG_BIN_STEP", gr.DefaultBins.Step)
	const msg = "invalid MAG_BIN_START, MAG_BIN_STOP or MAG_BIN_STEP"
	if err := errors.Join(err1, err2, err3); err != nil {
		return gr.Bins{}, errors.New(msg)
	}
	bins := gr.Bins{Start: start, Stop: stop, Step: step}
	if err := bins.Validate(); err != nil {
		return gr.Bins{}, fmt.Errorf("%s: %w", msg, err)
	}
	return bins, nil
}

func parseCacheSize() int {
	if s := os.Getenv("CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
