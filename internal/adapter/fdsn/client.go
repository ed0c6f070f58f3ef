package fdsn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
)

const (
	stationPath = "/fdsnws/station/1/query"
	eventPath   = "/fdsnws/event/1/query"

	// FDSN time parameters without a zone are UTC.
	queryTimeLayout = "2006-01-02T15:04:05"
)

// Client implements domain.Source against FDSN station and event web services.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an FDSN client for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Networks lists networks at network level.
func (c *Client) Networks(ctx context.Context) ([]domain.Network, error) {
	params := url.Values{
		"level":  {"network"},
		"format": {"text"},
		"nodata": {"404"},
	}
	body, err := c.doRequest(ctx, c.baseURL+stationPath+"?"+params.Encode(), "networks")
	if err != nil {
		return nil, err
	}
	return parseNetworks(body)
}

// Stations lists stations of the given networks at station level.
func (c *Client) Stations(ctx context.Context, networks []string) ([]domain.RawStation, error) {
	params := url.Values{
		"level":   {"station"},
		"format":  {"text"},
		"nodata":  {"404"},
		"network": {strings.Join(networks, ",")},
	}
	body, err := c.doRequest(ctx, c.baseURL+stationPath+"?"+params.Encode(), "stations")
	if err != nil {
		return nil, err
	}
	return parseStations(body, c.logger)
}

// Events lists events whose origin time falls inside r. An empty range is
// reported as domain.ErrNoData.
func (c *Client) Events(ctx context.Context, r domain.DateRange) ([]domain.RawEvent, error) {
	params := url.Values{
		"format":    {"text"},
		"nodata":    {"404"},
		"starttime": {r.Start.UTC().Format(queryTimeLayout)},
		"endtime":   {r.End.UTC().Format(queryTimeLayout)},
	}
	body, err := c.doRequest(ctx, c.baseURL+eventPath+"?"+params.Encode(), "events")
	if err != nil {
		return nil, err
	}
	return ParseEvents(body, c.logger)
}

func (c *Client) doRequest(ctx context.Context, fullURL, kind string) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("fdsn %s request: %w", kind, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		c.metrics.UpstreamRequests.WithLabelValues(kind, "empty").Inc()
		return nil, fmt.Errorf("fdsn %s: %w", kind, domain.ErrNoData)
	default:
		c.metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fdsn API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", kind, err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(kind, "success").Inc()
	c.logger.Debug("fdsn request complete", "kind", kind, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
