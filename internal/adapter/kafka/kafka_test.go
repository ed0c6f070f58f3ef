package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/config"
	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	origin := time.Date(2024, 4, 25, 12, 30, 0, 0, time.UTC)
	published := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	event := domain.SeismicEvent{
		ID:        "ev-1",
		Time:      origin,
		Magnitude: 3.2,
		Depth:     10,
		Origin:    geo.GeoPoint{Lon: 126.2, Lat: 70.1},
		Size:      19.2,
	}

	msg, err := serializeToMessage(event, published)
	require.NoError(t, err)

	assert.Equal(t, []byte("ev-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"mag":3.2`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_time", msg.Headers[0].Key)
	assert.Equal(t, []byte("2024-04-25T12:30:00Z"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(published.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestPublishCatalog_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, CatalogTopic: "quakes"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	require.NoError(t, w.PublishCatalog(context.Background(), nil))
}
