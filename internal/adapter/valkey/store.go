package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "quake:"

// Store implements fdsn.Store on a Valkey (Redis-compatible) server, so
// catalog listings are shared between dashboard replicas.
type Store struct {
	client valkey.Client
	ttl    time.Duration
}

// New connects to the Valkey server at addr. Entries expire after ttl.
func New(addr string, ttl time.Duration) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Get retrieves a value by key. A missing key is reported as ok=false.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(keyPrefix+key).Build())
	b, err := resp.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores a value with the store TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(keyPrefix + key).Value(valkey.BinaryString(value)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// CheckReadiness pings the server.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}
