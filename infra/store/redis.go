// Package store provides durable snapshot stores for the fleet registry: a
// Redis-backed implementation for production and an in-memory one for tests
// and single-process runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hospigo/fleetd/core/fleet"
)

// DefaultSessionKey is the fixed key the fleet snapshot is stored under.
const DefaultSessionKey = "hospigo:fleet:snapshot"

// Config holds the Redis connection settings.
type Config struct {
	// URL is a redis:// connection string.
	URL string `json:"url"`
	// SessionKey overrides the snapshot key.
	SessionKey string `json:"session_key"`
}

// SetDefaults applies the fixed session key.
func (c *Config) SetDefaults() {
	if c.SessionKey == "" {
		c.SessionKey = DefaultSessionKey
	}
}

// RedisStore persists fleet snapshots as a single JSON value.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	cfg.SetDefaults()
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, key: cfg.SessionKey}, nil
}

// Load reads the stored snapshot. A missing key yields an empty snapshot.
func (s *RedisStore) Load(ctx context.Context) (map[string]fleet.PersistedState, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]fleet.PersistedState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var snap map[string]fleet.PersistedState
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot under the session key.
func (s *RedisStore) Save(ctx context.Context, snap map[string]fleet.PersistedState) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, 0).Err()
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error { return s.client.Close() }
