// Package redis keeps wizard session state behind the opaque session id.
// Writes carry a TTL, so every step renews the clock and abandoned sessions
// expire on their own.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/empresasintegra/leykarin/pkg/config"
	"github.com/empresasintegra/leykarin/pkg/wizard"
)

const sessionKeyPrefix = "leykarin:wizard:"

type SessionStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewSessionStore dials redis and verifies connectivity. A single address
// yields a plain client, several a cluster client.
func NewSessionStore(cfg *config.RedisConfig) (*SessionStore, error) {
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addresses,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SessionStore{rdb: rdb, ttl: cfg.SessionTTL}, nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

func sessionKey(sid string) string {
	return sessionKeyPrefix + sid
}

func (s *SessionStore) Get(ctx context.Context, sid string) (*wizard.State, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, wizard.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var state wizard.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return &state, nil
}

func (s *SessionStore) Put(ctx context.Context, sid string, state *wizard.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode wizard session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sid), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}
