// Package rediscache keeps idempotency keys in Redis so that every API replica sees them.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/go-redis/redis/v8"
)

// pendingMarker is stored while the first request for a key is still running.
const pendingMarker = "pending"

// IdempotencyStore implements the idempotency port with SETNX reservations.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ portsrepo.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore uses ttl for both pending reservations and completed keys.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Connect builds a client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", addr, err)
	}
	slog.Info("Redis connection established", "addr", addr)
	return client, nil
}

func redisKey(ownerID, key string) string {
	return "idempotency:" + ownerID + ":" + key
}

func (s *IdempotencyStore) Reserve(ctx context.Context, ownerID, key string) (string, bool, error) {
	k := redisKey(ownerID, key)
	// Two attempts cover a key expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if ok {
			return "", true, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
		}
		if val == pendingMarker {
			return "", false, nil
		}
		return val, false, nil
	}
	return "", false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, ownerID, key, eventID string) error {
	if err := s.client.Set(ctx, redisKey(ownerID, key), eventID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, ownerID, key string) error {
	if err := s.client.Del(ctx, redisKey(ownerID, key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
