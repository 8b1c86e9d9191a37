// cache/redis.go - Redis-backed leaderboard cache
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "leaderboard:"

type RedisLeaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLeaderboard connects using a redis:// URL and verifies the server answers.
func NewRedisLeaderboard(ctx context.Context, url string, ttl time.Duration) (*RedisLeaderboard, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Printf("✅ Leaderboard cache connected to %s (ttl %s)", opts.Addr, ttl)
	return &RedisLeaderboard{client: client, ttl: ttl}, nil
}

func Key(hackathonID uuid.UUID) string {
	return keyPrefix + hackathonID.String()
}

func (r *RedisLeaderboard) Get(ctx context.Context, hackathonID uuid.UUID) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, Key(hackathonID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, err
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return data, true, nil
}

func (r *RedisLeaderboard) Set(ctx context.Context, hackathonID uuid.UUID, data []byte) error {
	return r.client.Set(ctx, Key(hackathonID), data, r.ttl).Err()
}

func (r *RedisLeaderboard) Invalidate(ctx context.Context, hackathonID uuid.UUID) error {
	return r.client.Del(ctx, Key(hackathonID)).Err()
}

func (r *RedisLeaderboard) Close() error {
	return r.client.Close()
}
