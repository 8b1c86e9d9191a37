// services/leaderboard_cache.go
package services

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// LeaderboardCache stores serialized leaderboards per hackathon.
// Implementations must treat a miss as (nil, false, nil).
type LeaderboardCache interface {
	Get(ctx context.Context, hackathonID uuid.UUID) ([]byte, bool, error)
	Set(ctx context.Context, hackathonID uuid.UUID, data []byte) error
	Invalidate(ctx context.Context, hackathonID uuid.UUID) error
}

// NopCache is used when no cache backend is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) ([]byte, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, uuid.UUID, []byte) error { return nil }
func (NopCache) Invalidate(context.Context, uuid.UUID) error { return nil }

// dropLeaderboard clears a cached leaderboard. Failures are logged; the entry expires on its own.
func dropLeaderboard(ctx context.Context, cache LeaderboardCache, hackathonID uuid.UUID) {
	if err := cache.Invalidate(ctx, hackathonID); err != nil {
		log.Printf("⚠️ leaderboard cache invalidation failed for %s: %v", hackathonID, err)
	}
}
