package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThrottleTTL = 15 * time.Minute

// SyncGate throttles background HR reconciliations: at most one sync per
// CID per TTL window. Key format: hrsync:<cid>
type SyncGate struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSyncGate creates a SyncGate wrapping the given Redis client.
func NewSyncGate(client *redis.Client, ttl time.Duration) *SyncGate {
	if ttl <= 0 {
		ttl = defaultThrottleTTL
	}
	return &SyncGate{client: client, ttl: ttl}
}

// RecentlySynced reports whether a sync for this CID ran within the window.
func (g *SyncGate) RecentlySynced(ctx context.Context, cid string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(cid)).Result()
	if err != nil {
		return false, fmt.Errorf("sync gate check: %w", err)
	}
	return n > 0, nil
}

// MarkSynced records that a sync ran (expires after the throttle TTL).
func (g *SyncGate) MarkSynced(ctx context.Context, cid string) error {
	return g.client.Set(ctx, g.key(cid), "1", g.ttl).Err()
}

func (g *SyncGate) key(cid string) string {
	return "hrsync:" + cid
}
