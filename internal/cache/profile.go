package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stockroom/stockroom/internal/model"
)

const (
	// profileStatsPrefix is the Redis key prefix for cached profile statistics.
	profileStatsPrefix = "profile:stats:"
	// profileStatsTTL bounds how stale the profile view can get when a write
	// slips past invalidation (e.g. a write to someone else's record under
	// the open ownership policy).
	profileStatsTTL = 30 * time.Second
)

func profileStatsKey(userID string) string {
	return profileStatsPrefix + userID
}

// GetProfileStats retrieves cached profile statistics for a user.
// Returns nil on a miss; a miss is not an error.
func (c *Cache) GetProfileStats(ctx context.Context, userID string) (*model.ProfileStats, error) {
	key := profileStatsKey(userID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var stats model.ProfileStats
	if err := json.Unmarshal(data, &stats); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &stats, nil
}

// SetProfileStats caches profile statistics for a user.
func (c *Cache) SetProfileStats(ctx context.Context, userID string, stats *model.ProfileStats) error {
	key := profileStatsKey(userID)

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal profile stats: %w", err)
	}

	return c.client.Set(ctx, key, data, profileStatsTTL).Err()
}

// InvalidateProfileStats removes cached statistics after a product write.
func (c *Cache) InvalidateProfileStats(ctx context.Context, userID string) error {
	key := profileStatsKey(userID)
	return c.client.Del(ctx, key).Err()
}
