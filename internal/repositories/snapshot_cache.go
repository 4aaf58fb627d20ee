package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-exchange-rates/internal/logger"
	"github.com/sbilibin2017/gw-exchange-rates/internal/models"
)

// SnapshotCacheRepository caches reconstructed snapshots in Redis.
// A nil date in Get/Set addresses the "latest" slot.
type SnapshotCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached snapshots
}

// NewSnapshotCacheRepository creates a new repository instance with optional TTL
func NewSnapshotCacheRepository(client *redis.Client, expiration time.Duration) *SnapshotCacheRepository {
	return &SnapshotCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func snapshotKey(date *time.Time) string {
	if date == nil {
		return "snapshot:latest"
	}
	return fmt.Sprintf("snapshot:%s", date.Format("2006-01-02"))
}

// Get fetches a cached snapshot. A miss is reported as an error.
func (r *SnapshotCacheRepository) Get(ctx context.Context, date *time.Time) (*models.Snapshot, error) {
	key := snapshotKey(date)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if err == redis.Nil {
			return nil, fmt.Errorf("snapshot not found in cache for key %s", key)
		}
		return nil, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		logger.Log.Infow(
			"key", key,
			"value", val,
			"error", err,
		)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", snapshot.ReferenceDate,
		"error", nil,
	)

	return &snapshot, nil
}

// Set caches a snapshot under the given slot with the configured expiration.
func (r *SnapshotCacheRepository) Set(ctx context.Context, date *time.Time, snapshot *models.Snapshot) error {
	key := snapshotKey(date)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"reference_date", snapshot.ReferenceDate,
		"result", "ok",
		"error", err,
	)

	return err
}

// DeleteLatest drops the cached latest snapshot, forcing the next read to hit
// the store. Called after a successful feed refresh.
func (r *SnapshotCacheRepository) DeleteLatest(ctx context.Context) error {
	key := snapshotKey(nil)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow(
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}
