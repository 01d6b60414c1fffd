package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Redis client for the dashboard table
	Redis redis.UniversalClient

	// Key is the prefix for every key the store writes. Default: "robocmd".
	Key string

	// Timeout bounds each Redis round trip. Default: 500ms.
	Timeout time.Duration

	// TTL expires published state if the robot stops publishing. Default: 1 minute.
	TTL time.Duration

	// MaxCancels caps the cancel requests popped per poll. Default: 32.
	MaxCancels int64
}

// RedisStore publishes snapshots to Redis, where dashboards read them:
//
//	<key>:snapshot  JSON Snapshot
//	<key>:owners    hash of subsystem -> owning command ID
//	<key>:cancel    set of command IDs a dashboard wants canceled
type RedisStore struct {
	config RedisConfig
	keys   map[string]string
}

// NewRedisStore validates config and returns a store.
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	if config.Redis == nil {
		return nil, rcerrors.NewValidationError("dashboard", "redis", nil, "redis client is required")
	}
	if config.Key == "" {
		config.Key = "robocmd"
	}
	if config.Timeout <= 0 {
		config.Timeout = 500 * time.Millisecond
	}
	if config.TTL <= 0 {
		config.TTL = time.Minute
	}
	if config.MaxCancels <= 0 {
		config.MaxCancels = 32
	}
	return &RedisStore{config: config, keys: redisKeys(config.Key)}, nil
}

// redisKeys generates the keys under prefix.
func redisKeys(prefix string) map[string]string {
	return map[string]string{
		"snapshot": prefix + ":snapshot",
		"owners":   prefix + ":owners",
		"cancel":   prefix + ":cancel",
	}
}

// Publish implements Store. The snapshot and owner hash are replaced in one
// transaction so readers never see them disagree.
func (r *RedisStore) Publish(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	owners := make(map[string]interface{}, len(snap.Owners))
	for sub, id := range snap.Owners {
		owners[sub] = id
	}

	_, err = r.config.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys["snapshot"], payload, r.config.TTL)
		pipe.Del(ctx, r.keys["owners"])
		if len(owners) > 0 {
			pipe.HSet(ctx, r.keys["owners"], owners)
			pipe.Expire(ctx, r.keys["owners"], r.config.TTL)
		}
		return nil
	})
	if err != nil {
		return rcerrors.NewOperationError("dashboard", "publish", err).WithContext(r.keys["snapshot"])
	}
	return nil
}

// CancelRequests implements Store.
func (r *RedisStore) CancelRequests(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	ids, err := r.config.Redis.SPopN(ctx, r.keys["cancel"], r.config.MaxCancels).Result()
	if err != nil && err != redis.Nil {
		return nil, rcerrors.NewOperationError("dashboard", "cancel_requests", err).WithContext(r.keys["cancel"])
	}
	return ids, nil
}

// RequestCancel implements Store.
func (r *RedisStore) RequestCancel(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if err := r.config.Redis.SAdd(ctx, r.keys["cancel"], id).Err(); err != nil {
		return rcerrors.NewOperationError("dashboard", "request_cancel", err).WithContext(r.keys["cancel"])
	}
	return nil
}

// Load reads the published snapshot back.
func (r *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	var snap Snapshot
	data, err := r.config.Redis.Get(ctx, r.keys["snapshot"]).Bytes()
	if err != nil {
		return snap, rcerrors.NewOperationError("dashboard", "load", err).WithContext(r.keys["snapshot"])
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
