package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/port"
)

const (
	snapshotKeyPrefix    = "snapshot:"
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// saveSnapshotScript writes the blob and its version together, refusing to
// go backwards.
var saveSnapshotScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if current and tonumber(current) > tonumber(ARGV[2]) then
	return 0
end

redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

type RedisAdapter struct {
	client *redis.Client
	name   string
}

// NewRedisAdapter stores snapshots under snapshot:<name>.
func NewRedisAdapter(client *redis.Client, name string) *RedisAdapter {
	return &RedisAdapter{client: client, name: name}
}

func (r *RedisAdapter) snapshotKey() string {
	return snapshotKeyPrefix + r.name
}

func (r *RedisAdapter) versionKey() string {
	return snapshotKeyPrefix + r.name + ":version"
}

func (r *RedisAdapter) Save(ctx context.Context, snap domain.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	keys := []string{r.snapshotKey(), r.versionKey()}
	result, err := saveSnapshotScript.Run(ctx, r.client, keys, blob, snap.Version).Int()
	if err != nil {
		return err
	}
	if result == 0 {
		return port.ErrStaleSnapshot
	}

	return nil
}

func (r *RedisAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	blob, err := r.client.Get(ctx, r.snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Reset drops the stored snapshot.
func (r *RedisAdapter) Reset(ctx context.Context) error {
	return r.client.Del(ctx, r.snapshotKey(), r.versionKey()).Err()
}
