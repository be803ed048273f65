package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sg:sess:"

// RedisStore keeps session blobs in Redis, one JSON document per session.
type RedisStore struct {
	c *rdb.Client
}

// NewRedisStore connects a session store to the Redis at addr.
func NewRedisStore(addr string, db int) *RedisStore {
	return &RedisStore{c: rdb.NewClient(&rdb.Options{Addr: addr, DB: db})}
}

func (r *RedisStore) Load(ctx context.Context, id string) (map[string]json.RawMessage, bool, error) {
	b, err := r.c.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == rdb.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session: redis get: %w", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, false, fmt.Errorf("session: redis decode: %w", err)
	}
	return data, true, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, data map[string]json.RawMessage, ttl time.Duration) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: redis encode: %w", err)
	}
	if err := r.c.Set(ctx, redisKeyPrefix+id, b, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.c.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisStore) Close() error { return r.c.Close() }
