package storage

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ArnaudClarat/FactRush/internal/errors"
)

// Redis is a Store backed by a Redis instance, for deployments where game
// state should outlive the process. Values are stored as JSON strings under
// a key prefix so several games can share one instance.
type Redis struct {
	client goredis.UniversalClient
	prefix string
}

func NewRedis(client goredis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Internal(fmt.Errorf("redis get %s: %w", key, err))
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Internal(fmt.Errorf("decode %s: %w", key, err))
	}

	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode %s: %w", key, err))
	}

	if err := r.client.Set(ctx, r.key(key), raw, 0).Err(); err != nil {
		return errors.Internal(fmt.Errorf("redis set %s: %w", key, err))
	}

	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return errors.Internal(fmt.Errorf("redis del %s: %w", key, err))
	}

	return nil
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}
