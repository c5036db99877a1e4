// SPDX-License-Identifier: EPL-2.0

package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "musicreplacer:config:"

// Redis keeps each group in one hash.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// OpenRedis connects and pings; an unreachable server is an error since the
// catalog cannot work without its store.
func OpenRedis(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s unavailable: %w", addr, err)
	}

	logger.Info("redis kv store connected", zap.String("addr", addr))
	return &Redis{client: client, logger: logger}, nil
}

func hashKey(group string) string {
	return redisKeyPrefix + group
}

func (r *Redis) Get(ctx context.Context, group, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, hashKey(group), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s.%s: %w", group, key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, group, key, value string) error {
	if err := r.client.HSet(ctx, hashKey(group), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s.%s: %w", group, key, err)
	}
	return nil
}

func (r *Redis) Unset(ctx context.Context, group, key string) error {
	if err := r.client.HDel(ctx, hashKey(group), key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s.%s: %w", group, key, err)
	}
	return nil
}

func (r *Redis) Keys(ctx context.Context, group string) ([]string, error) {
	keys, err := r.client.HKeys(ctx, hashKey(group)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hkeys %s: %w", group, err)
	}
	slices.Sort(keys)
	return keys, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
