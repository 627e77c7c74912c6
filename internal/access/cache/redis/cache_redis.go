// Package redis provides the Redis-backed DecisionCache. This is the
// production implementation for distributed deployments where every instance
// must observe an eviction immediately.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"commune/internal/access/models"
	id "commune/pkg/domain"
)

// Cache stores decisions as "1"/"0" values under digest keys, plus one SET
// per subject holding that subject's live decision keys. The index SET must
// outlive every decision it references, so its TTL is only ever extended,
// never shortened: a short-lived write (the policy gate) after a long-lived
// one must not shrink the index under the longer decision.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (bool, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("cache get: %w", err)
	}
	return val == "1", true, nil
}

func (c *Cache) Set(ctx context.Context, subject id.UserID, key string, allowed bool, ttl time.Duration) error {
	val := "0"
	if allowed {
		val = "1"
	}
	indexKey := models.SubjectIndexKey(subject)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, val, ttl)
	pipe.SAdd(ctx, indexKey, key)
	// NX seeds the TTL on a fresh index, GT extends it when this decision
	// outlives the current one. Neither can shorten it.
	pipe.ExpireNX(ctx, indexKey, ttl+time.Minute)
	pipe.ExpireGT(ctx, indexKey, ttl+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *Cache) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache remove: %w", err)
	}
	return nil
}

func (c *Cache) RemoveSubject(ctx context.Context, subject id.UserID) (int, error) {
	indexKey := models.SubjectIndexKey(subject)
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("cache subject index read: %w", err)
	}
	if len(keys) == 0 {
		// Still drop the index key itself; SMembers on a missing key
		// returns an empty slice, not redis.Nil.
		if err := c.client.Del(ctx, indexKey).Err(); err != nil {
			return 0, fmt.Errorf("cache subject index delete: %w", err)
		}
		return 0, nil
	}
	if err := c.client.Del(ctx, append(keys, indexKey)...).Err(); err != nil {
		return 0, fmt.Errorf("cache subject evict: %w", err)
	}
	return len(keys), nil
}
