package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d2o5/webauth/model"
)

// Redis is the remote user cache: one hash keyed by the configured
// namespace, one field per username, values JSON-encoded [model.PublicUser]
// in the external camelCase wire format.
//
// The client handles concurrent access; entries are overwritten whole, so
// two concurrent logins for the same username simply race to last-write-wins.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedis returns a cache backed by the given Redis client. namespace
// selects the hash key; empty means [DefaultNamespace].
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Redis{
		client:    client,
		namespace: namespace,
	}
}

// Get fetches the cached record for username. A missing field is a plain
// miss (nil, nil); backend failures wrap [ErrUnavailable].
//
//	Performance: 1 Redis HGET.
func (c *Redis) Get(ctx context.Context, username string) (*model.PublicUser, error) {
	data, err := c.client.HGet(ctx, c.namespace, username).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var user model.PublicUser
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt entry behaves like a miss so the store read repairs it.
		return nil, fmt.Errorf("corrupt cache entry for %q: %w", username, err)
	}

	return &user, nil
}

// Put stores the record under its username, overwriting any previous entry.
//
//	Performance: 1 Redis HSET.
func (c *Redis) Put(ctx context.Context, user model.PublicUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err := c.client.HSet(ctx, c.namespace, user.Username, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Evict removes the entry for username. Evicting an absent entry succeeds.
//
//	Performance: 1 Redis HDEL.
func (c *Redis) Evict(ctx context.Context, username string) error {
	if err := c.client.HDel(ctx, c.namespace, username).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Ping returns a point-in-time backend availability check and latency.
func (c *Redis) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
