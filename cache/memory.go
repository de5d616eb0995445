package cache

import (
	"context"
	"sync"

	"github.com/d2o5/webauth/model"
)

// Memory is the in-process fallback cache selected when no Redis client is
// configured. A plain map under an RWMutex is enough: entries are immutable
// projections that are overwritten, never merged.
type Memory struct {
	mu    sync.RWMutex
	users map[string]model.PublicUser
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]model.PublicUser),
	}
}

// Get returns the cached record for username, or (nil, nil) on a miss.
func (c *Memory) Get(_ context.Context, username string) (*model.PublicUser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	user, ok := c.users[username]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Put stores the record under its username.
func (c *Memory) Put(_ context.Context, user model.PublicUser) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.users[user.Username] = user
	return nil
}

// Evict removes the entry for username; absent entries are a no-op.
func (c *Memory) Evict(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.users, username)
	return nil
}
