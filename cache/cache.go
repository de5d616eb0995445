// Package cache maps usernames to public user records in front of the
// durable user store.
//
// Two implementations share one interface: [Redis] for the remote
// key-value store and [Memory] as the in-process fallback; the engine
// selects one at startup. Entries are immutable projections, so writes
// overwrite rather than merge and no client-side locking is needed beyond
// what the backend provides. Entries carry no TTL — they are lazily
// populated on session resolution and explicitly evicted at logout.
package cache

import (
	"context"
	"errors"

	"github.com/d2o5/webauth/model"
)

// ErrUnavailable wraps backend connectivity failures. Callers treat a Get
// that fails with it as a cache miss and a failed Put/Evict as
// best-effort; it never reaches an end user.
var ErrUnavailable = errors.New("cache backend unavailable")

// DefaultNamespace is the hash key holding cached user records. Existing
// consumers read the same key, so it is wire format, not just a default.
const DefaultNamespace = "d2o5.users"

// UserCache is the username → public record mapping consulted on every
// session resolution. Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, username string) (*model.PublicUser, error)
	Put(ctx context.Context, user model.PublicUser) error
	Evict(ctx context.Context, username string) error
}
