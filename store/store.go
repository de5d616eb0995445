// Package store defines the durable user store behind the auth engine and
// ships two implementations: [Postgres] for production and [Memory] for
// tests and embedded use.
//
// The store is the source of truth; the cache in front of it is a
// best-effort projection and may lag or be absent entirely.
package store

import (
	"context"
	"errors"

	"github.com/d2o5/webauth/model"
)

// ErrDuplicateUsername reports an insert that collided with an existing
// username. Callers map it to their "account exists" surface.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrUserNotFound reports a lookup for a username with no record.
var ErrUserNotFound = errors.New("user not found")

// Store is the durable username → user record mapping. CreateUser returns
// [ErrDuplicateUsername] on a username collision; FetchUser returns
// [ErrUserNotFound] when no record exists. Any other error means the
// backend itself failed.
type Store interface {
	CreateUser(ctx context.Context, user *model.PrivateUser) error
	FetchUser(ctx context.Context, username string) (*model.PrivateUser, error)
}
