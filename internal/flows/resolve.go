package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/store"
	"github.com/d2o5/webauth/token"
)

// Identity is a resolved session: the username carried in the token plus
// the public record looked up for it.
type Identity struct {
	Username string
	User     model.PublicUser
}

// ResolveMetrics carries metric IDs needed by the resolve flow.
type ResolveMetrics struct {
	Authenticated  int
	Anonymous      int
	TokenMalformed int
	TokenExpired   int
	CacheHit       int
	CacheMiss      int
	CacheDegraded  int
}

// ResolveDeps captures resolve-flow dependencies.
type ResolveDeps struct {
	ValidateToken func(tokenStr string) (username string, err error)
	CacheGet      func(ctx context.Context, username string) (*model.PublicUser, error)
	CachePut      func(ctx context.Context, user model.PublicUser) error
	FetchUser     func(ctx context.Context, username string) (*model.PrivateUser, error)

	MetricInc func(int)
	Warn      func(string, ...any)

	Metrics ResolveMetrics
	Errors  Errors
}

// RunResolve turns a session token into an identity. Absent, malformed,
// and expired tokens all resolve to the anonymous (nil, nil) result;
// only a failing store surfaces an error.
func RunResolve(ctx context.Context, tokenStr string, deps ResolveDeps) (*Identity, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ValidateToken == nil || deps.FetchUser == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if tokenStr == "" {
		deps.MetricInc(deps.Metrics.Anonymous)
		return nil, nil
	}

	username, err := deps.ValidateToken(tokenStr)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			deps.MetricInc(deps.Metrics.TokenExpired)
		case errors.Is(err, token.ErrMalformed):
			deps.MetricInc(deps.Metrics.TokenMalformed)
		}
		deps.MetricInc(deps.Metrics.Anonymous)
		return nil, nil
	}

	if deps.CacheGet != nil {
		cached, err := deps.CacheGet(ctx, username)
		switch {
		case err != nil:
			deps.MetricInc(deps.Metrics.CacheDegraded)
			deps.Warn("cache read failed during session resolution", "username", username, "error", err)
		case cached != nil:
			deps.MetricInc(deps.Metrics.CacheHit)
			deps.MetricInc(deps.Metrics.Authenticated)
			return &Identity{Username: username, User: *cached}, nil
		default:
			deps.MetricInc(deps.Metrics.CacheMiss)
		}
	}

	user, err := deps.FetchUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Valid token for a user that no longer exists.
			deps.MetricInc(deps.Metrics.Anonymous)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}

	public := user.Public()
	if deps.CachePut != nil {
		if err := deps.CachePut(ctx, public); err != nil {
			deps.MetricInc(deps.Metrics.CacheDegraded)
			deps.Warn("cache put failed during session resolution", "username", username, "error", err)
		}
	}

	deps.MetricInc(deps.Metrics.Authenticated)
	return &Identity{Username: username, User: public}, nil
}
