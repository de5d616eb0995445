package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/store"
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.PublicUser
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Success       int
	Failure       int
	UnknownUser   int
	CacheDegraded int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
}

// LoginDeps captures login-flow dependencies.
type LoginDeps struct {
	Limits Limits

	FetchUser      func(ctx context.Context, username string) (*model.PrivateUser, error)
	VerifyPassword func(hash, password string) (bool, error)
	IssueToken     func(username string) (token string, expiresAt time.Time, err error)
	CachePut       func(ctx context.Context, user model.PublicUser) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event, username string, success bool, err error)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  Errors
}

// RunLogin checks the credentials and issues a session token. An unknown
// username and a wrong password surface as distinct errors.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, string, bool, error) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.FetchUser == nil || deps.VerifyPassword == nil || deps.IssueToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if !deps.Limits.checkUsername(username) || !deps.Limits.checkPassword(password) {
		return nil, deps.Errors.Validation
	}

	user, err := deps.FetchUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			deps.MetricInc(deps.Metrics.UnknownUser)
			deps.EmitAudit(ctx, deps.Events.LoginFailure, username, false, deps.Errors.UserNotFound)
			return nil, deps.Errors.UserNotFound
		}
		deps.MetricInc(deps.Metrics.Failure)
		return nil, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}

	ok, err := deps.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		// A stored hash that fails to parse is an operator problem, but the
		// caller still just sees bad credentials.
		deps.Warn("stored password hash rejected by verifier", "username", username, "error", err)
	}
	if err != nil || !ok {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, username, false, deps.Errors.InvalidCredentials)
		return nil, deps.Errors.InvalidCredentials
	}

	token, expiresAt, err := deps.IssueToken(user.Username)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return nil, err
	}

	public := user.Public()
	if deps.CachePut != nil {
		if err := deps.CachePut(ctx, public); err != nil {
			deps.MetricInc(deps.Metrics.CacheDegraded)
			deps.Warn("cache put failed after login", "username", username, "error", err)
		}
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, username, true, nil)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      public,
	}, nil
}
