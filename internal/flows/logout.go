package flows

import "context"

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	Logout        int
	CacheDegraded int
}

// LogoutEvents carries audit event names used by the logout flow.
type LogoutEvents struct {
	Logout string
}

// LogoutDeps captures logout-flow dependencies.
type LogoutDeps struct {
	CacheEvict func(ctx context.Context, username string) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event, username string, success bool, err error)
	Warn      func(string, ...any)

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  Errors
}

// RunLogout ends the session held by identity. Tokens are stateless and
// stay verifiable until expiry; logout only drops the cached user record
// so the cookie clearing done by the caller is the real revocation.
func RunLogout(ctx context.Context, identity *Identity, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, string, bool, error) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	if identity == nil {
		return deps.Errors.Unauthorized
	}

	if deps.CacheEvict != nil {
		if err := deps.CacheEvict(ctx, identity.Username); err != nil {
			deps.MetricInc(deps.Metrics.CacheDegraded)
			deps.Warn("cache evict failed during logout", "username", identity.Username, "error", err)
		}
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, identity.Username, true, nil)
	return nil
}
