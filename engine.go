package webauth

import (
	"context"
	"log/slog"
	"time"

	"github.com/d2o5/webauth/cache"
	"github.com/d2o5/webauth/internal/flows"
	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/password"
	"github.com/d2o5/webauth/store"
	"github.com/d2o5/webauth/token"
)

// Engine is the assembled authentication engine. Safe for concurrent use;
// construct it through [Builder.Build].
type Engine struct {
	config Config
	flows  flows.Service

	userStore store.Store
	userCache cache.UserCache
	hasher    *password.Argon2
	tokens    *token.Service

	metrics *Metrics
	audit   *auditDispatcher
	logger  *slog.Logger
}

// Register creates a new account and returns its public projection.
//
// Usernames must be 2-20 bytes and passwords 5-20 by default (see
// [LimitsConfig]); violations return [ErrValidation]. A taken username
// returns [ErrAccountExists]. Registration does not log the user in.
func (e *Engine) Register(ctx context.Context, in model.NewUserInput) (*model.PublicUser, error) {
	return e.flows.Register(ctx, in)
}

// Login verifies the credentials and issues a session token.
//
// An unknown username returns [ErrUserNotFound]; a known username with
// the wrong password returns [ErrInvalidCredentials]. On success the
// user's public record is also pushed to the cache, best-effort.
func (e *Engine) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	return e.flows.Login(ctx, username, password)
}

// ResolveSession turns a session token into an [Identity].
//
// An empty, malformed, or expired token resolves to the anonymous
// (nil, nil) result rather than an error; only a failing store surfaces
// [ErrStoreUnavailable]. The user record comes from the cache when
// possible and is re-cached after a store read.
func (e *Engine) ResolveSession(ctx context.Context, tokenStr string) (*Identity, error) {
	return e.flows.Resolve(ctx, tokenStr)
}

// Logout ends the session held by identity, evicting the user's cached
// record. A nil identity returns [ErrUnauthorized]. Tokens are stateless
// and stay cryptographically valid until expiry; clearing the cookie is
// the host's side of logout.
func (e *Engine) Logout(ctx context.Context, identity *Identity) error {
	return e.flows.Logout(ctx, identity)
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	e.audit.Close()
}

// CookieConfig reports the session cookie parameters the host should use.
func (e *Engine) CookieConfig() CookieConfig {
	return e.config.Cookie
}

// SessionTTL reports the validity window of issued tokens.
func (e *Engine) SessionTTL() time.Duration {
	return e.tokens.TTL()
}

// MetricsSnapshot copies the engine counters at one point in time.
func (e *Engine) MetricsSnapshot() map[MetricID]uint64 {
	return e.metrics.Snapshot()
}

// Metric returns the current value of one counter.
func (e *Engine) Metric(id MetricID) uint64 {
	return e.metrics.Get(id)
}

// AuditDropped reports how many audit events were shed because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// CacheHealth pings the cache backend when it supports it. In-process
// caches report healthy with zero latency.
func (e *Engine) CacheHealth(ctx context.Context) (time.Duration, error) {
	type pinger interface {
		Ping(ctx context.Context) (time.Duration, error)
	}
	if p, ok := e.userCache.(pinger); ok {
		return p.Ping(ctx)
	}
	return 0, nil
}

func (e *Engine) metricInc(id int) {
	e.metrics.inc(MetricID(id))
}

func (e *Engine) emitAudit(ctx context.Context, event, username string, success bool, opErr error) {
	if e.audit == nil || event == "" {
		return
	}
	ev := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: event,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		ev.Error = opErr.Error()
	}
	e.audit.Emit(ctx, ev)
}

func (e *Engine) issueToken(username string) (string, time.Time, error) {
	tok, err := e.tokens.Issue(username)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, time.Now().UTC().Add(e.tokens.TTL()), nil
}

func (e *Engine) newFlowService() flows.Service {
	errs := flows.Errors{
		EngineNotReady:     ErrEngineNotReady,
		Validation:         ErrValidation,
		AccountExists:      ErrAccountExists,
		InvalidCredentials: ErrInvalidCredentials,
		UserNotFound:       ErrUserNotFound,
		Unauthorized:       ErrUnauthorized,
		StoreUnavailable:   ErrStoreUnavailable,
	}
	limits := flows.Limits{
		UsernameMin: e.config.Limits.UsernameMin,
		UsernameMax: e.config.Limits.UsernameMax,
		PasswordMin: e.config.Limits.PasswordMin,
		PasswordMax: e.config.Limits.PasswordMax,
	}
	warn := func(msg string, args ...any) {
		e.logger.Warn(msg, args...)
	}

	return flows.New(flows.Deps{
		Register: flows.RegisterDeps{
			Limits:       limits,
			HashPassword: e.hasher.Hash,
			FetchUser:    e.userStore.FetchUser,
			CreateUser:   e.userStore.CreateUser,
			MetricInc:    e.metricInc,
			EmitAudit:    e.emitAudit,
			Warn:         warn,
			Metrics: flows.RegisterMetrics{
				Success:   int(MetricRegisterSuccess),
				Duplicate: int(MetricRegisterDuplicate),
				Failure:   int(MetricRegisterFailure),
			},
			Events: flows.RegisterEvents{
				Registered:     EventRegistered,
				RegisterFailed: EventRegisterFailed,
			},
			Errors: errs,
		},
		Login: flows.LoginDeps{
			Limits:    limits,
			FetchUser: e.userStore.FetchUser,
			VerifyPassword: func(hash, pw string) (bool, error) {
				return e.hasher.Verify(pw, hash)
			},
			IssueToken: e.issueToken,
			CachePut:   e.userCache.Put,
			MetricInc:  e.metricInc,
			EmitAudit:  e.emitAudit,
			Warn:       warn,
			Metrics: flows.LoginMetrics{
				Success:       int(MetricLoginSuccess),
				Failure:       int(MetricLoginFailure),
				UnknownUser:   int(MetricLoginUnknownUser),
				CacheDegraded: int(MetricCacheDegraded),
			},
			Events: flows.LoginEvents{
				LoginSuccess: EventLoginSuccess,
				LoginFailure: EventLoginFailed,
			},
			Errors: errs,
		},
		Resolve: flows.ResolveDeps{
			ValidateToken: e.tokens.Validate,
			CacheGet:      e.userCache.Get,
			CachePut:      e.userCache.Put,
			FetchUser:     e.userStore.FetchUser,
			MetricInc:     e.metricInc,
			Warn:          warn,
			Metrics: flows.ResolveMetrics{
				Authenticated:  int(MetricResolveAuthenticated),
				Anonymous:      int(MetricResolveAnonymous),
				TokenMalformed: int(MetricTokenMalformed),
				TokenExpired:   int(MetricTokenExpired),
				CacheHit:       int(MetricCacheHit),
				CacheMiss:      int(MetricCacheMiss),
				CacheDegraded:  int(MetricCacheDegraded),
			},
			Errors: errs,
		},
		Logout: flows.LogoutDeps{
			CacheEvict: e.userCache.Evict,
			MetricInc:  e.metricInc,
			EmitAudit:  e.emitAudit,
			Warn:       warn,
			Metrics: flows.LogoutMetrics{
				Logout:        int(MetricLogout),
				CacheDegraded: int(MetricCacheDegraded),
			},
			Events: flows.LogoutEvents{
				Logout: EventLogout,
			},
			Errors: errs,
		},
	})
}
