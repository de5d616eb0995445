package webauth

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/d2o5/webauth/cache"
	"github.com/d2o5/webauth/password"
	"github.com/d2o5/webauth/store"
	"github.com/d2o5/webauth/token"
)

// Builder assembles an [Engine]. Configure it during initialization, call
// Build once, and discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userStore store.Store
	userCache cache.UserCache
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a builder preloaded with [DefaultConfig]. A token key and a
// durable store still have to be supplied before Build.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTokenKey sets the 32-byte session token key.
func (b *Builder) WithTokenKey(key []byte) *Builder {
	b.config.Token.Key = key
	return b
}

// WithStore sets the durable user store. Required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.userStore = s
	return b
}

// WithRedis backs the user cache with the given Redis client. Without it
// (or an explicit WithCache) the engine falls back to an in-process cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCache overrides cache selection with a caller-supplied implementation.
func (b *Builder) WithCache(c cache.UserCache) *Builder {
	b.userCache = c
	return b
}

// WithAuditSink sets the audit event destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithLogger sets the structured logger; defaults to [slog.Default].
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, constructs the leaf services, and
// wires the flow layer.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}

	hasher, err := password.NewArgon2(b.config.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewService(b.config.Token)
	if err != nil {
		return nil, err
	}

	userCache := b.userCache
	if userCache == nil {
		if b.redis != nil {
			userCache = cache.NewRedis(b.redis, b.config.Cache.Namespace)
		} else {
			userCache = cache.NewMemory()
		}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config:    b.config,
		userStore: b.userStore,
		userCache: userCache,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   newMetrics(b.config.Metrics),
		audit:     newAuditDispatcher(b.config.Audit, b.auditSink),
		logger:    logger,
	}
	e.flows = e.newFlowService()

	b.built = true
	return e, nil
}
