package webauth

import (
	"errors"

	"github.com/d2o5/webauth/cache"
	"github.com/d2o5/webauth/password"
	"github.com/d2o5/webauth/token"
)

// Config holds the engine configuration. Instances are populated during
// initialization and treated as immutable after Build.
type Config struct {
	Token    token.Config
	Password password.Config
	Cache    CacheConfig
	Cookie   CookieConfig
	Limits   LimitsConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// CacheConfig selects the user-cache namespace. The namespace is shared
// wire format with other consumers of the cache, not a free choice.
type CacheConfig struct {
	Namespace string
}

// CookieConfig describes the session cookie the host should set. The
// engine never touches HTTP itself; the middleware package reads this.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

// LimitsConfig bounds credential lengths, in bytes, inclusive.
type LimitsConfig struct {
	UsernameMin int
	UsernameMax int
	PasswordMin int
	PasswordMax int
}

// AuditConfig controls the buffered audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events instead of blocking request paths when the
	// sink cannot keep up.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the stock configuration. The token key has no
// default and must be supplied before Build.
func DefaultConfig() Config {
	return Config{
		Token: token.Config{
			TTL: token.DefaultTTL,
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Cache: CacheConfig{
			Namespace: cache.DefaultNamespace,
		},
		Cookie: CookieConfig{
			Name:   "auth",
			Path:   "/",
			Secure: true,
		},
		Limits: LimitsConfig{
			UsernameMin: 2,
			UsernameMax: 20,
			PasswordMin: 5,
			PasswordMax: 20,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the parts of the configuration the leaf constructors do
// not cover themselves.
func (c Config) Validate() error {
	if c.Limits.UsernameMin <= 0 || c.Limits.UsernameMax < c.Limits.UsernameMin {
		return errors.New("invalid username length limits")
	}
	if c.Limits.PasswordMin <= 0 || c.Limits.PasswordMax < c.Limits.PasswordMin {
		return errors.New("invalid password length limits")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name required")
	}
	return nil
}
