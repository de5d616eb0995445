package webauth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	webauth "github.com/d2o5/webauth"
	"github.com/d2o5/webauth/model"
	"github.com/d2o5/webauth/store"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func fastConfig() webauth.Config {
	cfg := webauth.DefaultConfig()
	cfg.Token.Key = testKey
	// Floor-level Argon2 cost keeps the suite quick.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func buildEngine(t *testing.T) (*webauth.Engine, *store.Memory) {
	t.Helper()

	backing := store.NewMemory()
	engine, err := webauth.New().
		WithConfig(fastConfig()).
		WithStore(backing).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, backing
}

func register(t *testing.T, engine *webauth.Engine, username, password string) *model.PublicUser {
	t.Helper()

	user, err := engine.Register(context.Background(), model.NewUserInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Register(%q) error: %v", username, err)
	}
	return user
}

func TestEngineRegisterLoginResolve(t *testing.T) {
	engine, backing := buildEngine(t)
	ctx := context.Background()

	created := register(t, engine, "alice", "hunter22")
	if created.Username != "alice" || created.DisplayName != "alice" {
		t.Fatalf("unexpected registration result: %+v", created)
	}
	if created.AvatarURL != nil {
		t.Fatal("expected no avatar")
	}

	result, err := engine.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("login issued no token")
	}
	if until := time.Until(result.ExpiresAt); until < 6*24*time.Hour || until > 8*24*time.Hour {
		t.Fatalf("expiry %v not around 7 days out", result.ExpiresAt)
	}
	if result.User.Username != "alice" {
		t.Fatalf("unexpected login user: %+v", result.User)
	}

	identity, err := engine.ResolveSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ResolveSession error: %v", err)
	}
	if identity == nil || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.User.ID != created.ID {
		t.Fatalf("identity record mismatch: %q vs %q", identity.User.ID, created.ID)
	}

	// Login cached the record, so resolution never reached the store:
	// one fetch for the register probe, one for the login itself.
	if got := backing.FetchCount(); got != 2 {
		t.Fatalf("store fetches = %d, want 2", got)
	}
}

func TestEngineRegisterDuplicate(t *testing.T) {
	engine, _ := buildEngine(t)
	register(t, engine, "alice", "hunter22")

	_, err := engine.Register(context.Background(), model.NewUserInput{
		Username: "alice",
		Password: "different5",
	})
	if !errors.Is(err, webauth.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestEngineRegisterDoesNotLogIn(t *testing.T) {
	engine, _ := buildEngine(t)
	register(t, engine, "alice", "hunter22")

	identity, err := engine.ResolveSession(context.Background(), "")
	if err != nil || identity != nil {
		t.Fatalf("expected anonymous after register, got %+v err=%v", identity, err)
	}
}

func TestEngineLoginFailures(t *testing.T) {
	engine, _ := buildEngine(t)
	register(t, engine, "alice", "hunter22")
	ctx := context.Background()

	// Unknown users and wrong passwords are deliberately distinguishable.
	if _, err := engine.Login(ctx, "nobody", "hunter22"); !errors.Is(err, webauth.ErrUserNotFound) {
		t.Fatalf("unknown user: expected ErrUserNotFound, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "wrong-pass"); !errors.Is(err, webauth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestEngineValidationLimits(t *testing.T) {
	engine, _ := buildEngine(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "a", "hunter22"},
		{"long username", strings.Repeat("a", 21), "hunter22"},
		{"short password", "alice", "1234"},
		{"long password", "alice", strings.Repeat("p", 21)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Register(ctx, model.NewUserInput{Username: tc.username, Password: tc.password})
			if !errors.Is(err, webauth.ErrValidation) {
				t.Fatalf("register: expected ErrValidation, got %v", err)
			}
			_, err = engine.Login(ctx, tc.username, tc.password)
			if !errors.Is(err, webauth.ErrValidation) {
				t.Fatalf("login: expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestEngineResolveGarbage(t *testing.T) {
	engine, _ := buildEngine(t)
	ctx := context.Background()

	for _, tok := range []string{"", "garbage", "v1.!!!!", "v1.AAAA"} {
		identity, err := engine.ResolveSession(ctx, tok)
		if err != nil || identity != nil {
			t.Fatalf("token %q: expected anonymous, got %+v err=%v", tok, identity, err)
		}
	}
}

func TestEngineLogout(t *testing.T) {
	engine, backing := buildEngine(t)
	ctx := context.Background()
	register(t, engine, "alice", "hunter22")

	result, err := engine.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	identity, err := engine.ResolveSession(ctx, result.Token)
	if err != nil || identity == nil {
		t.Fatalf("ResolveSession error: %v", err)
	}

	fetchesBeforeLogout := backing.FetchCount()
	if err := engine.Logout(ctx, identity); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	// Tokens are stateless: the old token still resolves, but the evicted
	// cache entry forces a store read this time.
	identity, err = engine.ResolveSession(ctx, result.Token)
	if err != nil || identity == nil || identity.Username != "alice" {
		t.Fatalf("post-logout resolve: got %+v err=%v", identity, err)
	}
	if got := backing.FetchCount(); got != fetchesBeforeLogout+1 {
		t.Fatalf("store fetches = %d, want %d", got, fetchesBeforeLogout+1)
	}

	// Logging out twice with the same identity value still succeeds.
	if err := engine.Logout(ctx, identity); err != nil {
		t.Fatalf("repeat Logout error: %v", err)
	}
}

func TestEngineLogoutAnonymous(t *testing.T) {
	engine, _ := buildEngine(t)

	if err := engine.Logout(context.Background(), nil); !errors.Is(err, webauth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestEngineRedisCacheDownDegradesToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := store.NewMemory()
	engine, err := webauth.New().
		WithConfig(fastConfig()).
		WithStore(backing).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)
	ctx := context.Background()

	register(t, engine, "alice", "hunter22")
	result, err := engine.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if _, err := engine.CacheHealth(ctx); err != nil {
		t.Fatalf("CacheHealth error: %v", err)
	}

	mr.Close()

	// Every cache touch now fails, but sessions keep resolving.
	identity, err := engine.ResolveSession(ctx, result.Token)
	if err != nil || identity == nil || identity.Username != "alice" {
		t.Fatalf("resolve with cache down: got %+v err=%v", identity, err)
	}
	if err := engine.Logout(ctx, identity); err != nil {
		t.Fatalf("logout with cache down: %v", err)
	}
	if _, err := engine.CacheHealth(ctx); err == nil {
		t.Fatal("expected CacheHealth to report the dead backend")
	}
	if engine.Metric(webauth.MetricCacheDegraded) == 0 {
		t.Fatal("expected degraded-cache metric increments")
	}
}

func TestEngineStoreDownSurfaces(t *testing.T) {
	engine, backing := buildEngine(t)
	ctx := context.Background()
	register(t, engine, "alice", "hunter22")

	result, err := engine.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	identity, err := engine.ResolveSession(ctx, result.Token)
	if err != nil || identity == nil {
		t.Fatalf("ResolveSession error: %v", err)
	}
	if err := engine.Logout(ctx, identity); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	backing.SetError(errors.New("connection refused"))

	if _, err := engine.ResolveSession(ctx, result.Token); !errors.Is(err, webauth.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "hunter22"); !errors.Is(err, webauth.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestEngineProfileFields(t *testing.T) {
	engine, _ := buildEngine(t)
	ctx := context.Background()

	avatar := "https://example.com/bob.png"
	user, err := engine.Register(ctx, model.NewUserInput{
		Username:    "bob",
		Password:    "hunter22",
		DisplayName: "Bob the Builder",
		AvatarURL:   avatar,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.DisplayName != "Bob the Builder" {
		t.Fatalf("display name = %q", user.DisplayName)
	}
	if user.AvatarURL == nil || *user.AvatarURL != avatar {
		t.Fatalf("avatar = %v", user.AvatarURL)
	}

	result, err := engine.Login(ctx, "bob", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.User.DisplayName != "Bob the Builder" {
		t.Fatalf("login projection display name = %q", result.User.DisplayName)
	}
}

func TestEngineMetricsAndAudit(t *testing.T) {
	sink := webauth.NewChannelSink(32)
	backing := store.NewMemory()
	engine, err := webauth.New().
		WithConfig(fastConfig()).
		WithStore(backing).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ctx := context.Background()

	register(t, engine, "alice", "hunter22")
	if _, err := engine.Login(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "wrong-pass"); !errors.Is(err, webauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Close drains the dispatcher so every event reached the sink.
	engine.Close()

	wantEvents := map[string]bool{
		webauth.EventRegistered:   false,
		webauth.EventLoginSuccess: false,
		webauth.EventLoginFailed:  false,
	}
	for len(wantEvents) > 0 {
		select {
		case ev := <-sink.Events():
			if _, ok := wantEvents[ev.EventType]; ok {
				delete(wantEvents, ev.EventType)
			}
			if ev.Username != "alice" {
				t.Fatalf("event %q for unexpected user %q", ev.EventType, ev.Username)
			}
		default:
			t.Fatalf("missing audit events: %v", wantEvents)
		}
	}

	snap := engine.MetricsSnapshot()
	if snap[webauth.MetricRegisterSuccess] != 1 {
		t.Fatalf("register metric = %d", snap[webauth.MetricRegisterSuccess])
	}
	if snap[webauth.MetricLoginSuccess] != 1 || snap[webauth.MetricLoginFailure] != 1 {
		t.Fatalf("login metrics = %d/%d", snap[webauth.MetricLoginSuccess], snap[webauth.MetricLoginFailure])
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := webauth.New().WithTokenKey(testKey).Build(); err == nil {
		t.Fatal("expected error without a store")
	}
	if _, err := webauth.New().WithStore(store.NewMemory()).Build(); err == nil {
		t.Fatal("expected error without a token key")
	}
	if _, err := webauth.New().WithStore(store.NewMemory()).WithTokenKey([]byte("short")).Build(); err == nil {
		t.Fatal("expected error for a short token key")
	}

	b := webauth.New().WithConfig(fastConfig()).WithStore(store.NewMemory())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error reusing a builder")
	}
}
