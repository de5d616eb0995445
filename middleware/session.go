package middleware

import (
	"context"
	"net/http"

	webauth "github.com/d2o5/webauth"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity resolved by [Session], or false
// when the request is anonymous.
func IdentityFromContext(ctx context.Context) (*webauth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*webauth.Identity)
	return id, ok && id != nil
}

// Session resolves the auth cookie on every request and injects the
// resulting identity into the request context. Anonymous requests pass
// through untouched; only a failing user store turns into a 500.
func Session(engine *webauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			var token string
			if c, err := r.Cookie(engine.CookieConfig().Name); err == nil {
				token = c.Value
			}

			identity, err := engine.ResolveSession(r.Context(), token)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests whose context carries no identity. Wrap it
// inside [Session].
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie writes the auth cookie for a fresh login.
func SetSessionCookie(w http.ResponseWriter, engine *webauth.Engine, token string) {
	cfg := engine.CookieConfig()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     cfg.Path,
		MaxAge:   int(engine.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the auth cookie at logout.
func ClearSessionCookie(w http.ResponseWriter, engine *webauth.Engine) {
	cfg := engine.CookieConfig()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
