// Package middleware exposes HTTP adapters for cookie-based sessions on
// top of webauth.Engine.
//
//   - [Session] — resolves the auth cookie into an identity on every request.
//   - [RequireUser] — rejects requests that resolved anonymous.
//   - [SetSessionCookie] / [ClearSessionCookie] — cookie lifecycle helpers
//     for login and logout handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — session validity, cache use, and
// store fallback are all Engine.ResolveSession.
package middleware
