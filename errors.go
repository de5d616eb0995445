package webauth

import "errors"

var (
	// ErrValidation rejects credentials outside the configured length limits.
	ErrValidation = errors.New("invalid username or password format")
	// ErrAccountExists rejects registration for a username already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials reports a known username with the wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound reports a login or lookup for a username with no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized reports an operation that requires an authenticated session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable wraps durable store failures.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrEngineNotReady reports a call on an engine missing required wiring.
	ErrEngineNotReady = errors.New("engine not ready")
)
