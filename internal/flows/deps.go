package flows

// Errors carries the host-level sentinel errors flows return. The root
// engine wires its exported errors in so flow results compare with
// errors.Is at the API surface.
type Errors struct {
	EngineNotReady     error
	Validation         error
	AccountExists      error
	InvalidCredentials error
	UserNotFound       error
	Unauthorized       error
	StoreUnavailable   error
}

// Limits are the credential length bounds applied before any store or
// hasher work.
type Limits struct {
	UsernameMin int
	UsernameMax int
	PasswordMin int
	PasswordMax int
}

// Deps groups the per-flow dependency sets. The root engine builds this
// once and delegates request methods to the matching flow.
type Deps struct {
	Register RegisterDeps
	Login    LoginDeps
	Resolve  ResolveDeps
	Logout   LogoutDeps
}

func (l Limits) checkUsername(username string) bool {
	return len(username) >= l.UsernameMin && len(username) <= l.UsernameMax
}

func (l Limits) checkPassword(password string) bool {
	return len(password) >= l.PasswordMin && len(password) <= l.PasswordMax
}
