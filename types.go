package webauth

import "github.com/d2o5/webauth/internal/flows"

// Identity is a resolved session: the username carried by the token plus
// the public user record it maps to.
type Identity = flows.Identity

// LoginResult carries the issued session token, its expiry, and the
// public record of the user who logged in.
type LoginResult = flows.LoginResult
