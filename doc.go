// Package webauth is an embeddable username/password authentication engine
// for web applications: salted Argon2id password storage, encrypted
// stateless session tokens carried in a cookie, and a Redis-backed user
// cache in front of a durable store.
//
// Hosts construct an [Engine] through the [Builder], provide a durable
// [store.Store], and call the four request operations: Register, Login,
// ResolveSession, and Logout. The engine owns hashing, token issuance and
// validation, and cache maintenance; HTTP concerns stay with the host (the
// middleware package covers the common cookie wiring).
package webauth
