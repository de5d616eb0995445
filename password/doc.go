// Package password implements Argon2id password hashing with PHC-encoded
// output and constant-time verification.
//
// Hashes are self-describing: every parameter needed for verification is
// embedded in the PHC string, so cost parameters can be raised without
// invalidating existing records. The salt is additionally returned to the
// caller because the user store persists it in its own column.
package password
