// Package password provides one-way password hashing and verification.
//
// It wraps bcrypt behind a small Hasher so callers never touch the primitive
// directly; plaintext passwords must never be logged or persisted.
package password
