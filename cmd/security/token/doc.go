// Package token implements the signed credential codec.
//
// It issues and verifies two credential kinds over a shared HMAC secret:
//
//   - access tokens: short-lived, identity-only claims
//   - refresh tokens: longer-lived, identity + session claims
//
// The two kinds are distinct Go types (AccessClaims / RefreshClaims) and are
// tagged on the wire, so an access token can never be mistaken for a refresh
// token or carry a session reference.
//
// The codec is pure: no shared mutable state, and the verification clock is
// passed in by the caller.
package token
