package auth

import "errors"

// ErrUnauthorized is the uniform failure for every credential problem: an
// unknown handle, a wrong password, a bad or expired token, a revoked
// session, or an inactive account. Callers never learn which one it was.
var ErrUnauthorized = errors.New("unauthorized")
