// Package session is the server-side session store adapter.
//
// A session anchors a refresh token's validity: the token references the
// session, never the other way around, and deleting the session is the
// revocation mechanism for the refresh token. Expiry is enforced on lookup:
// an expired session is reported as absent.
package session
