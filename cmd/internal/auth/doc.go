// Package auth orchestrates the account lifecycle: registration, credential
// verification, session-bound token issuance, refresh, and logout. It is the
// only layer that composes the identity store, the session store, the
// password hasher, and the credential codec; HTTP and WebSocket handlers stay
// thin on top of it.
package auth
