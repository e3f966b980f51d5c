// Package authapi exposes the account operations over HTTP: register, login,
// logout, refresh, and the authenticated profile read. Handlers stay thin:
// decode, call the auth service, map the error taxonomy to a status code.
package authapi
