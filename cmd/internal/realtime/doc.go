// Package realtime implements the notification stream: a process-wide
// registry of live WebSocket connections keyed by identity, a broadcast
// fan-out that isolates per-connection failures, and the HTTP gateway that
// authenticates and owns each connection's lifecycle.
package realtime
