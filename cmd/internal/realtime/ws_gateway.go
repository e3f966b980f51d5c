package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/phucpercy/auth-app-backend/cmd/identity"
	"github.com/phucpercy/auth-app-backend/cmd/identity/ids"
)

const (
	defaultSendQueueSize = 256
	minSendQueueSize     = 32

	defaultWriteTimeout     = 5 * time.Second
	defaultHeartbeatEvery   = 30 * time.Second
	defaultHeartbeatTimeout = 10 * time.Second
	maxPingFailures         = 3

	maxFrameBytes = 32 * 1024

	closeReasonMissingToken = "Missing Token"
	closeReasonInvalidToken = "Invalid Token"
)

// TokenAuthenticator validates an access token and resolves its identity.
// It is the same resolution path the HTTP handlers use.
type TokenAuthenticator interface {
	ResolveIdentity(ctx context.Context, now time.Time, accessToken string) (identity.User, error)
}

// GatewayConfig tunes the stream gateway. Zero values select safe defaults.
type GatewayConfig struct {
	SendQueueSize    int
	WriteTimeout     time.Duration
	HeartbeatEvery   time.Duration
	HeartbeatTimeout time.Duration

	// OriginPatterns authorizes cross-origin browser clients; same-host is
	// always allowed by the websocket accept handshake.
	OriginPatterns []string
}

// Gateway is the WebSocket entrypoint for the notification stream.
//
// It authenticates the handshake, registers the connection in the Registry,
// and owns the connection from accept to close: the registry entry is removed
// exactly once no matter how the connection ends.
type Gateway struct {
	log      *slog.Logger
	registry *Registry
	auth     TokenAuthenticator
	cfg      GatewayConfig
}

// NewGateway constructs a stream gateway.
func NewGateway(log *slog.Logger, registry *Registry, auth TokenAuthenticator, cfg GatewayConfig) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = defaultSendQueueSize
	}
	if cfg.SendQueueSize < minSendQueueSize {
		cfg.SendQueueSize = minSendQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = defaultHeartbeatEvery
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	return &Gateway{log: log, registry: registry, auth: auth, cfg: cfg}
}

// HandleStream upgrades the request and runs the connection lifecycle.
// Mount as "GET /stream/{identity_id}".
func (g *Gateway) HandleStream(w http.ResponseWriter, r *http.Request) {
	identityID := r.PathValue("identity_id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.cfg.OriginPatterns,
	})
	if err != nil {
		g.log.Error("ws.accept.fail", "err", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	// Token policy: the close code is fixed (1008) and the reason string is
	// short; nothing about why the token failed leaks to the peer.
	tokenStr := strings.TrimSpace(r.URL.Query().Get("token"))
	if tokenStr == "" {
		g.log.Info("ws.reject.token", "reason", "missing", "remote", r.RemoteAddr)
		_ = conn.Close(websocket.StatusPolicyViolation, closeReasonMissingToken)
		return
	}

	now := time.Now().UTC()
	user, err := g.auth.ResolveIdentity(r.Context(), now, tokenStr)
	if err != nil {
		g.log.Info("ws.reject.token", "reason", "invalid", "remote", r.RemoteAddr)
		_ = conn.Close(websocket.StatusPolicyViolation, closeReasonInvalidToken)
		return
	}
	if identityID != user.ID {
		g.log.Info("ws.reject.token", "reason", "identity_mismatch", "path_identity", identityID)
		_ = conn.Close(websocket.StatusPolicyViolation, closeReasonInvalidToken)
		return
	}

	connID, err := ids.NewULID(now)
	if err != nil {
		g.log.Error("ws.conn_id.fail", "err", err)
		_ = conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	client := NewClient(user.ID, connID, g.cfg.SendQueueSize)
	g.registry.Connect(user.ID, client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// shutdown runs exactly once for this handle: membership removal happens
	// before the client stops so broadcasters never hold a dead pointer.
	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			g.registry.Disconnect(user.ID, client)
			client.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}
	defer shutdown(websocket.StatusNormalClosure, "bye")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
				return
			case n := <-client.Outbox():
				if err := g.writeNotification(ctx, conn, n); err != nil {
					g.log.Info("ws.write.fail", "conn_id", connID, "err", err)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	go func() {
		t := time.NewTicker(g.cfg.HeartbeatEvery)
		defer t.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
				return
			case <-t.C:
				hbCtx, hbCancel := context.WithTimeout(ctx, g.cfg.HeartbeatTimeout)
				err := conn.Ping(hbCtx)
				hbCancel()

				if err != nil {
					failures++
					if failures >= maxPingFailures {
						g.log.Info("ws.ping.fail", "conn_id", connID, "failures", failures)
						shutdown(websocket.StatusGoingAway, "heartbeat failed")
						return
					}
					continue
				}
				failures = 0
			}
		}
	}()

	g.log.Info("ws.connected", "user_id", user.ID, "conn_id", connID)

	// Inbound frames exist only to keep the lifecycle alive until disconnect;
	// payloads are dropped.
	for {
		_, _, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				shutdown(websocket.StatusNormalClosure, "peer closed")
			} else if errors.Is(err, context.Canceled) {
				shutdown(websocket.StatusNormalClosure, "context done")
			} else {
				g.log.Info("ws.read.fail", "conn_id", connID, "err", err)
				shutdown(websocket.StatusAbnormalClosure, "read failed")
			}
			break
		}
	}

	<-writerDone
	g.log.Info("ws.closed", "user_id", user.ID, "conn_id", connID)
}

func (g *Gateway) writeNotification(parent context.Context, conn *websocket.Conn, n Notification) error {
	ctx, cancel := context.WithTimeout(parent, g.cfg.WriteTimeout)
	defer cancel()

	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
