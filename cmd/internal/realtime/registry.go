package realtime

import (
	"log/slog"
	"sync"
)

// Conn is one live duplex connection handle registered under an identity.
//
// Deliver must not block: a closed or saturated connection reports an error
// and the registry absorbs it.
type Conn interface {
	Deliver(n Notification) error
}

// Registry is the process-wide directory of identity -> live connections.
//
// It is explicitly constructed and owned by the process lifetime; every
// request and connection task receives it by reference. One mutex guards all
// structural changes so broadcast iteration never races connect/disconnect.
type Registry struct {
	log *slog.Logger

	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:   log,
		conns: make(map[string]map[Conn]struct{}),
	}
}

// Connect registers conn under userID. Adding the same pair twice is a no-op.
func (r *Registry) Connect(userID string, conn Conn) {
	if userID == "" || conn == nil {
		return
	}

	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	set[conn] = struct{}{}
	total := r.totalLocked()
	r.mu.Unlock()

	connectionsGauge.Set(float64(total))
	r.log.Info("registry.connect", "user_id", userID, "total_connections", total)
}

// Disconnect removes conn from userID's set; the identity entry is pruned
// entirely once its set empties. Unknown pairs are ignored.
func (r *Registry) Disconnect(userID string, conn Conn) {
	if userID == "" || conn == nil {
		return
	}

	r.mu.Lock()
	if set, ok := r.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.conns, userID)
		}
	}
	total := r.totalLocked()
	r.mu.Unlock()

	connectionsGauge.Set(float64(total))
	r.log.Info("registry.disconnect", "user_id", userID, "total_connections", total)
}

// Broadcast delivers n to every registered connection except those owned by
// excludeUserID. Each delivery outcome is handled per target: a failing
// connection is logged and counted, and never aborts delivery to the rest.
// Returns the number of successful deliveries.
func (r *Registry) Broadcast(n Notification, excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for userID, set := range r.conns {
		if userID == excludeUserID {
			continue
		}
		for conn := range set {
			if err := conn.Deliver(n); err != nil {
				broadcastFailed.Inc()
				r.log.Error("registry.broadcast.deliver_fail", "user_id", userID, "type", n.Type, "err", err)
				continue
			}
			broadcastDelivered.Inc()
			delivered++
		}
	}

	r.log.Info("registry.broadcast", "type", n.Type, "delivered", delivered, "exclude_user_id", excludeUserID)
	return delivered
}

// Size reports the number of identities with at least one live connection.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// ConnCount reports the number of live connections, excluding those owned by
// excludeUserID when it is non-empty.
func (r *Registry) ConnCount(excludeUserID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for userID, set := range r.conns {
		if userID == excludeUserID {
			continue
		}
		count += len(set)
	}
	return count
}

func (r *Registry) totalLocked() int {
	total := 0
	for _, set := range r.conns {
		total += len(set)
	}
	return total
}
