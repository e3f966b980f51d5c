package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "authapp",
		Subsystem: "stream",
		Name:      "connections",
		Help:      "Number of live stream connections in the registry.",
	})

	broadcastDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authapp",
		Subsystem: "stream",
		Name:      "broadcast_delivered_total",
		Help:      "Broadcast notifications successfully queued to a connection.",
	})

	broadcastFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authapp",
		Subsystem: "stream",
		Name:      "broadcast_failed_total",
		Help:      "Broadcast deliveries that failed for a single connection.",
	})
)
