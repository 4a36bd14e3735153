package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by operation, surfaced on /metrics
// so cache degradation is visible before it turns into latency.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "relay_redis_errors_total",
		Help: "Total number of Redis command errors by operation.",
	},
	[]string{"operation"},
)

// NotificationsPublished counts notifications fanned out over the live stream.
var NotificationsPublished = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "relay_notifications_published_total",
		Help: "Total number of notifications published to the live stream.",
	},
)

// ActiveWebSockets tracks the number of open notification stream connections.
var ActiveWebSockets = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "relay_websocket_active_connections",
		Help: "Number of currently open websocket connections.",
	},
)

// WebSocketDrops counts notification messages dropped on the websocket path,
// labeled by reason (full buffer or closed connection).
var WebSocketDrops = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "relay_websocket_dropped_messages_total",
		Help: "Total number of websocket messages dropped by reason.",
	},
	[]string{"reason"},
)

// InitMetrics creates the Prometheus middleware. The caller registers the
// /metrics endpoint on its app with RegisterAt.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
