// Package metrics exposes the Prometheus instruments for the order
// lifecycle. All instruments are registered on a private registry so tests
// can create isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the service records.
type Metrics struct {
	registry *prometheus.Registry

	TransitionsApplied  *prometheus.CounterVec
	VersionConflicts    prometheus.Counter
	ForceCallsPlaced    prometheus.Counter
	ReroutesStarted     prometheus.Counter
	EscrowsExpired      prometheus.Counter
	NotificationsSent   prometheus.Counter
	LocksReaped         prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all instruments on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TransitionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giftflow_transitions_applied_total",
			Help: "Order status transitions applied, labelled by resulting status.",
		}, []string{"status"}),
		VersionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_version_conflicts_total",
			Help: "Optimistic concurrency conflicts on order writes.",
		}),
		ForceCallsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_force_calls_placed_total",
			Help: "Automated reminder calls placed to unresponsive shops.",
		}),
		ReroutesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_reroutes_started_total",
			Help: "Orders moved into rerouting by the escalation watchdog.",
		}),
		EscrowsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_escrows_expired_total",
			Help: "Paid orders expired by the escrow watchdog.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_notifications_sent_total",
			Help: "Status notifications delivered by the outbox relay.",
		}),
		LocksReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftflow_inventory_locks_reaped_total",
			Help: "Expired inventory locks removed by the janitor.",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}

	registry.MustRegister(
		m.TransitionsApplied,
		m.VersionConflicts,
		m.ForceCallsPlaced,
		m.ReroutesStarted,
		m.EscrowsExpired,
		m.NotificationsSent,
		m.LocksReaped,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
