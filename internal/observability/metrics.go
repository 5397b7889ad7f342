// Package observability provides Prometheus metrics for the track loop.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Subscription loop metrics
	NotificationsReceived prometheus.Counter
	SignatureDispatches   prometheus.Counter
	DispatchErrors        *prometheus.CounterVec
	Reconnects            prometheus.Counter
	LastDispatchTimestamp prometheus.Gauge

	// Provider metrics
	RPCCallLatency *prometheus.HistogramVec

	// Render metrics
	TradesRendered prometheus.Counter
	RendersSkipped *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_watch"
	}

	return &Metrics{
		NotificationsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "track",
			Name:      "notifications_received_total",
			Help:      "Total number of account-change notifications received",
		}),
		SignatureDispatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "track",
			Name:      "signature_dispatches_total",
			Help:      "Total number of new signatures dispatched to the renderer",
		}),
		DispatchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "track",
			Name:      "dispatch_errors_total",
			Help:      "Total number of dispatch failures by stage",
		}, []string{"stage"}),
		Reconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "track",
			Name:      "reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),
		LastDispatchTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "track",
			Name:      "last_dispatch_timestamp",
			Help:      "Unix timestamp of the last successful dispatch",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "helius",
			Name:      "rpc_call_latency_seconds",
			Help:      "Helius RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		TradesRendered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "trades_rendered_total",
			Help:      "Total number of trade cards printed",
		}),
		RendersSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "renders_skipped_total",
			Help:      "Total number of transactions skipped by reason",
		}, []string{"reason"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordNotification increments the notifications received counter.
func RecordNotification() {
	DefaultMetrics.NotificationsReceived.Inc()
}

// RecordDispatch records one successful signature dispatch.
func RecordDispatch(unixTime float64) {
	DefaultMetrics.SignatureDispatches.Inc()
	DefaultMetrics.LastDispatchTimestamp.Set(unixTime)
}

// RecordDispatchError records a dispatch failure for a stage ("fetch" or
// "render").
func RecordDispatchError(stage string) {
	DefaultMetrics.DispatchErrors.WithLabelValues(stage).Inc()
}

// RecordReconnect increments the reconnect attempts counter.
func RecordReconnect() {
	DefaultMetrics.Reconnects.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordTradeRendered increments the trades rendered counter.
func RecordTradeRendered() {
	DefaultMetrics.TradesRendered.Inc()
}

// RecordRenderSkipped records a skipped transaction by reason ("low_fee" or
// "no_trades").
func RecordRenderSkipped(reason string) {
	DefaultMetrics.RendersSkipped.WithLabelValues(reason).Inc()
}
