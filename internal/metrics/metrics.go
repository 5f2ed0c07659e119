// Package metrics holds the process-wide prometheus collectors for the
// broadcast path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BroadcastPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_broadcast_posted_total",
			Help: "Broadcast envelopes posted by this process, by event type",
		},
		[]string{"type"},
	)

	BroadcastFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_broadcast_failed_total",
			Help: "Broadcast envelopes that could not be posted, by reason",
		},
		[]string{"reason"},
	)

	BroadcastReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_broadcast_received_total",
			Help: "Broadcast envelopes delivered to a local handler, by event type",
		},
		[]string{"type"},
	)

	RelayEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_relay_events_total",
			Help: "Envelopes accepted by the relay, by event type",
		},
		[]string{"type"},
	)

	RelayDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "livechat_relay_dropped_total",
			Help: "Envelopes a slow relay subscriber missed",
		},
	)

	RelaySubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "livechat_relay_subscribers",
			Help: "Tabs currently subscribed to the relay",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
