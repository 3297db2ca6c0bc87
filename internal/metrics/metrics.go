// Package metrics provides Prometheus instrumentation for the skill swap
// services. It exposes gauges for live push channels, counters for push
// delivery, notification relay and completion verification outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ChannelsActive tracks the current number of registered push channels.
	ChannelsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_push_channels_active",
		Help: "Current number of registered push channels",
	})

	// UsersConnected tracks users holding at least one push channel.
	UsersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_push_users_connected",
		Help: "Current number of users with at least one push channel",
	})

	// PushTotal counts push attempts per channel, labeled by outcome:
	// "queued", "dropped" (queue full or closed) or "offline" (no channels).
	PushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_push_total",
		Help: "Push attempts by outcome",
	}, []string{"outcome"})

	// RelayTotal counts notification relay attempts, labeled by outcome.
	RelayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_notify_relay_total",
		Help: "Notification relay attempts by outcome",
	}, []string{"outcome"}) // outcome = "ok", "failed"

	// VerificationTotal counts swap completion checks, labeled by result.
	VerificationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_swap_verification_total",
		Help: "Swap completion checks by result",
	}, []string{"result"}) // result = "completed", "not_completed", "error"

	// RemoteCallLatency records outbound call latency in seconds.
	RemoteCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_remote_call_seconds",
		Help:    "Outbound service call latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"target"})
)

func init() {
	prometheus.MustRegister(
		ChannelsActive,
		UsersConnected,
		PushTotal,
		RelayTotal,
		VerificationTotal,
		RemoteCallLatency,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
