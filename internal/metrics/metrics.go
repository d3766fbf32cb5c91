// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Package metrics registers the Prometheus instruments for the feed
// service: live-channel fan-out, intent traffic, REST latency and
// snapshot persistence.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChannelClients is the number of currently connected channel clients.
	ChannelClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reliva_channel_clients",
			Help: "Number of connected live-update channel clients",
		},
	)

	// ChannelBroadcasts counts fanned-out events by message type.
	ChannelBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reliva_channel_broadcasts_total",
			Help: "Total authoritative events broadcast to channel clients",
		},
		[]string{"type"},
	)

	// ChannelIntents counts inbound intents by message type.
	ChannelIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reliva_channel_intents_total",
			Help: "Total intents received on the live-update channel",
		},
		[]string{"type"},
	)

	// ChannelRejected counts intents dropped by per-client rate limiting.
	ChannelRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reliva_channel_intents_rejected_total",
			Help: "Total intents rejected by per-client rate limiting",
		},
	)

	// ChannelDropped counts messages lost to full send buffers.
	ChannelDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reliva_channel_dropped_messages_total",
			Help: "Total channel messages dropped due to full buffers",
		},
	)

	// HTTPRequestDuration observes REST endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reliva_http_request_duration_seconds",
			Help:    "Duration of REST requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SnapshotSaves counts snapshot persistence attempts by outcome.
	SnapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reliva_snapshot_saves_total",
			Help: "Total feed snapshot saves by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveHTTPRequest records one REST request observation.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
