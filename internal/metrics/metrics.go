// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting weepush runtime metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons reported by the dispatcher.
const (
	SkipNotAway       = "not_away"
	SkipNoCredentials = "no_credentials"
	SkipRateLimited   = "rate_limited"
)

// 1. Internal State (Source of Truth)
var (
	events            int64
	qualifiedPrivate  int64
	qualifiedHilight  int64
	skippedNotAway    int64
	skippedNoCreds    int64
	skippedRateLimit  int64
	notificationsSent int64
	notificationsFail int64
	relayConnected    int32
	lastEvent         int64
)

const counterInc int64 = 1

// 2. Prometheus Collectors
var (
	promEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weepush_events_total",
			Help: "Total printed lines received from the relay",
		},
	)
	promQualified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weepush_notifications_qualified_total",
			Help: "Events that qualified for a notification",
		},
		[]string{"reason"},
	)
	promSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weepush_notifications_skipped_total",
			Help: "Qualifying events that were not sent",
		},
		[]string{"reason"},
	)
	promSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weepush_notifications_sent_total",
			Help: "Notifications accepted by the provider",
		},
	)
	promFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weepush_notifications_failed_total",
			Help: "Notification sends that failed",
		},
	)
	promRelayConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weepush_relay_connected",
			Help: "1 when the WeeChat relay session is synced",
		},
	)
	promLastEvent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weepush_last_event_timestamp_seconds",
			Help: "Unix timestamp of the last received line",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promEvents,
		promQualified,
		promSkipped,
		promSent,
		promFailed,
		promRelayConnected,
		promLastEvent,
	)
}

// 3. Public API (Updates both Atomic and Prometheus)

// IncEvent counts one received line.
func IncEvent() {
	atomic.AddInt64(&events, counterInc)
	promEvents.Inc()
}

// IncQualified counts a qualifying event by reason ("private" or "hilight").
func IncQualified(reason string) {
	switch reason {
	case "private":
		atomic.AddInt64(&qualifiedPrivate, counterInc)
	case "hilight":
		atomic.AddInt64(&qualifiedHilight, counterInc)
	}
	promQualified.WithLabelValues(reason).Inc()
}

// IncSkipped counts a qualifying event that was not sent.
func IncSkipped(reason string) {
	switch reason {
	case SkipNotAway:
		atomic.AddInt64(&skippedNotAway, counterInc)
	case SkipNoCredentials:
		atomic.AddInt64(&skippedNoCreds, counterInc)
	case SkipRateLimited:
		atomic.AddInt64(&skippedRateLimit, counterInc)
	}
	promSkipped.WithLabelValues(reason).Inc()
}

// IncNotificationSent counts a successful send.
func IncNotificationSent() {
	atomic.AddInt64(&notificationsSent, counterInc)
	promSent.Inc()
}

// IncNotificationFailed counts a failed send.
func IncNotificationFailed() {
	atomic.AddInt64(&notificationsFail, counterInc)
	promFailed.Inc()
}

// SetRelayConnected records whether the relay session is up.
func SetRelayConnected(up bool) {
	var v int32
	if up {
		v = 1
	}
	atomic.StoreInt32(&relayConnected, v)
	promRelayConnected.Set(float64(v))
}

// SetLastEvent stores the time of the most recent line.
func SetLastEvent(t time.Time) {
	atomic.StoreInt64(&lastEvent, t.Unix())
	promLastEvent.Set(float64(t.Unix()))
}

// 4. JSON Snapshot Struct

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	Events             int64  `json:"events"`
	QualifiedPrivate   int64  `json:"qualified_private"`
	QualifiedHilight   int64  `json:"qualified_hilight"`
	SkippedNotAway     int64  `json:"skipped_not_away"`
	SkippedNoCreds     int64  `json:"skipped_no_credentials"`
	SkippedRateLimited int64  `json:"skipped_rate_limited"`
	Sent               int64  `json:"sent"`
	Failed             int64  `json:"failed"`
	RelayConnected     bool   `json:"relay_connected"`
	LastEvent          int64  `json:"last_event_timestamp"`
	LastEventHuman     string `json:"last_event_human"`
}

// GetSnapshot returns a StatsSnapshot with the current values of all
// internal counters and timestamps.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastEvent)
	human := ""
	if ts > 0 {
		human = time.Unix(ts, 0).Format(time.RFC3339)
	}
	return StatsSnapshot{
		Events:             atomic.LoadInt64(&events),
		QualifiedPrivate:   atomic.LoadInt64(&qualifiedPrivate),
		QualifiedHilight:   atomic.LoadInt64(&qualifiedHilight),
		SkippedNotAway:     atomic.LoadInt64(&skippedNotAway),
		SkippedNoCreds:     atomic.LoadInt64(&skippedNoCreds),
		SkippedRateLimited: atomic.LoadInt64(&skippedRateLimit),
		Sent:               atomic.LoadInt64(&notificationsSent),
		Failed:             atomic.LoadInt64(&notificationsFail),
		RelayConnected:     atomic.LoadInt32(&relayConnected) == 1,
		LastEvent:          ts,
		LastEventHuman:     human,
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as
// a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
