// Package metrics defines and registers the custom Prometheus metrics of the
// crypto tracker API. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptotracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login/logout attempts.
// Labels:
//   - operation: "register", "login" or "logout"
//   - result: "success", "invalid", "duplicate", "validation" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenRejectionsTotal counts requests rejected by the auth middleware.
var TokenRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected because of a missing or invalid token.",
	},
)

// ── Preference metrics ────────────────────────────────────────────────────────

// PreferenceUpdatesTotal counts preference writes.
// Label:
//   - kind: "settings" or "favorites"
var PreferenceUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "preference_updates_total",
		Help:      "Total number of successful preference updates, by kind.",
	},
	[]string{"kind"},
)

// ── Market data metrics ───────────────────────────────────────────────────────

// MarketCacheLookupsTotal counts market cache lookups.
// Label:
//   - result: "hit" or "miss"
var MarketCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_cache_lookups_total",
		Help:      "Total number of market-data cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// MarketUpstreamDuration measures upstream market-data requests.
// Label:
//   - status: HTTP status code class ("2xx", "429", "5xx", ...) or "error"
var MarketUpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "market_upstream_duration_seconds",
		Help:      "Duration of requests to the market-data provider.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)
