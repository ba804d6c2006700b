// Package metrics defines the Prometheus collectors for calls the portal
// makes to the marketplace API and for session lifecycle events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// UpstreamRequestsTotal counts calls to the marketplace API.
// Labels:
//   - role: buyer, seller or admin
//   - method: HTTP method
//   - outcome: ok, http_error, auth_expired, network_error, parse_error
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of marketplace API calls by role, method and outcome.",
	},
	[]string{"role", "method", "outcome"},
)

// UpstreamRequestDuration measures marketplace API round trips.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of marketplace API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// SessionEventsTotal counts session lifecycle transitions.
// Labels:
//   - role: buyer, seller, admin or "all"
//   - event: signed_in, signed_out, expired
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session sign-ins, sign-outs and expiries.",
	},
	[]string{"role", "event"},
)

// GuardDecisionsTotal counts route guard outcomes per role.
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of guarded route evaluations by role and decision.",
	},
	[]string{"role", "decision"},
)
