// Package metrics defines and registers the custom Prometheus metrics of the
// incident API. HTTP request metrics come from echoprometheus; everything here
// describes the domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incident_api"

// ── Authentication ────────────────────────────────────────────────────────────

// AuthenticationsTotal counts gate outcomes per request.
// Label:
//   - result: "authenticated", "anonymous" (no bearer header) or "rejected"
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Authentication gate outcomes.",
	},
	[]string{"result"},
)

// AuthorizationDenialsTotal counts requests rejected by the route policy.
// Label:
//   - reason: "unauthorized" or "forbidden"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Requests rejected by the route authorization policy.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login attempts by result ("success" or "failure").
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	},
	[]string{"result"},
)

// UsersCreatedTotal counts created accounts by role.
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Accounts created through registration or administration, by role.",
	},
	[]string{"role"},
)

// ── Incidents ─────────────────────────────────────────────────────────────────

// IncidentTransitionsTotal counts lifecycle transitions.
// Label:
//   - status: the status the incident moved to (REPORTED, ASSIGNED, RESOLVED)
var IncidentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incident_transitions_total",
		Help:      "Incident lifecycle transitions by resulting status.",
	},
	[]string{"status"},
)

// ── History events ────────────────────────────────────────────────────────────

// EventsRecordedTotal counts history events by outcome ("ok", "error", "dropped").
var EventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_recorded_total",
		Help:      "Incident history events by outcome.",
	},
	[]string{"outcome"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventRecordDuration measures how long persisting one history event takes.
var EventRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_record_duration_seconds",
		Help:      "Duration of history event persistence from dequeue to store.",
		Buckets:   prometheus.DefBuckets,
	},
)
