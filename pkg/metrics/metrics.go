package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codgp_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// RoleChecks counts role-gate evaluations and their outcome (allowed|denied|error).
	RoleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codgp_role_checks_total",
			Help: "Total number of role gate checks",
		},
		[]string{"role", "result"},
	)

	// InvitesSent counts team invitations by result (sent|duplicate|error).
	InvitesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codgp_invites_total",
			Help: "Total number of team invitations issued",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codgp_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
