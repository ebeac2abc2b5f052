// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MissionBoard Contributors

package permission

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for permission evaluation.
var (
	// checkDuration tracks the latency of HasPermission calls, including
	// the grant load and tree evaluation.
	checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "permission_check_duration_seconds",
		Help:    "Histogram of permission check latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// checkDecisions counts permission decisions by outcome.
	checkDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_check_decisions_total",
		Help: "Total number of permission check decisions",
	}, []string{"decision"})
)

// recordCheckMetrics records metrics for a completed permission check.
func recordCheckMetrics(duration time.Duration, allowed bool) {
	checkDuration.Observe(duration.Seconds())
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	checkDecisions.WithLabelValues(decision).Inc()
}
