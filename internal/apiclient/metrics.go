// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soslaw"

// RequestsTotal counts backend API calls.
// Labels:
//   - resource: first path segment after /api/v1 (e.g. "roles")
//   - method: HTTP method
//   - status: response status code, or "error" when no response arrived
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of backend API requests.",
	},
	[]string{"resource", "method", "status"},
)

// RequestDuration measures backend API latency.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "method"},
)

// UnauthorizedTotal counts 401 responses that forced a re-login.
var UnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "unauthorized_total",
		Help:      "Total number of backend responses with status 401.",
	},
)
