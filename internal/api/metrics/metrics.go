// Package metrics defines and registers the custom Prometheus metrics for
// the token broker. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package load; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "token_broker"

// TokensIssuedTotal counts successfully issued credential bundles.
// Label:
//   - provider: the sign-in provider of the caller ("anonymous", "password")
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of credential bundles issued, by provider.",
	},
	[]string{"provider"},
)

// AccessDeniedTotal counts rejected issuance requests.
// Label:
//   - reason: short failure kind (e.g. "invalid_credential", "guest_mismatch")
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of issuance requests denied, by reason.",
	},
	[]string{"reason"},
)

// IssueDuration measures end-to-end issuance latency, verification through
// minting.
// Label:
//   - provider: the sign-in provider of the caller
var IssueDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "issue_duration_seconds",
		Help:      "Duration of credential issuance from request to bundle.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)
