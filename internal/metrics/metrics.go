// Package metrics exposes Prometheus collectors for handshake attempts:
// a counter, a duration histogram, and a dedicated verification-failure
// counter so "the crypto trust anchor rejected a server" is visible
// separately from ordinary I/O churn (SPEC_FULL.md §3).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the handshake metrics. `cmd/apclient serve` registers
// and exposes them; no code in this module increments or observes them.
type Collectors struct {
	Attempts             *prometheus.CounterVec
	Duration             prometheus.Histogram
	VerificationFailures prometheus.Counter
}

// New constructs a fresh, unregistered set of collectors.
func New() *Collectors {
	return &Collectors{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apclient",
			Subsystem: "handshake",
			Name:      "attempts_total",
			Help:      "Handshake attempts, labeled by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apclient",
			Subsystem: "handshake",
			Name:      "duration_seconds",
			Help:      "Wall-clock time for a single handshake attempt.",
			Buckets:   prometheus.DefBuckets,
		}),
		VerificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apclient",
			Subsystem: "handshake",
			Name:      "verification_failures_total",
			Help:      "Handshakes aborted because the server's signature failed verification.",
		}),
	}
}

// MustRegister registers every collector against reg, panicking on a
// duplicate registration (mirrors prometheus.MustRegister's contract).
func (c *Collectors) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.Attempts, c.Duration, c.VerificationFailures)
}
