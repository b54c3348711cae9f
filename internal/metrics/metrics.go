// Package metrics collects and exposes session metrics for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the session cache and resolver report to.
type Recorder interface {
	RecordLogin(loginType, result string)
	RecordTrustDecision(decision string)
	RecordLogout()
	RecordStorageFailure(op string)
}

// Collector records into Prometheus metrics.
type Collector struct {
	logins          *prometheus.CounterVec
	trustDecisions  *prometheus.CounterVec
	logouts         prometheus.Counter
	storageFailures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthkeeper_login_total",
			Help: "Login attempts by login type and result.",
		}, []string{"type", "result"}),
		trustDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthkeeper_trust_decisions_total",
			Help: "Startup session verification outcomes.",
		}, []string{"decision"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "healthkeeper_logout_total",
			Help: "Sessions ended, explicitly or by rejection.",
		}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthkeeper_storage_failures_total",
			Help: "Persistent store failures by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(c.logins, c.trustDecisions, c.logouts, c.storageFailures)

	return c
}

func (c *Collector) RecordLogin(loginType, result string) {
	c.logins.WithLabelValues(loginType, result).Inc()
}

func (c *Collector) RecordTrustDecision(decision string) {
	c.trustDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

func (c *Collector) RecordStorageFailure(op string) {
	c.storageFailures.WithLabelValues(op).Inc()
}

// Nop drops everything.
type Nop struct{}

func (Nop) RecordLogin(string, string)  {}
func (Nop) RecordTrustDecision(string)  {}
func (Nop) RecordLogout()               {}
func (Nop) RecordStorageFailure(string) {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute serves Handler under /metrics.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
